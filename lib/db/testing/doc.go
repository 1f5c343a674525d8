// Package testing provides standardised tests and benchmarks for databases
// opened through the db package.
//
// The package contains:
//   - testing: A behavioral test suite covering the collection contract
//   - benchmark: Performance tests for common collection operations
//
// The suite only uses the public API, so the same tests run against any
// serializer configuration. This is particularly useful when adding a new
// serializer: pass a factory that opens the database with it and the suite
// validates the full round-trip contract.
//
// Example usage:
//
//	// Creating a factory function for your configuration
//	factory := func(tb testing.TB, path string) *db.Database {
//		database, err := db.Open(path, &db.Options{Serializer: serializer.NewGOBSerializer()})
//		if err != nil {
//			tb.Fatalf("open failed: %v", err)
//		}
//		return database
//	}
//
//	// Running the standard test suite
//	dbtesting.RunDatabaseTests(t, "GOB", factory)
//
//	// Running performance benchmarks
//	dbtesting.RunDatabaseBenchmarks(b, "GOB", factory)
package testing
