// Package db exposes a single-file sqlite database as a set of named
// key-value collections with dictionary-like semantics.
//
// The package focuses on:
//   - Zero-setup persistence: one file, no server, schema managed internally
//   - Dictionary-style collections with string keys and serialized values
//   - Modification-time tracking for every entry
//   - Typed errors that callers can branch on
//
// Key Components:
//
//   - Database: A handle on one database file. It manages the catalog of
//     collections (listing, get-or-create, drop), exposes file metadata via
//     Info, and owns the shared connection. Collections are backed by one
//     table each; table names are a reversible encoding of the collection
//     name, so any string is a valid collection name and foreign tables in
//     the same file are left alone.
//
//   - Collection: A named key-value namespace. It offers single-entry
//     operations (Set, ItemGet, ItemDelete, Contains, LastModified), batch
//     operations (SetAll, Get, Delete), and iteration in storage order
//     (Items) or by modification time (IterByDate). Batch writes run in one
//     transaction and share a single timestamp.
//
//   - Error Handling: All failures are reported as *Error values carrying a
//     return code. The predicates IsStorage, IsKeyNotFound,
//     IsCollectionNotFound and IsSerialization classify them without string
//     matching.
//
// Note on strict and tolerant operations:
//
// Batch reads and deletes are tolerant: Get omits missing keys from its
// result and Delete ignores them, so bulk cleanup never has to pre-check
// membership. The single-entry forms ItemGet and ItemDelete are strict and
// fail with a key-not-found error, matching the expectation that accessing
// one specific entry that is absent is a bug worth surfacing.
//
// Note on modification times:
//
// Every write stamps the affected rows with the wall-clock write time at
// nanosecond resolution. SetAll captures the timestamp once for the whole
// batch, so entries written together sort together in IterByDate; ties are
// broken by key so iteration order is deterministic.
//
// Related Packages:
//
// The serializer package (github.com/wildstrudel/nosqlite/lib/serializer)
// provides the value codecs used by this package. The default binary
// serializer covers scalars, complex numbers, byte slices, lists, string
// maps, sets and registered custom types.
//
// The testing package (github.com/wildstrudel/nosqlite/lib/db/testing)
// provides a standardized test suite and benchmarks for exercising a
// Database under different serializers:
//   - RunDatabaseTests: Runs the full behavioral test suite
//   - RunDatabaseBenchmarks: Provides performance benchmarks
package db
