package db_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wildstrudel/nosqlite/lib/db"
	dbtesting "github.com/wildstrudel/nosqlite/lib/db/testing"
	"github.com/wildstrudel/nosqlite/lib/serializer"
)

func binaryFactory(tb testing.TB, path string) *db.Database {
	database, err := db.Open(path, &db.Options{Serializer: serializer.NewBinarySerializer()})
	if err != nil {
		tb.Fatalf("Open failed: %v", err)
	}
	return database
}

func gobFactory(tb testing.TB, path string) *db.Database {
	database, err := db.Open(path, &db.Options{Serializer: serializer.NewGOBSerializer()})
	if err != nil {
		tb.Fatalf("Open failed: %v", err)
	}
	return database
}

func TestDatabase(t *testing.T) {
	dbtesting.RunDatabaseTests(t, "Binary", binaryFactory)
	dbtesting.RunDatabaseTests(t, "GOB", gobFactory)
}

func BenchmarkDatabase(b *testing.B) {
	dbtesting.RunDatabaseBenchmarks(b, "Binary", binaryFactory)
	dbtesting.RunDatabaseBenchmarks(b, "GOB", gobFactory)
}

func TestOpenDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// nil options fall back to defaults
	database, err := db.Open(path, nil)
	if err != nil {
		t.Fatalf("Open with nil options failed: %v", err)
	}
	defer database.Close()

	col, err := database.GetOrCreateCollection("test")
	if err != nil {
		t.Fatalf("GetOrCreateCollection failed: %v", err)
	}
	if err := col.Set("key", "value"); err != nil {
		t.Errorf("Set with default options failed: %v", err)
	}
}

func TestOpenInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := db.Open(path, nil)
	if !db.IsStorage(err) {
		t.Errorf("Expected storage error for a non-database file, got %v", err)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := db.Open(filepath.Join(t.TempDir(), "missing", "nested", "test.db"), nil)
	if !db.IsStorage(err) {
		t.Errorf("Expected storage error for an unreachable path, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	database := binaryFactory(t, path)
	defer database.Close()

	for _, name := range []string{"a", "b"} {
		col, err := database.GetOrCreateCollection(name)
		if err != nil {
			t.Fatalf("GetOrCreateCollection failed: %v", err)
		}
		if err := col.Set("key", "value"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	info, err := database.Info()
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Path != path {
		t.Errorf("Expected path %q, got %q", path, info.Path)
	}
	if info.Collections != 2 {
		t.Errorf("Expected 2 collections, got %d", info.Collections)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive file size, got %d", info.SizeBytes)
	}
}

func TestWriteMetrics(t *testing.T) {
	database := binaryFactory(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	col, err := database.GetOrCreateCollection("test")
	if err != nil {
		t.Fatalf("GetOrCreateCollection failed: %v", err)
	}
	if err := col.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := col.ItemGet("key"); err != nil {
		t.Fatalf("ItemGet failed: %v", err)
	}

	var sb strings.Builder
	database.WriteMetrics(&sb)
	out := sb.String()

	for _, want := range []string{
		`nosqlite_ops_total{op="set"} 1`,
		`nosqlite_ops_total{op="get"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected metrics output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestForeignTablesIgnored(t *testing.T) {
	database := binaryFactory(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	if _, err := database.GetOrCreateCollection("mine"); err != nil {
		t.Fatalf("GetOrCreateCollection failed: %v", err)
	}

	// tables created outside the collection scheme stay invisible
	if _, err := database.Handle().Exec(`CREATE TABLE foreign_data (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	names, err := database.CollectionNames()
	if err != nil {
		t.Fatalf("CollectionNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "mine" {
		t.Errorf("Expected only [mine] in the catalog, got %v", names)
	}
}
