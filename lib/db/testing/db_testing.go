package testing

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/wildstrudel/nosqlite/lib/db"
)

// DBFactory opens a database at the given path. The suite controls the path
// so it can close and reopen the same file for persistence tests.
type DBFactory func(tb testing.TB, path string) *db.Database

// RunDatabaseTests runs a comprehensive behavioral test suite against a
// database opened through factory. The suite only goes through the public
// API, so it exercises any serializer the factory configures.
func RunDatabaseTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory)
		})

		t.Run("BatchSet", func(t *testing.T) {
			testBatchSet(t, factory)
		})

		t.Run("BatchGet", func(t *testing.T) {
			testBatchGet(t, factory)
		})

		t.Run("StrictItemOps", func(t *testing.T) {
			testStrictItemOps(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("Contains", func(t *testing.T) {
			testContains(t, factory)
		})

		t.Run("Size&Keys", func(t *testing.T) {
			testSizeAndKeys(t, factory)
		})

		t.Run("Items", func(t *testing.T) {
			testItems(t, factory)
		})

		t.Run("IterByDate", func(t *testing.T) {
			testIterByDate(t, factory)
		})

		t.Run("IterByDateWithTime", func(t *testing.T) {
			testIterByDateWithTime(t, factory)
		})

		t.Run("Catalog", func(t *testing.T) {
			testCatalog(t, factory)
		})

		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Opens a fresh database in a temp dir and registers cleanup
func open(tb testing.TB, factory DBFactory) *db.Database {
	tb.Helper()
	database := factory(tb, filepath.Join(tb.TempDir(), "test.db"))
	tb.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

// Gets (or creates) a collection, failing the test on error
func collection(tb testing.TB, database *db.Database, name string) *db.Collection {
	tb.Helper()
	col, err := database.GetOrCreateCollection(name)
	if err != nil {
		tb.Fatalf("GetOrCreateCollection(%q) failed: %v", name, err)
	}
	return col
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if err := col.Set("key", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := col.ItemGet("key")
	if err != nil {
		t.Fatalf("ItemGet failed: %v", err)
	}
	if got != "value1" {
		t.Errorf("Expected value1, got %v", got)
	}

	// overwrite
	if err := col.Set("key", int64(42)); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	got, err = col.ItemGet("key")
	if err != nil {
		t.Fatalf("ItemGet after overwrite failed: %v", err)
	}
	if got != int64(42) {
		t.Errorf("Expected 42, got %v (%T)", got, got)
	}

	if size, _ := col.Size(); size != 1 {
		t.Errorf("Expected size 1 after overwrite, got %d", size)
	}
}

func testBatchSet(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	batch := map[string]any{
		"a": int64(1),
		"b": int64(2),
		"c": int64(3),
	}
	if err := col.SetAll(batch); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}

	// all entries of one batch share a single timestamp
	tsA, err := col.LastModified("a")
	if err != nil {
		t.Fatalf("LastModified failed: %v", err)
	}
	for _, key := range []string{"b", "c"} {
		ts, err := col.LastModified(key)
		if err != nil {
			t.Fatalf("LastModified(%q) failed: %v", key, err)
		}
		if !ts.Equal(tsA) {
			t.Errorf("Expected %q to share the batch timestamp %v, got %v", key, tsA, ts)
		}
	}

	// a later single write moves only that entry
	time.Sleep(time.Millisecond)
	if err := col.Set("b", int64(20)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	tsB, _ := col.LastModified("b")
	if !tsB.After(tsA) {
		t.Errorf("Expected timestamp of rewritten entry to advance: batch=%v, rewrite=%v", tsA, tsB)
	}
	if ts, _ := col.LastModified("a"); !ts.Equal(tsA) {
		t.Errorf("Expected untouched entry to keep the batch timestamp, got %v", ts)
	}

	// empty batch is a no-op
	if err := col.SetAll(nil); err != nil {
		t.Errorf("SetAll(nil) failed: %v", err)
	}

	// a batch with an unserializable value is rejected as a whole
	sizeBefore, _ := col.Size()
	err = col.SetAll(map[string]any{"ok": int64(1), "bad": make(chan int)})
	if !db.IsSerialization(err) {
		t.Errorf("Expected serialization error for unsupported value, got %v", err)
	}
	if size, _ := col.Size(); size != sizeBefore {
		t.Errorf("Expected no partial rows after failed batch: size %d -> %d", sizeBefore, size)
	}
	if _, err := col.ItemGet("ok"); !db.IsKeyNotFound(err) {
		t.Errorf("Expected no entry from the failed batch, got %v", err)
	}
}

func testBatchGet(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if err := col.SetAll(map[string]any{"a": int64(1), "b": int64(2)}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}

	// missing keys are omitted, not errors
	got, err := col.Get("a", "missing", "b")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := map[string]any{"a": int64(1), "b": int64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// all-missing and empty requests yield empty maps
	if got, err := col.Get("x", "y"); err != nil || len(got) != 0 {
		t.Errorf("Expected empty result for missing keys, got %v (err %v)", got, err)
	}
	if got, err := col.Get(); err != nil || len(got) != 0 {
		t.Errorf("Expected empty result for empty request, got %v (err %v)", got, err)
	}
}

func testStrictItemOps(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if _, err := col.ItemGet("missing"); !db.IsKeyNotFound(err) {
		t.Errorf("Expected key-not-found from ItemGet, got %v", err)
	}

	if err := col.ItemDelete("missing"); !db.IsKeyNotFound(err) {
		t.Errorf("Expected key-not-found from ItemDelete, got %v", err)
	}

	if _, err := col.LastModified("missing"); !db.IsKeyNotFound(err) {
		t.Errorf("Expected key-not-found from LastModified, got %v", err)
	}

	// present keys succeed
	if err := col.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := col.ItemDelete("key"); err != nil {
		t.Errorf("ItemDelete of present key failed: %v", err)
	}
	if ok, _ := col.Contains("key"); ok {
		t.Errorf("Expected key to be gone after ItemDelete")
	}
}

func testDelete(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if err := col.SetAll(map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}

	// batch delete tolerates missing keys
	if err := col.Delete("a", "missing", "c"); err != nil {
		t.Errorf("Delete with missing key failed: %v", err)
	}
	if size, _ := col.Size(); size != 1 {
		t.Errorf("Expected size 1 after delete, got %d", size)
	}

	// deleting nothing is a no-op
	if err := col.Delete(); err != nil {
		t.Errorf("Delete() failed: %v", err)
	}
	if err := col.Delete("missing"); err != nil {
		t.Errorf("Delete of only-missing keys failed: %v", err)
	}
}

func testContains(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if ok, err := col.Contains("key"); err != nil || ok {
		t.Errorf("Expected Contains=false on empty collection, got %v (err %v)", ok, err)
	}

	if err := col.Set("key", nil); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ok, err := col.Contains("key"); err != nil || !ok {
		t.Errorf("Expected Contains=true after Set, got %v (err %v)", ok, err)
	}
}

func testSizeAndKeys(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	if size, err := col.Size(); err != nil || size != 0 {
		t.Errorf("Expected size 0, got %d (err %v)", size, err)
	}
	if keys, err := col.Keys(); err != nil || len(keys) != 0 {
		t.Errorf("Expected no keys, got %v (err %v)", keys, err)
	}

	want := []string{}
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := col.Set(key, int64(i)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		want = append(want, key)
	}

	if size, _ := col.Size(); size != 5 {
		t.Errorf("Expected size 5, got %d", size)
	}

	keys, err := col.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected keys %v, got %v", want, keys)
	}
}

func testItems(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	want := map[string]any{"a": int64(1), "b": "two", "c": true}
	if err := col.SetAll(want); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}

	got := map[string]any{}
	err := col.Items(func(key string, value any) error {
		got[key] = value
		return nil
	})
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// callback errors stop iteration and pass through unchanged
	sentinel := fmt.Errorf("stop")
	visited := 0
	err = col.Items(func(key string, value any) error {
		visited++
		return sentinel
	})
	if err != sentinel {
		t.Errorf("Expected callback error to pass through, got %v", err)
	}
	if visited != 1 {
		t.Errorf("Expected iteration to stop after first callback error, visited %d", visited)
	}
}

func testIterByDate(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	// three writes with strictly increasing timestamps
	for _, key := range []string{"first", "second", "third"} {
		if err := col.Set(key, key); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	var asc []string
	if err := col.IterByDate(false, func(key string, value any) error {
		asc = append(asc, key)
		return nil
	}); err != nil {
		t.Fatalf("IterByDate failed: %v", err)
	}
	if !reflect.DeepEqual(asc, []string{"first", "second", "third"}) {
		t.Errorf("Expected oldest-first order, got %v", asc)
	}

	var desc []string
	if err := col.IterByDate(true, func(key string, value any) error {
		desc = append(desc, key)
		return nil
	}); err != nil {
		t.Fatalf("IterByDate (reverse) failed: %v", err)
	}
	if !reflect.DeepEqual(desc, []string{"third", "second", "first"}) {
		t.Errorf("Expected newest-first order, got %v", desc)
	}

	// rewriting an old entry moves it to the end
	time.Sleep(time.Millisecond)
	if err := col.Set("first", "rewritten"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	asc = nil
	if err := col.IterByDate(false, func(key string, value any) error {
		asc = append(asc, key)
		return nil
	}); err != nil {
		t.Fatalf("IterByDate failed: %v", err)
	}
	if !reflect.DeepEqual(asc, []string{"second", "third", "first"}) {
		t.Errorf("Expected rewritten entry last, got %v", asc)
	}

	// batch entries share one timestamp and tie-break by key
	col2 := collection(t, open(t, factory), "batch")
	if err := col2.SetAll(map[string]any{"z": int64(1), "a": int64(2), "m": int64(3)}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}
	asc = nil
	if err := col2.IterByDate(false, func(key string, value any) error {
		asc = append(asc, key)
		return nil
	}); err != nil {
		t.Fatalf("IterByDate failed: %v", err)
	}
	if !reflect.DeepEqual(asc, []string{"a", "m", "z"}) {
		t.Errorf("Expected key-order tie-break within batch, got %v", asc)
	}
}

func testIterByDateWithTime(t *testing.T, factory DBFactory) {
	col := collection(t, open(t, factory), "test")

	for _, key := range []string{"first", "second", "third"} {
		if err := col.Set(key, key); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	// timestamps come out of the iteration itself; no per-row lookups
	// against the shared connection are needed while the cursor is open
	want := map[string]time.Time{}
	for _, key := range []string{"first", "second", "third"} {
		ts, err := col.LastModified(key)
		if err != nil {
			t.Fatalf("LastModified failed: %v", err)
		}
		want[key] = ts
	}

	var keys []string
	var prev time.Time
	err := col.IterByDateWithTime(false, func(key string, value any, modified time.Time) error {
		keys = append(keys, key)
		if modified.Before(prev) {
			t.Errorf("Expected non-decreasing timestamps, %q went backwards", key)
		}
		if !modified.Equal(want[key]) {
			t.Errorf("Expected %q modified at %v, got %v", key, want[key], modified)
		}
		prev = modified
		return nil
	})
	if err != nil {
		t.Fatalf("IterByDateWithTime failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"first", "second", "third"}) {
		t.Errorf("Expected oldest-first order, got %v", keys)
	}

	// reverse order yields non-increasing timestamps
	keys = nil
	prev = time.Time{}
	err = col.IterByDateWithTime(true, func(key string, value any, modified time.Time) error {
		if !prev.IsZero() && modified.After(prev) {
			t.Errorf("Expected non-increasing timestamps, %q went forwards", key)
		}
		keys = append(keys, key)
		prev = modified
		return nil
	})
	if err != nil {
		t.Fatalf("IterByDateWithTime (reverse) failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"third", "second", "first"}) {
		t.Errorf("Expected newest-first order, got %v", keys)
	}
}

func testCatalog(t *testing.T, factory DBFactory) {
	database := open(t, factory)

	names, err := database.CollectionNames()
	if err != nil {
		t.Fatalf("CollectionNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected empty catalog, got %v", names)
	}

	for _, name := range []string{"users", "sessions", "конфиг"} {
		if _, err := database.GetOrCreateCollection(name); err != nil {
			t.Fatalf("GetOrCreateCollection(%q) failed: %v", name, err)
		}
	}

	// get-or-create is idempotent
	first, _ := database.GetOrCreateCollection("users")
	second, _ := database.GetOrCreateCollection("users")
	if first != second {
		t.Errorf("Expected the same handle from repeated GetOrCreateCollection calls")
	}

	names, err = database.CollectionNames()
	if err != nil {
		t.Fatalf("CollectionNames failed: %v", err)
	}
	sort.Strings(names)
	want := []string{"sessions", "users", "конфиг"}
	sort.Strings(want)
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected catalog %v, got %v", want, names)
	}

	// dropping removes the collection and its data
	if err := database.DropCollection("sessions"); err != nil {
		t.Fatalf("DropCollection failed: %v", err)
	}
	names, _ = database.CollectionNames()
	if len(names) != 2 {
		t.Errorf("Expected 2 collections after drop, got %v", names)
	}

	// dropping an unknown collection is strict
	if err := database.DropCollection("sessions"); !db.IsCollectionNotFound(err) {
		t.Errorf("Expected collection-not-found from repeated drop, got %v", err)
	}
}

func testReopen(t *testing.T, factory DBFactory) {
	path := filepath.Join(t.TempDir(), "test.db")

	database := factory(t, path)
	col := collection(t, database, "test")
	if err := col.SetAll(map[string]any{"a": int64(1), "b": "two"}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// everything survives a reopen
	database = factory(t, path)
	defer database.Close()

	names, err := database.CollectionNames()
	if err != nil {
		t.Fatalf("CollectionNames after reopen failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"test"}) {
		t.Errorf("Expected catalog [test] after reopen, got %v", names)
	}

	col = collection(t, database, "test")
	got, err := col.Get("a", "b")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	want := map[string]any{"a": int64(1), "b": "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v after reopen, got %v", want, got)
	}
}

func testEdgeCases(t *testing.T, factory DBFactory) {
	database := open(t, factory)

	// the empty string is a valid key
	col := collection(t, database, "test")
	if err := col.Set("", "empty"); err != nil {
		t.Fatalf("Set with empty key failed: %v", err)
	}
	if got, err := col.ItemGet(""); err != nil || got != "empty" {
		t.Errorf("Expected empty-key round trip, got %v (err %v)", got, err)
	}

	// nil is a valid value and distinct from absence
	if err := col.Set("nothing", nil); err != nil {
		t.Fatalf("Set(nil) failed: %v", err)
	}
	if got, err := col.ItemGet("nothing"); err != nil || got != nil {
		t.Errorf("Expected nil round trip, got %v (err %v)", got, err)
	}
	if ok, _ := col.Contains("nothing"); !ok {
		t.Errorf("Expected Contains=true for nil value")
	}

	// collection names may contain anything, including SQL metacharacters
	for _, name := range []string{"", "with space", `"; DROP TABLE users; --`, "emoji-🗄"} {
		c, err := database.GetOrCreateCollection(name)
		if err != nil {
			t.Fatalf("GetOrCreateCollection(%q) failed: %v", name, err)
		}
		if err := c.Set("key", name); err != nil {
			t.Errorf("Set in collection %q failed: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("Expected Name()=%q, got %q", name, c.Name())
		}
	}
}
