package testing

import (
	"fmt"
	"testing"
)

// RunDatabaseBenchmarks runs all benchmarks for a database opened through
// factory.
func RunDatabaseBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory)
		})

		b.Run("SetBatch", func(b *testing.B) {
			benchmarkSetBatch(b, factory)
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory)
		})

		b.Run("Contains", func(b *testing.B) {
			benchmarkContains(b, factory)
		})

		b.Run("Items", func(b *testing.B) {
			benchmarkItems(b, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Representative document-shaped value
func benchValue(i int) map[string]any {
	return map[string]any{
		"id":     int64(i),
		"name":   fmt.Sprintf("entry-%d", i),
		"active": i%2 == 0,
		"tags":   []any{"bench", int64(i)},
	}
}

func benchmarkSet(b *testing.B, factory DBFactory) {
	col := collection(b, open(b, factory), "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := col.Set(fmt.Sprintf("key-%d", i), benchValue(i)); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}
}

func benchmarkSetBatch(b *testing.B, factory DBFactory) {
	col := collection(b, open(b, factory), "bench")

	batch := make(map[string]any, 100)
	for i := 0; i < 100; i++ {
		batch[fmt.Sprintf("key-%d", i)] = benchValue(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := col.SetAll(batch); err != nil {
			b.Fatalf("SetAll failed: %v", err)
		}
	}
}

func benchmarkGet(b *testing.B, factory DBFactory) {
	col := collection(b, open(b, factory), "bench")

	const keys = 1000
	for i := 0; i < keys; i++ {
		if err := col.Set(fmt.Sprintf("key-%d", i), benchValue(i)); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := col.ItemGet(fmt.Sprintf("key-%d", i%keys)); err != nil {
			b.Fatalf("ItemGet failed: %v", err)
		}
	}
}

func benchmarkContains(b *testing.B, factory DBFactory) {
	col := collection(b, open(b, factory), "bench")

	const keys = 1000
	for i := 0; i < keys; i++ {
		if err := col.Set(fmt.Sprintf("key-%d", i), int64(i)); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// alternate between present and absent keys
		if _, err := col.Contains(fmt.Sprintf("key-%d", i%(2*keys))); err != nil {
			b.Fatalf("Contains failed: %v", err)
		}
	}
}

func benchmarkItems(b *testing.B, factory DBFactory) {
	col := collection(b, open(b, factory), "bench")

	for i := 0; i < 1000; i++ {
		if err := col.Set(fmt.Sprintf("key-%d", i), benchValue(i)); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		err := col.Items(func(key string, value any) error {
			count++
			return nil
		})
		if err != nil {
			b.Fatalf("Items failed: %v", err)
		}
		if count != 1000 {
			b.Fatalf("Expected 1000 entries, visited %d", count)
		}
	}
}
