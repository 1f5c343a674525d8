package serializer

import (
	"testing"
)

// benchValue is a representative document-like value
func benchValue() any {
	return map[string]any{
		"id":     int64(12345),
		"name":   "benchmark value",
		"pi":     3.14159,
		"tags":   []any{"a", "b", "c"},
		"grades": map[string]any{"john": 3.5, "jim": 4.0, "james": int64(2)},
		"blob":   []byte("some opaque payload bytes"),
	}
}

func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		b.Run(name, func(b *testing.B) {
			s := factory()
			v := benchValue()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Serialize(v); err != nil {
					b.Fatalf("serialize: %v", err)
				}
			}
		})
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	for name, factory := range testSerializers {
		b.Run(name, func(b *testing.B) {
			s := factory()
			data, err := s.Serialize(benchValue())
			if err != nil {
				b.Fatalf("serialize: %v", err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Deserialize(data); err != nil {
					b.Fatalf("deserialize: %v", err)
				}
			}
		})
	}
}
