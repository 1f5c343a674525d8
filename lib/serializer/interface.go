package serializer

import "fmt"

// ISerializer is the interface for all value serializers. A serializer
// converts a value from the supported type set into an opaque byte form
// suitable for storage in a single BLOB column, and back.
//
// The supported type set is closed: nil, bool, signed and unsigned integers
// (normalized to int64/uint64), floats (normalized to float64), complex
// numbers (normalized to complex128), strings, []byte, []any sequences,
// map[string]any mappings, Set values and arbitrary nestings thereof.
// Custom types participate by implementing encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler and being registered via Register.
type ISerializer interface {
	// Serialize serializes a value into a byte array.
	// It returns an error if the value (or anything nested inside it)
	// is outside the supported type set or a custom type fails to marshal.
	Serialize(v any) ([]byte, error)
	// Deserialize is the inverse of Serialize.
	// It returns an error on malformed or truncated input.
	Deserialize(data []byte) (any, error)
}

// Set is a set of scalar values (bool, int64, uint64, float64, complex128
// or string after normalization). It round-trips through every serializer
// with set semantics: element order is not preserved.
type Set map[any]struct{}

// NewSet creates a Set from the given elements. Elements are normalized,
// so NewSet(1, 2) and NewSet(int64(1), int64(2)) are the same set. NewSet
// panics if an element does not normalize to a scalar.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		n, err := normalizeScalar(e)
		if err != nil {
			panic(fmt.Sprintf("serializer: set element: %v", err))
		}
		s[n] = struct{}{}
	}
	return s
}
