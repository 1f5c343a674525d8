// Package serializer converts arbitrary in-memory values into an opaque byte
// representation suitable for storage in a single BLOB column, and back. It
// defines a common interface and multiple implementations with different
// trade-offs.
//
// The package focuses on:
//   - A consistent interface for different serialization formats
//   - A closed, documented type set with a strict round-trip guarantee
//   - An explicit capability contract for custom types instead of
//     open-ended object-graph serialization
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations must
//     satisfy.
//
//   - binarySerializerImpl: Custom tagged binary format. Each value is written
//     as a one-byte type tag followed by a fixed-width or length-prefixed
//     payload; map keys are sorted so the encoding is deterministic. This is
//     the default and the most compact format.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding.
//     Larger output, but useful when values must be read by other Go programs
//     that already speak gob.
//
// Supported Type Set:
//
//	nil, bool, signed integers (normalized to int64), unsigned integers
//	(normalized to uint64), floats (normalized to float64), complex numbers
//	(normalized to complex128), string, []byte, []any, map[string]any, Set,
//	and arbitrary nestings thereof. The numeric normalization is deliberate:
//	Deserialize(Serialize(int32(5))) returns int64(5). Values outside the set
//	fail at Serialize time with a descriptive error.
//
// Custom Types:
//
//	A type joins the supported set by implementing encoding.BinaryMarshaler
//	and encoding.BinaryUnmarshaler and registering a factory under a stable
//	name, mirroring gob.Register:
//
//	  serializer.Register("myapp.Point", func() any { return &Point{} })
//
//	Deserialize returns a freshly allocated *Point for stored Point values.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
