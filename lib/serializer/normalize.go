package serializer

import (
	"encoding"
	"fmt"
)

// normalize converts a value from the supported input type set into its
// canonical form: int64 for signed integers, uint64 for unsigned integers,
// float64 for floats, complex128 for complex numbers. Containers are
// normalized recursively. Registered custom types pass through untouched.
//
// The canonical form is what Deserialize returns, so the round-trip law
// Deserialize(Serialize(v)) == normalize(v) holds for every supported v.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, int64, uint64, float64, complex128, string:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint:
		return uint64(val), nil
	case uint8:
		return uint64(val), nil
	case uint16:
		return uint64(val), nil
	case uint32:
		return uint64(val), nil
	case float32:
		return float64(val), nil
	case complex64:
		return complex128(val), nil
	case []byte:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case Set:
		out := make(Set, len(val))
		for e := range val {
			n, err := normalizeScalar(e)
			if err != nil {
				return nil, fmt.Errorf("set element: %w", err)
			}
			out[n] = struct{}{}
		}
		return out, nil
	default:
		// custom types are kept as-is, they carry their own encoding
		if _, ok := v.(encoding.BinaryMarshaler); ok {
			if _, registered := lookupName(v); registered {
				return v, nil
			}
			return nil, fmt.Errorf("unregistered custom type %T (call serializer.Register)", v)
		}
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// normalizeScalar normalizes a value that must end up as a comparable
// scalar (a Set element).
func normalizeScalar(v any) (any, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	switch n.(type) {
	case bool, int64, uint64, float64, complex128, string:
		return n, nil
	default:
		return nil, fmt.Errorf("type %T is not a scalar", v)
	}
}
