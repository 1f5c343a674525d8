package serializer

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"Binary": NewBinarySerializer,
	"GOB":    NewGOBSerializer,
}

// point is a custom type participating via the binary marshalling contract
type point struct {
	X, Y int32
}

func (p *point) MarshalBinary() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(p.X))
	binary.BigEndian.PutUint32(b[4:8], uint32(p.Y))
	return b, nil
}

func (p *point) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("point payload must be 8 bytes, got %d", len(data))
	}
	p.X = int32(binary.BigEndian.Uint32(data[0:4]))
	p.Y = int32(binary.BigEndian.Uint32(data[4:8]))
	return nil
}

func init() {
	Register("serializer.point", func() any { return &point{} })
}

// testValues returns input values together with their expected canonical
// round-trip result (numerics normalize to their widest type).
func testValues() []struct {
	name string
	in   any
	want any
} {
	return []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"negative int", int16(-7), int64(-7)},
		{"int64", int64(-1 << 62), int64(-1 << 62)},
		{"uint", uint32(7), uint64(7)},
		{"uint64 max", uint64(1<<64 - 1), uint64(1<<64 - 1)},
		{"float32", float32(0.5), float64(0.5)},
		{"float64", 3.14159, 3.14159},
		{"complex", complex(1, 2), complex(1, 2)},
		{"string", "hello world", "hello world"},
		{"empty string", "", ""},
		{"unicode string", "grüße 你好", "grüße 你好"},
		{"bytes", []byte{0, 1, 2, 255}, []byte{0, 1, 2, 255}},
		{"list", []any{int64(1), "two", 3.0}, []any{int64(1), "two", 3.0}},
		{
			"nested map",
			map[string]any{"grades": map[string]any{"john": 3.5, "jim": 4.0, "james": 2}},
			map[string]any{"grades": map[string]any{"john": 3.5, "jim": 4.0, "james": int64(2)}},
		},
		{"set", NewSet("a", "b", 1), NewSet("a", "b", int64(1))},
		{
			"deep nesting",
			[]any{map[string]any{"inner": []any{NewSet(true), []byte("blob")}}},
			[]any{map[string]any{"inner": []any{NewSet(true), []byte("blob")}}},
		},
		{"custom type", &point{X: -3, Y: 99}, &point{X: -3, Y: 99}},
	}
}

// TestSerializerRoundTrip tests that values can be serialized and
// deserialized correctly by every implementation
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for _, tc := range testValues() {
				t.Run(tc.name, func(t *testing.T) {
					data, err := s.Serialize(tc.in)
					if err != nil {
						t.Fatalf("Failed to serialize %v: %v", tc.in, err)
					}

					result, err := s.Deserialize(data)
					if err != nil {
						t.Fatalf("Failed to deserialize %v: %v", tc.in, err)
					}

					if !reflect.DeepEqual(tc.want, result) {
						t.Errorf("Value doesn't match after round trip:\nExpected: %#v\nResult: %#v",
							tc.want, result)
					}
				})
			}
		})
	}
}

// TestSerializerUnsupportedTypes tests that values outside the supported
// type set are rejected at Serialize time
func TestSerializerUnsupportedTypes(t *testing.T) {
	unsupported := []struct {
		name string
		in   any
	}{
		{"channel", make(chan int)},
		{"function", func() {}},
		{"unregistered struct", struct{ A int }{A: 1}},
		{"typed map", map[int]string{1: "a"}},
		{"nested unsupported", map[string]any{"ok": int64(1), "bad": make(chan int)}},
		{"set with non-scalar element", Set{[2]int{1, 2}: {}}},
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for _, tc := range unsupported {
				t.Run(tc.name, func(t *testing.T) {
					if _, err := s.Serialize(tc.in); err == nil {
						t.Errorf("Expected error for %T but got none", tc.in)
					}
				})
			}
		})
	}
}

// TestBinarySerializerInvalidData tests how the binary serializer handles
// corrupt or truncated data
func TestBinarySerializerInvalidData(t *testing.T) {
	s := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "unknown tag",
			data:        []byte{0xff},
			expectError: true,
		},
		{
			name:        "bare nil",
			data:        []byte{tagNil},
			expectError: false,
		},
		{
			name:        "truncated bool",
			data:        []byte{tagBool},
			expectError: true,
		},
		{
			name:        "truncated int",
			data:        []byte{tagInt, 0, 0, 0},
			expectError: true,
		},
		{
			name:        "string length beyond data",
			data:        []byte{tagString, 0, 0, 0, 5, 'a', 'b', 'c'},
			expectError: true,
		},
		{
			name:        "trailing garbage",
			data:        []byte{tagBool, 1, 0xde, 0xad},
			expectError: true,
		},
		{
			name:        "list with missing elements",
			data:        []byte{tagList, 0, 0, 0, 2, tagNil},
			expectError: true,
		},
		{
			name:        "list length far beyond data",
			data:        []byte{tagList, 0xff, 0xff, 0xff, 0xff},
			expectError: true,
		},
		{
			name:        "map length far beyond data",
			data:        []byte{tagMap, 0x7f, 0xff, 0xff, 0xff},
			expectError: true,
		},
		{
			name:        "set with container element",
			data:        []byte{tagSet, 0, 0, 0, 1, tagList, 0, 0, 0, 0},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Deserialize(tc.data)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestGOBSerializerInvalidData tests that the gob serializer rejects garbage
func TestGOBSerializerInvalidData(t *testing.T) {
	s := NewGOBSerializer()

	for _, data := range [][]byte{{}, {0x01}, {0xde, 0xad, 0xbe, 0xef}} {
		if _, err := s.Deserialize(data); err == nil {
			t.Errorf("Expected error for %v but got none", data)
		}
	}
}

// TestNewSetElementValidation tests that non-scalar elements are rejected
// with a descriptive panic instead of a map-insert crash
func TestNewSetElementValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for non-scalar set element")
		}
	}()
	NewSet([]any{int64(1)})
}

// TestRegisterValidation tests the registry's contract checks
func TestRegisterValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for duplicate registration")
		}
	}()
	Register("serializer.point", func() any { return &point{} })
}
