package serializer

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// NewBinarySerializer creates a new serializer using a custom tagged binary
// format optimized for compact storage. This is the default serializer.
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format
type binarySerializerImpl struct {
}

// Type tags, one per canonical type
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagComplex
	tagString
	tagBytes
	tagList
	tagMap
	tagSet
	tagCustom
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (s binarySerializerImpl) Serialize(v any) ([]byte, error) {
	canonical, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.encode(&buf, canonical); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s binarySerializerImpl) Deserialize(data []byte) (any, error) {
	v, pos, err := s.decode(data, 0)
	if err != nil {
		return nil, err
	}
	if pos != len(data) {
		return nil, fmt.Errorf("trailing garbage after value (%d unread bytes)", len(data)-pos)
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// encode writes one canonical value. Map keys are written in sorted order so
// the encoding of a given value is deterministic.
func (s binarySerializerImpl) encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(tagNil)
	case bool:
		buf.WriteByte(tagBool)
		if val {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int64:
		buf.WriteByte(tagInt)
		writeUint64(buf, uint64(val))
	case uint64:
		buf.WriteByte(tagUint)
		writeUint64(buf, val)
	case float64:
		buf.WriteByte(tagFloat)
		writeUint64(buf, math.Float64bits(val))
	case complex128:
		buf.WriteByte(tagComplex)
		writeUint64(buf, math.Float64bits(real(val)))
		writeUint64(buf, math.Float64bits(imag(val)))
	case string:
		buf.WriteByte(tagString)
		writeLen(buf, len(val))
		buf.WriteString(val)
	case []byte:
		buf.WriteByte(tagBytes)
		writeLen(buf, len(val))
		buf.Write(val)
	case []any:
		buf.WriteByte(tagList)
		writeLen(buf, len(val))
		for _, e := range val {
			if err := s.encode(buf, e); err != nil {
				return err
			}
		}
	case map[string]any:
		buf.WriteByte(tagMap)
		writeLen(buf, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeLen(buf, len(k))
			buf.WriteString(k)
			if err := s.encode(buf, val[k]); err != nil {
				return err
			}
		}
	case Set:
		buf.WriteByte(tagSet)
		writeLen(buf, len(val))
		for e := range val {
			if err := s.encode(buf, e); err != nil {
				return err
			}
		}
	default:
		// normalize guarantees anything else is a registered custom type
		name, ok := lookupName(v)
		if !ok {
			return fmt.Errorf("unregistered custom type %T", v)
		}
		payload, err := v.(encoding.BinaryMarshaler).MarshalBinary()
		if err != nil {
			return fmt.Errorf("marshal %T: %w", v, err)
		}
		buf.WriteByte(tagCustom)
		writeLen(buf, len(name))
		buf.WriteString(name)
		writeLen(buf, len(payload))
		buf.Write(payload)
	}
	return nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeLen(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// decode reads one value starting at pos and returns it together with the
// position of the first unread byte. Every read is bounds-checked so
// truncated input surfaces as an error instead of a panic.
func (s binarySerializerImpl) decode(data []byte, pos int) (any, int, error) {
	if pos >= len(data) {
		return nil, 0, fmt.Errorf("data too short for type tag")
	}
	tag := data[pos]
	pos++

	switch tag {
	case tagNil:
		return nil, pos, nil

	case tagBool:
		if pos+1 > len(data) {
			return nil, 0, fmt.Errorf("data too short for bool")
		}
		return data[pos] != 0, pos + 1, nil

	case tagInt:
		v, pos, err := readUint64(data, pos)
		return int64(v), pos, err

	case tagUint:
		v, pos, err := readUint64(data, pos)
		return v, pos, err

	case tagFloat:
		v, pos, err := readUint64(data, pos)
		return math.Float64frombits(v), pos, err

	case tagComplex:
		re, pos, err := readUint64(data, pos)
		if err != nil {
			return nil, 0, err
		}
		im, pos, err := readUint64(data, pos)
		if err != nil {
			return nil, 0, err
		}
		return complex(math.Float64frombits(re), math.Float64frombits(im)), pos, nil

	case tagString:
		b, pos, err := readBlob(data, pos, "string")
		return string(b), pos, err

	case tagBytes:
		b, pos, err := readBlob(data, pos, "bytes")
		if err != nil {
			return nil, 0, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, pos, nil

	case tagList:
		count, pos, err := readLen(data, pos, "list")
		if err != nil {
			return nil, 0, err
		}
		out := make([]any, count)
		for i := 0; i < count; i++ {
			var e any
			e, pos, err = s.decode(data, pos)
			if err != nil {
				return nil, 0, err
			}
			out[i] = e
		}
		return out, pos, nil

	case tagMap:
		count, pos, err := readLen(data, pos, "map")
		if err != nil {
			return nil, 0, err
		}
		out := make(map[string]any, count)
		for i := 0; i < count; i++ {
			var kb []byte
			kb, pos, err = readBlob(data, pos, "map key")
			if err != nil {
				return nil, 0, err
			}
			var e any
			e, pos, err = s.decode(data, pos)
			if err != nil {
				return nil, 0, err
			}
			out[string(kb)] = e
		}
		return out, pos, nil

	case tagSet:
		count, pos, err := readLen(data, pos, "set")
		if err != nil {
			return nil, 0, err
		}
		out := make(Set, count)
		for i := 0; i < count; i++ {
			var e any
			e, pos, err = s.decode(data, pos)
			if err != nil {
				return nil, 0, err
			}
			// only canonical scalars may be set elements; anything else
			// in the input is forged bytes, not a value Serialize wrote
			switch e.(type) {
			case bool, int64, uint64, float64, complex128, string:
			default:
				return nil, 0, fmt.Errorf("set element of type %T is not a scalar", e)
			}
			out[e] = struct{}{}
		}
		return out, pos, nil

	case tagCustom:
		nameBytes, pos, err := readBlob(data, pos, "type name")
		if err != nil {
			return nil, 0, err
		}
		payload, pos, err := readBlob(data, pos, "custom payload")
		if err != nil {
			return nil, 0, err
		}
		factory, ok := lookupFactory(string(nameBytes))
		if !ok {
			return nil, 0, fmt.Errorf("unknown custom type %q", nameBytes)
		}
		inst := factory()
		if err := inst.(encoding.BinaryUnmarshaler).UnmarshalBinary(payload); err != nil {
			return nil, 0, fmt.Errorf("unmarshal %q: %w", nameBytes, err)
		}
		return inst, pos, nil

	default:
		return nil, 0, fmt.Errorf("unknown type tag 0x%02x", tag)
	}
}

func readUint64(data []byte, pos int) (uint64, int, error) {
	if pos+8 > len(data) {
		return 0, 0, fmt.Errorf("data too short for 8-byte value")
	}
	return binary.BigEndian.Uint64(data[pos : pos+8]), pos + 8, nil
}

func readLen(data []byte, pos int, what string) (int, int, error) {
	if pos+4 > len(data) {
		return 0, 0, fmt.Errorf("data too short for %s length", what)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	// every announced element or byte needs at least one input byte, so a
	// length beyond the remaining data is malformed; checking here keeps a
	// forged length from driving a huge allocation
	if n > len(data)-pos {
		return 0, 0, fmt.Errorf("%s length %d exceeds %d remaining bytes", what, n, len(data)-pos)
	}
	return n, pos, nil
}

func readBlob(data []byte, pos int, what string) ([]byte, int, error) {
	n, pos, err := readLen(data, pos, what)
	if err != nil {
		return nil, 0, err
	}
	if pos+n > len(data) {
		return nil, 0, fmt.Errorf("data too short for %s data", what)
	}
	return data[pos : pos+n], pos + n, nil
}
