package serializer

import (
	"bytes"
	"encoding/gob"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() ISerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the ISerializer interface using gob encoding
type gobSerializerImpl struct {
}

// gobEnvelope wraps the value so that nil round-trips (gob refuses to encode
// a bare nil interface) and so that values always travel as interface fields
// with their concrete type recorded.
type gobEnvelope struct {
	V any
}

func init() {
	// container types that travel inside the envelope's interface field
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register(Set{})
	gob.Register(gobEnvelope{})
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(v any) ([]byte, error) {
	canonical, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobEnvelope{V: canonical}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(data []byte) (any, error) {
	var env gobEnvelope
	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env.V, nil
}
