package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// gobSerializer encodes arbitrary Go value graphs. Decoding requires a
// pointer to the same concrete type that was encoded.
type gobSerializer struct{}

func (gobSerializer) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return buf.Bytes(), nil
}

func (gobSerializer) Decode(data []byte, into any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(into); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDeserializable, err)
	}
	return nil
}

func (gobSerializer) Format() Format { return FormatGob }

var _ Serializer = gobSerializer{}
