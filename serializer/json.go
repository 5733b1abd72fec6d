package serializer

import (
	"encoding/json"
	"fmt"
)

// jsonSerializer encodes structured data as JSON.
type jsonSerializer struct{}

func (jsonSerializer) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return data, nil
}

func (jsonSerializer) Decode(data []byte, into any) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDeserializable, err)
	}
	return nil
}

func (jsonSerializer) Format() Format { return FormatJSON }

var _ Serializer = jsonSerializer{}
