package serializer

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// msgpackSerializer packs values into MessagePack.
type msgpackSerializer struct{}

func (msgpackSerializer) Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSerializable, err)
	}
	return data, nil
}

func (msgpackSerializer) Decode(data []byte, into any) error {
	if err := msgpack.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDeserializable, err)
	}
	return nil
}

func (msgpackSerializer) Format() Format { return FormatMsgpack }

var _ Serializer = msgpackSerializer{}
