package serializer

import "fmt"

// rawSerializer is the identity codec for strings and byte slices.
type rawSerializer struct{}

func (rawSerializer) Encode(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case []byte:
		out := make([]byte, len(s))
		copy(out, s)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: raw format requires string or []byte, got %T", ErrNotSerializable, v)
	}
}

func (rawSerializer) Decode(data []byte, into any) error {
	switch out := into.(type) {
	case *string:
		*out = string(data)
		return nil
	case *[]byte:
		*out = make([]byte, len(data))
		copy(*out, data)
		return nil
	case *any:
		*out = string(data)
		return nil
	default:
		return fmt.Errorf("%w: raw format decodes into *string, *[]byte or *any, got %T", ErrNotDeserializable, into)
	}
}

func (rawSerializer) Format() Format { return FormatRaw }

var _ Serializer = rawSerializer{}
