package serializer

import (
	"errors"
	"fmt"
)

// Sentinel errors for codec operations.
var (
	ErrUnknownFormat     = errors.New("serializer: unknown format")
	ErrNotSerializable   = errors.New("serializer: value cannot be encoded")
	ErrNotDeserializable = errors.New("serializer: payload cannot be decoded")
)

// Format identifies a payload codec.
type Format string

const (
	// FormatJSON encodes structured data as JSON. Map keys are sorted by
	// the encoder, so encoding is deterministic.
	FormatJSON Format = "json"

	// FormatGob encodes arbitrary Go value graphs with encoding/gob.
	// Payloads are only readable by a Go process that knows the types.
	FormatGob Format = "gob"

	// FormatMsgpack encodes values as MessagePack, a compact binary
	// representation suited to large records.
	FormatMsgpack Format = "msgpack"

	// FormatRaw stores strings and byte slices verbatim and rejects
	// everything else.
	FormatRaw Format = "raw"
)

// Serializer converts values to byte payloads and back.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Round trip: Decode(Encode(v)) must reproduce v for every v in the
//   codec's domain.
// - Errors: out-of-domain values fail with ErrNotSerializable; corrupt
//   or mistyped payloads fail with ErrNotDeserializable.
type Serializer interface {
	// Encode converts a value to its byte representation.
	Encode(v any) ([]byte, error)

	// Decode parses data into the value pointed to by into.
	Decode(data []byte, into any) error

	// Format reports which codec this is.
	Format() Format
}

// New returns the serializer for the given format.
func New(f Format) (Serializer, error) {
	switch f {
	case FormatJSON, "":
		return jsonSerializer{}, nil
	case FormatGob:
		return gobSerializer{}, nil
	case FormatMsgpack:
		return msgpackSerializer{}, nil
	case FormatRaw:
		return rawSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
