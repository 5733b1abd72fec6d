package serializer

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

type record struct {
	Name  string
	Count int
	Tags  []string
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("protobuf")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("New(protobuf) error = %v, want ErrUnknownFormat", err)
	}
}

func TestNew_EmptyDefaultsToJSON(t *testing.T) {
	s, err := New("")
	if err != nil {
		t.Fatalf("New(\"\") failed: %v", err)
	}
	if s.Format() != FormatJSON {
		t.Errorf("Format() = %q, want %q", s.Format(), FormatJSON)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	s, _ := New(FormatJSON)

	in := record{Name: "widget", Count: 3, Tags: []string{"a", "b"}}
	data, err := s.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out record
	if err := s.Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestJSON_RejectsUnencodable(t *testing.T) {
	s, _ := New(FormatJSON)

	if _, err := s.Encode(make(chan int)); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("Encode(chan) error = %v, want ErrNotSerializable", err)
	}

	var out record
	if err := s.Decode([]byte("{not json"), &out); !errors.Is(err, ErrNotDeserializable) {
		t.Errorf("Decode(garbage) error = %v, want ErrNotDeserializable", err)
	}
}

func TestGob_RoundTrip(t *testing.T) {
	s, _ := New(FormatGob)

	in := record{Name: "gadget", Count: 7, Tags: []string{"x"}}
	data, err := s.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out record
	if err := s.Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestGob_RejectsGarbage(t *testing.T) {
	s, _ := New(FormatGob)

	var out record
	if err := s.Decode([]byte{0x01, 0x02, 0x03}, &out); !errors.Is(err, ErrNotDeserializable) {
		t.Errorf("Decode(garbage) error = %v, want ErrNotDeserializable", err)
	}
}

func TestMsgpack_RoundTrip(t *testing.T) {
	s, _ := New(FormatMsgpack)

	in := record{Name: "sprocket", Count: 42, Tags: []string{"big", "heavy"}}
	data, err := s.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out record
	if err := s.Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestRaw_RoundTrip(t *testing.T) {
	s, _ := New(FormatRaw)

	data, err := s.Encode("hello")
	if err != nil {
		t.Fatalf("Encode(string) failed: %v", err)
	}
	var out string
	if err := s.Decode(data, &out); err != nil {
		t.Fatalf("Decode into *string failed: %v", err)
	}
	if out != "hello" {
		t.Errorf("round trip = %q, want %q", out, "hello")
	}

	raw := []byte{0x00, 0xff, 0x10}
	data, err = s.Encode(raw)
	if err != nil {
		t.Fatalf("Encode([]byte) failed: %v", err)
	}
	var bout []byte
	if err := s.Decode(data, &bout); err != nil {
		t.Fatalf("Decode into *[]byte failed: %v", err)
	}
	if !bytes.Equal(bout, raw) {
		t.Errorf("round trip = %v, want %v", bout, raw)
	}
}

func TestRaw_RejectsNonStrings(t *testing.T) {
	s, _ := New(FormatRaw)

	if _, err := s.Encode(42); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("Encode(int) error = %v, want ErrNotSerializable", err)
	}

	var out int
	if err := s.Decode([]byte("42"), &out); !errors.Is(err, ErrNotDeserializable) {
		t.Errorf("Decode into *int error = %v, want ErrNotDeserializable", err)
	}
}

func TestRaw_EncodeCopies(t *testing.T) {
	s, _ := New(FormatRaw)

	src := []byte("abc")
	data, _ := s.Encode(src)
	src[0] = 'z'
	if string(data) != "abc" {
		t.Error("Encode must copy its input")
	}
}
