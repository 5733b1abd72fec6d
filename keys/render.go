package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnrenderable is returned when an argument has no deterministic
// textual form (functions, channels, cyclic structures).
var ErrUnrenderable = errors.New("keys: argument cannot be rendered")

// Render produces the canonical textual form of an argument. Scalars
// render via strconv; composites render as canonical JSON, which sorts
// map keys so semantically equal values always render identically.
func Render(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8:
		return strconv.FormatInt(int64(t), 10), nil
	case int16:
		return strconv.FormatInt(int64(t), 10), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnrenderable, err)
		}
		return string(data), nil
	}
}

// reserved are the key-structure separators. They are escaped inside
// argument renderings so a rendered value can never be confused with
// key structure.
const reserved = "%:=@|"

// Escape percent-encodes the reserved separator bytes so s can be
// embedded in a key.
func Escape(s string) string {
	if !strings.ContainsAny(s, reserved) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(reserved, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
