package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// MaxKeyLength is the longest key the builder emits verbatim. Longer
// keys have their argument portion replaced by a digest.
const MaxKeyLength = 512

// DefaultPrefix is the key prefix used when a cache does not set one.
const DefaultPrefix = "cache:"

// Named attaches a parameter name to an argument value. Call sites use
// it where another language would pass a keyword argument:
//
//	f.Call(ctx, keys.Named{Name: "uid", Value: 42})
type Named struct {
	Name  string
	Value any
}

// KeyFunc derives the argument portion of a key directly from the call
// arguments, replacing the default rendering entirely.
type KeyFunc func(args []any) (string, error)

// Builder derives deterministic cache keys from call arguments.
//
// The produced fragment has the shape
//
//	<function>[:<name>=<value>]*
//
// where values are canonical renderings with separator bytes escaped.
// The cache manager prepends its prefix and appends the version suffix.
type Builder struct {
	// Function is the stable procedure identity.
	Function string

	// Selectors names the arguments that participate in the key. Nil
	// means all arguments participate in call order. Positional
	// arguments are addressed as "arg0", "arg1", ...
	Selectors []string

	// KeyFn, when set, wins over Selectors and replaces the argument
	// portion entirely.
	KeyFn KeyFunc

	// UserParam names the argument carrying the user id, when per-user
	// versioning is in play.
	UserParam string
}

// Build renders the key fragment for the given arguments.
func (b *Builder) Build(args []any) (string, error) {
	fragment, err := b.argsFragment(args)
	if err != nil {
		return "", err
	}

	key := b.Function + fragment
	if len(key) > MaxKeyLength {
		key = b.Function + ":" + digest(fragment)
	}
	return key, nil
}

// UserID extracts and renders the user-id argument, if one is
// configured and present.
func (b *Builder) UserID(args []any) (string, bool) {
	if b.UserParam == "" {
		return "", false
	}
	for _, arg := range args {
		named, ok := arg.(Named)
		if !ok || named.Name != b.UserParam {
			continue
		}
		rendered, err := Render(named.Value)
		if err != nil {
			return "", false
		}
		return rendered, true
	}
	return "", false
}

func (b *Builder) argsFragment(args []any) (string, error) {
	if b.KeyFn != nil {
		fragment, err := b.KeyFn(args)
		if err != nil {
			return "", fmt.Errorf("%w: key function: %v", ErrUnrenderable, err)
		}
		if fragment == "" {
			return "", nil
		}
		return ":" + Escape(fragment), nil
	}

	var sb strings.Builder
	for i, arg := range args {
		name := "arg" + strconv.Itoa(i)
		value := arg
		if named, ok := arg.(Named); ok {
			name = named.Name
			value = named.Value
		}
		if !b.selected(name) {
			continue
		}
		rendered, err := Render(value)
		if err != nil {
			return "", fmt.Errorf("argument %s: %w", name, err)
		}
		sb.WriteByte(':')
		sb.WriteString(Escape(name))
		sb.WriteByte('=')
		sb.WriteString(Escape(rendered))
	}
	return sb.String(), nil
}

func (b *Builder) selected(name string) bool {
	if b.Selectors == nil {
		return true
	}
	for _, s := range b.Selectors {
		if s == name {
			return true
		}
	}
	return false
}

// digest compresses an oversized argument fragment to 16 hex characters.
func digest(fragment string) string {
	sum := sha256.Sum256([]byte(fragment))
	return hex.EncodeToString(sum[:8])
}
