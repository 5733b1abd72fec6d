package keys

import (
	"errors"
	"strings"
	"testing"
)

func TestBuilder_PositionalArgs(t *testing.T) {
	b := &Builder{Function: "pkg.Lookup"}

	key, err := b.Build([]any{1, "x"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := "pkg.Lookup:arg0=1:arg1=x"
	if key != want {
		t.Errorf("Build = %q, want %q", key, want)
	}
}

func TestBuilder_NamedArgs(t *testing.T) {
	b := &Builder{Function: "pkg.Lookup"}

	key, err := b.Build([]any{Named{Name: "uid", Value: 42}, Named{Name: "full", Value: true}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := "pkg.Lookup:uid=42:full=true"
	if key != want {
		t.Errorf("Build = %q, want %q", key, want)
	}
}

func TestBuilder_NoArgs(t *testing.T) {
	b := &Builder{Function: "pkg.Now"}

	key, err := b.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if key != "pkg.Now" {
		t.Errorf("Build = %q, want %q", key, "pkg.Now")
	}
}

func TestBuilder_MapArgsAreDeterministic(t *testing.T) {
	b := &Builder{Function: "f"}

	// Maps built in different insertion orders must render identically.
	m1 := map[string]int{}
	m1["b"] = 2
	m1["a"] = 1
	m2 := map[string]int{}
	m2["a"] = 1
	m2["b"] = 2

	k1, err := b.Build([]any{m1})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	k2, err := b.Build([]any{m2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if k1 != k2 {
		t.Errorf("equal maps rendered differently: %q vs %q", k1, k2)
	}
}

func TestBuilder_Selectors(t *testing.T) {
	b := &Builder{Function: "f", Selectors: []string{"uid"}}

	key, err := b.Build([]any{Named{Name: "uid", Value: 7}, Named{Name: "noise", Value: "x"}, "positional"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if key != "f:uid=7" {
		t.Errorf("Build = %q, want %q", key, "f:uid=7")
	}
}

func TestBuilder_SelectorsByPosition(t *testing.T) {
	b := &Builder{Function: "f", Selectors: []string{"arg1"}}

	key, err := b.Build([]any{"ignored", "kept"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if key != "f:arg1=kept" {
		t.Errorf("Build = %q, want %q", key, "f:arg1=kept")
	}
}

func TestBuilder_KeyFuncWinsOverSelectors(t *testing.T) {
	b := &Builder{
		Function:  "f",
		Selectors: []string{"arg0"},
		KeyFn: func(args []any) (string, error) {
			return "custom", nil
		},
	}

	key, err := b.Build([]any{"a", "b"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if key != "f:custom" {
		t.Errorf("Build = %q, want %q", key, "f:custom")
	}
}

func TestBuilder_KeyFuncError(t *testing.T) {
	b := &Builder{
		Function: "f",
		KeyFn: func(args []any) (string, error) {
			return "", errors.New("boom")
		},
	}

	if _, err := b.Build([]any{1}); !errors.Is(err, ErrUnrenderable) {
		t.Errorf("Build error = %v, want ErrUnrenderable", err)
	}
}

func TestBuilder_EscapesSeparators(t *testing.T) {
	b := &Builder{Function: "f"}

	key, err := b.Build([]any{"v@g9"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.Contains(key, "@g") {
		t.Errorf("rendered argument leaked a version separator: %q", key)
	}
}

func TestBuilder_NoCollisionBetweenForms(t *testing.T) {
	b := &Builder{Function: "f"}

	// A single argument that textually contains the separator sequence
	// of a two-argument call must not produce the same key.
	one, err := b.Build([]any{"x:arg1=y"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	two, err := b.Build([]any{"x", "y"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if one == two {
		t.Errorf("distinct argument lists collided on %q", one)
	}
}

func TestBuilder_LongKeysDigested(t *testing.T) {
	b := &Builder{Function: "f"}

	long := strings.Repeat("x", 2*MaxKeyLength)
	key, err := b.Build([]any{long})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(key) > MaxKeyLength {
		t.Errorf("key length = %d, want <= %d", len(key), MaxKeyLength)
	}
	if !strings.HasPrefix(key, "f:") {
		t.Errorf("digested key lost its function identity: %q", key)
	}

	// Same input, same digest.
	again, _ := b.Build([]any{long})
	if key != again {
		t.Error("digested key is not deterministic")
	}

	// Different input, different digest.
	other, _ := b.Build([]any{long + "y"})
	if key == other {
		t.Error("distinct long arguments collided")
	}
}

func TestBuilder_UnrenderableArg(t *testing.T) {
	b := &Builder{Function: "f"}

	if _, err := b.Build([]any{func() {}}); !errors.Is(err, ErrUnrenderable) {
		t.Errorf("Build(func) error = %v, want ErrUnrenderable", err)
	}
}

func TestBuilder_UserID(t *testing.T) {
	b := &Builder{Function: "f", UserParam: "uid"}

	uid, ok := b.UserID([]any{Named{Name: "uid", Value: 42}, Named{Name: "x", Value: 1}})
	if !ok {
		t.Fatal("UserID did not find the configured parameter")
	}
	if uid != "42" {
		t.Errorf("UserID = %q, want %q", uid, "42")
	}

	if _, ok := b.UserID([]any{Named{Name: "x", Value: 1}}); ok {
		t.Error("UserID found a user id in arguments without one")
	}

	unconfigured := &Builder{Function: "f"}
	if _, ok := unconfigured.UserID([]any{Named{Name: "uid", Value: 42}}); ok {
		t.Error("UserID reported a user id without a configured parameter")
	}
}

func TestRender_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"s", "s"},
		{[]byte("b"), "b"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{3.5, "3.5"},
	}
	for _, tt := range tests {
		got, err := Render(tt.in)
		if err != nil {
			t.Errorf("Render(%v) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Render(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscape_RoundTripSafety(t *testing.T) {
	in := "a:b=c@d|e%f"
	out := Escape(in)
	if strings.ContainsAny(out, ":=@|") {
		t.Errorf("Escape left separators in %q", out)
	}
	if Escape("plain") != "plain" {
		t.Error("Escape modified a separator-free string")
	}
}
