package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"new", New(NotFound, "gone"), NotFound},
		{"wrapped cause", Wrap(Decode, errors.New("bad byte"), "decode failed"), Decode},
		{"fmt wrapped", fmt.Errorf("outer: %w", New(InvalidParameter, "bad skip")), InvalidParameter},
		{"plain error", errors.New("boom"), Internal},
		{"double wrapped keeps outer kind", Wrap(NotFound, New(Transient, "timeout"), "missing"), NotFound},
	}

	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("%s: KindOf = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(New(InvalidParameter, "invalid skip value %d", -1)); got != "invalid skip value -1" {
		t.Errorf("unexpected message: %q", got)
	}
	if got := Message(errors.New("internal detail")); got != "" {
		t.Errorf("unclassified error must yield empty message, got %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(Transient, cause, "fetch failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
	if got := err.Error(); got != "fetch failed: root cause" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Internal:         "internal",
		InvalidParameter: "invalid_parameter",
		NotFound:         "not_found",
		Decode:           "decode",
		Transient:        "transient",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
