package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsMatchesThroughWrapping(t *testing.T) {
	base := New(AuthFail, "gcm tag mismatch", nil)
	wrapped := fmt.Errorf("decode failed: %w", base)

	if !errors.Is(wrapped, ErrAuthFail) {
		t.Fatal("errors.Is should match ErrAuthFail through fmt.Errorf wrapping")
	}
	if errors.Is(wrapped, ErrBadHeader) {
		t.Fatal("errors.Is should not match a different Kind")
	}
}

func TestKindOf(t *testing.T) {
	err := New(CarrierTooSmall, "need 100 bytes, have 10", nil)
	kind, ok := KindOf(err)
	if !ok || kind != CarrierTooSmall {
		t.Fatalf("KindOf() = %v, %v; want CarrierTooSmall, true", kind, ok)
	}

	_, ok = KindOf(errors.New("plain error"))
	if ok {
		t.Fatal("KindOf() should report false for a non-*Error")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := New(CarrierMalformed, "truncated PNG IDAT", cause)
	msg := err.Error()
	if !strings.Contains(msg, "unexpected EOF") {
		t.Fatalf("Error() = %q, want it to include the cause %q", msg, "unexpected EOF")
	}
}
