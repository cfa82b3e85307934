package errors

import (
	stdliberrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	e := New(ErrCodeValidation, "name hint too short")
	want := "[COMMON_002] name hint too short"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}

	d := e.WithDetail("hint=as")
	if d.Error() != want+": hint=as" {
		t.Errorf("detail not rendered: %q", d.Error())
	}
	// Original must stay untouched.
	if e.Detail != "" {
		t.Error("WithDetail mutated the receiver")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stdliberrors.New("connection refused")
	e := Wrap(cause, ErrCodeStoreUnavailable, "scroll failed")

	if !stdliberrors.Is(e, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !IsStoreUnavailable(e) {
		t.Error("IsStoreUnavailable false for wrapped store error")
	}
	if IsStoreUnavailable(fmt.Errorf("outer: %w", cause)) {
		t.Error("IsStoreUnavailable true for unrelated chain")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Error("Wrap(nil) must return nil")
	}
}

func TestWrapUnknownKeepsOriginalCode(t *testing.T) {
	inner := New(ErrCodeSectionAbsent, "no warnings record")
	outer := Wrap(inner, CodeUnknown, "lookup failed")
	if outer.Code != ErrCodeSectionAbsent {
		t.Errorf("expected original code preserved, got %s", outer.Code)
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Error("nil should map to CodeOK")
	}
	if GetCode(stdliberrors.New("plain")) != CodeUnknown {
		t.Error("plain error should map to CodeUnknown")
	}
	wrapped := fmt.Errorf("outer: %w", New(ErrCodeNoEntity, "nothing extractable"))
	if GetCode(wrapped) != ErrCodeNoEntity {
		t.Error("code not extracted through fmt wrapping")
	}
}
