package mint

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IoError, "failed to write pak", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find wrapped cause")
	}

	var asErr *Error
	if !errors.As(err, &asErr) {
		t.Fatalf("expected errors.As to match *Error")
	}
	if asErr.Kind != IoError {
		t.Fatalf("expected Kind IoError, got %v", asErr.Kind)
	}
}

func TestErrorAnnotations(t *testing.T) {
	err := New(ModReadFailure, "bad archive").WithPath("/tmp/mod.zip").WithModID("123")
	if err.Path != "/tmp/mod.zip" || err.ModID != "123" {
		t.Fatalf("annotations not applied: %+v", err)
	}
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected non-empty error message")
	}
}
