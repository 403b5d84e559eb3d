package fence

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/fence/hal"
)

// TestNativeErrorMessage tests the formatted error text.
func TestNativeErrorMessage(t *testing.T) {
	err := &NativeError{Op: "RetainEvent", Status: hal.StatusOutOfResources}
	msg := err.Error()
	for _, want := range []string{"RetainEvent", "-5", "OutOfResources"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

// TestNativeErrorUnwrap tests sentinel matching through errors.Is/As.
func TestNativeErrorUnwrap(t *testing.T) {
	var err error = &NativeError{Op: "WaitForEvents", Status: hal.StatusInvalidEvent}

	if !errors.Is(err, ErrNative) {
		t.Error("errors.Is(err, ErrNative) = false")
	}
	var ne *NativeError
	if !errors.As(err, &ne) {
		t.Fatal("errors.As failed for *NativeError")
	}
	if ne.Status != hal.StatusInvalidEvent {
		t.Errorf("Status = %v, want InvalidEvent", ne.Status)
	}
}

// TestGuarded tests status-to-error conversion.
func TestGuarded(t *testing.T) {
	if err := guarded("RetainEvent", hal.StatusSuccess); err != nil {
		t.Errorf("guarded(Success) = %v, want nil", err)
	}

	err := guarded("ReleaseEvent", hal.StatusInvalidContext)
	if err == nil {
		t.Fatal("guarded(InvalidContext) = nil, want error")
	}
	var ne *NativeError
	if !errors.As(err, &ne) {
		t.Fatalf("guarded returned %T, want *NativeError", err)
	}
	if ne.Op != "ReleaseEvent" || ne.Status != hal.StatusInvalidContext {
		t.Errorf("guarded = {%q %v}, want {ReleaseEvent InvalidContext}", ne.Op, ne.Status)
	}
}
