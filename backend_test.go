package mandel

import (
	"errors"
	"testing"
)

// errNoAdapter stands in for a real device-enumeration failure; the stub
// factory below is the only GPU factory the test binary ever registers.
var errNoAdapter = errors.New("no adapter")

func failingFactory(width, height int) (Backend, error) {
	return nil, errNoAdapter
}

func TestRegisterGPUBackend(t *testing.T) {
	if err := RegisterGPUBackend(nil); err == nil {
		t.Error("RegisterGPUBackend(nil) succeeded, want error")
	}
	if err := RegisterGPUBackend(failingFactory); err != nil {
		t.Fatalf("RegisterGPUBackend: %v", err)
	}
	if err := RegisterGPUBackend(failingFactory); err == nil {
		t.Error("second RegisterGPUBackend succeeded, want error")
	}
	if registeredGPUFactory() == nil {
		t.Error("registeredGPUFactory() = nil after registration")
	}
}

func TestViewerFallsBackToCPUOnFactoryFailure(t *testing.T) {
	// The stub factory always fails, so construction must degrade to the
	// CPU backend rather than erroring.
	v, err := New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Close()
	if got := v.BackendName(); got != "cpu" {
		t.Errorf("BackendName() = %q, want %q", got, "cpu")
	}
}
