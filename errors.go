package zimlua

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrRuntimeNotReady is returned when an object is bound before the
	// bridge has been installed into a Lua state.
	ErrRuntimeNotReady = errors.New("zimlua: runtime not ready")

	// ErrUnboundObject is returned when a dispatch is attempted against a
	// nil or released object handle. This indicates a lifetime bug in the
	// caller; the operation must not be retried.
	ErrUnboundObject = errors.New("zimlua: unbound object")
)

// CallError reports a failed method dispatch into Lua: the method raised an
// error, is not implemented, or returned a value of the wrong shape.
//
// Message carries the Lua error text unmodified.
type CallError struct {
	Method  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("zimlua: call %q: %s", e.Method, e.Message)
}
