package errors

import "google.golang.org/grpc/status"

// Domain identifies the error domain for engine errors surfaced to a host.
const Domain = "github.com/axisruntime/timeaxis"

// Error is the engine's structured error type.
type Error struct {
	Code    Code   // Machine-readable Result code
	Message string // Internal message (for logs/telemetry)
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an engine error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an engine error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// ToGRPCStatus converts the error to a gRPC status. No gRPC server ships
// with this module; hosts that expose the engine over RPC can reuse this
// conversion instead of re-deriving one from Code.
func (e *Error) ToGRPCStatus() error {
	return status.New(e.Code.GRPCCode(), e.Message).Err()
}
