package verse

import "errors"

// Code is a machine-readable classification of a client failure.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"

	// CodeConfig indicates the client was built from incomplete or
	// malformed settings.
	CodeConfig Code = "CONFIGURATION"

	// CodeTransport indicates the duplex channel or an HTTP round trip
	// failed below the protocol layer.
	CodeTransport Code = "TRANSPORT"

	// CodeProtocol indicates a server payload could not be decoded.
	CodeProtocol Code = "PROTOCOL"

	// CodeValidation indicates caller input was rejected before any
	// network traffic was issued.
	CodeValidation Code = "VALIDATION"

	// CodeOperation indicates the ledger answered with a failure envelope
	// or a non-OK status.
	CodeOperation Code = "OPERATION_FAILED"

	// CodeTimeout indicates an operation ran past its configured bound.
	CodeTimeout Code = "TIMEOUT"
)

// Error is the client error type with a structured code.
type Error struct {
	Code    Code   // Machine-readable error code
	Op      string // Operation that failed, e.g. "mint_asset"
	Message string // Human-readable detail; ledger messages are carried verbatim
	Status  int    // HTTP status for ledger responses, zero otherwise
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" && e.Message != "" {
		return e.Op + ": " + e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
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

// CodeOf extracts the classification code from err. It returns CodeUnknown
// when the chain carries no client error.
func CodeOf(err error) Code {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return CodeUnknown
}

// newError creates a client error with a code, operation, and message.
func newError(code Code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
	}
}

// wrapError creates a client error that wraps an underlying cause.
func wrapError(code Code, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}
