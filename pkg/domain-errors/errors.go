// Package domainerrors defines the error taxonomy shared by all core
// modules. Errors carry a machine-readable code so transports can map them
// without string matching and tests can assert on the exact failure class.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The set is closed: every failure a core
// operation can surface maps to exactly one code.
type Code string

const (
	// CodeUnauthorized: caller identity is not on the access policy. Terminal,
	// no retry.
	CodeUnauthorized Code = "unauthorized"
	// CodeInvalidArgument: malformed request shape (for example fewer than two
	// incident ids in a joint analysis). Caller must resubmit corrected input.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeUnknownRequest: a callback referenced a request id that is not (or is
	// no longer) outstanding. Signals a gateway bug or a replay attempt.
	CodeUnknownRequest Code = "unknown_request"
	// CodeKindMismatch: a callback arrived at a handler whose operation kind
	// does not match the recorded pending request. Signals type confusion or
	// spoofing; the pending entry is left untouched.
	CodeKindMismatch Code = "kind_mismatch"
	// CodeProofInvalid: cryptographic verification of a result failed. Nothing
	// is mutated; logged as a potential attack.
	CodeProofInvalid Code = "proof_invalid"
	// CodeMissingData: a referenced aggregate does not exist yet. Terminal
	// until the prerequisite data is contributed.
	CodeMissingData Code = "missing_data"
	// CodeNotFound: a referenced record does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict: the operation would violate a uniqueness constraint.
	CodeConflict Code = "conflict"
	// CodeUnavailable: a collaborator (gateway, store) is unreachable.
	CodeUnavailable Code = "unavailable"
	// CodeInternal: unexpected failure; details belong in logs, not responses.
	CodeInternal Code = "internal"
)

// Error is the concrete domain error. Services construct it at the point
// where a failure is classified; lower layers return sentinel errors instead.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a domain error with the given code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal when err is
// not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status so the transport layer stays
// free of per-endpoint switch statements.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnknownRequest, CodeNotFound, CodeMissingData:
		return http.StatusNotFound
	case CodeKindMismatch, CodeConflict:
		return http.StatusConflict
	case CodeProofInvalid:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
