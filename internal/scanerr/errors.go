// Package scanerr defines the structured error taxonomy shared by the
// submission pipeline. Every failure a caller can observe carries a
// Kind so the UI layer can choose the right message and affordance
// without string matching.
package scanerr

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of a pipeline error.
type Kind string

const (
	// Validation failures. No network activity has happened.
	KindInvalidType Kind = "INVALID_TYPE"
	KindTooLarge    Kind = "TOO_LARGE"

	// Caller misuse, e.g. an empty scan id. No network activity.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"

	// Remote-call failures. Unreachable means no response was
	// received at all (network error or timeout); TransferFailed
	// means the server responded with an error status.
	KindUnreachable       Kind = "UNREACHABLE"
	KindTransferFailed    Kind = "TRANSFER_FAILED"
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
)

// Error is a kind-tagged pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Error constructors for consistent error handling

// NewInvalidType reports a file whose MIME type is not an image type.
func NewInvalidType(mimeType string) *Error {
	return &Error{
		Kind:    KindInvalidType,
		Message: fmt.Sprintf("unsupported file type %q, image expected", mimeType),
	}
}

// NewTooLarge reports a file exceeding the upload size cap.
func NewTooLarge(size, limit int64) *Error {
	return &Error{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("file is %d bytes, limit is %d", size, limit),
	}
}

// NewInvalidArgument reports caller misuse of the client API.
func NewInvalidArgument(message string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: message,
	}
}

// NewUnreachable reports that no response was received from the
// service at all.
func NewUnreachable(cause error) *Error {
	return &Error{
		Kind:    KindUnreachable,
		Message: "no response from inference service",
		Cause:   cause,
	}
}

// NewTransferFailed reports an error status from the server. detail is
// the server-provided message when one was present, otherwise empty.
func NewTransferFailed(status int, detail string) *Error {
	msg := fmt.Sprintf("request failed with status %d", status)
	if detail != "" {
		msg = detail
	}
	return &Error{
		Kind:    KindTransferFailed,
		Message: msg,
	}
}

// NewMalformedResponse reports a response that violates the wire
// contract.
func NewMalformedResponse(message string, cause error) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Message: message,
		Cause:   cause,
	}
}

// KindOf extracts the Kind of err, or the empty Kind when err is not a
// pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
