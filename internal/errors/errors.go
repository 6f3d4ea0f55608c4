package errors

import "fmt"

// ErrorCode represents a mailfold error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrDuplicate       ErrorCode = "DUPLICATE"        // 409
	ErrDecodeFailed    ErrorCode = "DECODE_FAILED"    // 422
	ErrDigestMalformed ErrorCode = "DIGEST_MALFORMED" // 422
	ErrStorage         ErrorCode = "STORAGE"          // 502
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// FoldError represents a structured error with code, status, and details.
type FoldError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *FoldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *FoldError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid parameters.
func NewInvalidRequest(msg string) *FoldError {
	return &FoldError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing stored object.
func NewNotFound(key string) *FoldError {
	return &FoldError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("object not found: %s", key),
		Details: map[string]any{"key": key},
	}
}

// NewDuplicate creates a 409 error for an already-captured message.
func NewDuplicate(messageID string) *FoldError {
	return &FoldError{
		Code:    ErrDuplicate,
		Status:  409,
		Message: fmt.Sprintf("message already captured: %s", messageID),
		Details: map[string]any{"message_id": messageID},
	}
}

// NewDecodeFailed creates a 422 error for raw messages that cannot be decoded.
func NewDecodeFailed(err error) *FoldError {
	return &FoldError{
		Code:    ErrDecodeFailed,
		Status:  422,
		Message: fmt.Sprintf("cannot decode message: %v", err),
		Cause:   err,
	}
}

// NewDigestMalformed creates a 422 error for an existing digest document that
// cannot be parsed. Callers must not overwrite the document on this error.
func NewDigestMalformed(key string, err error) *FoldError {
	return &FoldError{
		Code:    ErrDigestMalformed,
		Status:  422,
		Message: fmt.Sprintf("existing digest %s is malformed: %v", key, err),
		Details: map[string]any{"key": key},
		Cause:   err,
	}
}

// NewStorage creates a 502 error for storage read/write failures.
// Transient by assumption; callers may retry.
func NewStorage(op, key string, err error) *FoldError {
	return &FoldError{
		Code:    ErrStorage,
		Status:  502,
		Message: fmt.Sprintf("storage %s failed for %s: %v", op, key, err),
		Details: map[string]any{"op": op, "key": key},
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *FoldError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FoldError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a FoldError with the given code.
func Is(err error, code ErrorCode) bool {
	if fErr, ok := err.(*FoldError); ok {
		return fErr.Code == code
	}
	return false
}
