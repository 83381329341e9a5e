// Package errors provides the coded errors brickfall reports to users.
//
// Library packages return plain sentinel errors ([settle.ErrOverlap],
// [brick.ErrSyntax], ...). The pipeline, CLI and server wrap them in an
// [*Error] carrying a [Code], so that every entry point reports the same
// failure the same way: the CLI prints [UserMessage], the server answers
// with [Code.Status] and the code in the JSON body.
//
// Codes are grouped into classes by who has to act:
//
//   - [ClassInput]: the snapshot or an option is unusable (INVALID_*,
//     BRICK_OVERLAP, INPUT_TOO_LARGE)
//   - [ClassMissing]: a named file or brick does not exist (*_NOT_FOUND)
//   - [ClassLimit]: the run exceeded its time budget (TIMEOUT)
//   - [ClassInternal]: everything else, including unreachable caches
//
// Usage:
//
//	err := errors.Wrap(errors.ErrCodeOverlap, err, "settle")
//	if errors.Is(err, errors.ErrCodeOverlap) {
//	    // reject the snapshot
//	}
//
// [settle.ErrOverlap]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/settle#ErrOverlap
// [brick.ErrSyntax]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/brick#ErrSyntax
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"   // malformed or empty snapshot
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"  // unknown output format
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"  // unreadable or invalid config file
	ErrCodeInvalidBackend Code = "INVALID_BACKEND" // unknown cache backend
	ErrCodeInputTooLarge  Code = "INPUT_TOO_LARGE"
	ErrCodeOverlap        Code = "BRICK_OVERLAP" // bricks share a cell before settling

	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeBrickNotFound Code = "BRICK_NOT_FOUND"

	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeCache       Code = "CACHE_ERROR" // cache backend unreachable
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Class says who has to act on an error.
type Class int

const (
	ClassInternal Class = iota
	ClassInput
	ClassMissing
	ClassLimit
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:   ClassInput,
	ErrCodeInvalidFormat:  ClassInput,
	ErrCodeInvalidConfig:  ClassInput,
	ErrCodeInvalidBackend: ClassInput,
	ErrCodeInputTooLarge:  ClassInput,
	ErrCodeOverlap:        ClassInput,
	ErrCodeFileNotFound:   ClassMissing,
	ErrCodeBrickNotFound:  ClassMissing,
	ErrCodeTimeout:        ClassLimit,
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class {
	return classes[c]
}

// Status returns the HTTP status the server answers with for c.
func (c Code) Status() int {
	switch c {
	case ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch c.Class() {
	case ClassInput:
		return http.StatusBadRequest
	case ClassMissing:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage renders err for people: the message and its cause, without the
// code prefix. Errors without a code are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// IsClientError reports whether err was caused by the caller's input or
// request rather than by brickfall or its backends.
func IsClientError(err error) bool {
	class := GetCode(err).Class()
	return class == ClassInput || class == ClassMissing
}
