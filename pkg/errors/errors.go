// Package errors defines the coded errors svg2png reports to users.
//
// Every failure a user can see carries a Code. The CLI prints the message,
// and the web UI picks the HTTP status from the code and shows the message
// in the page or in a JSON body.
//
//	err := errors.New(errors.ErrCodeNoSVGRoot, "no SVG element found in the provided content")
//	if errors.Is(err, errors.ErrCodeNoSVGRoot) {
//	    ...
//	}
//
//	err := errors.Wrap(errors.ErrCodeRasterize, cause, "render %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFilename Code = "INVALID_FILENAME"
	ErrCodeInvalidOptions  Code = "INVALID_OPTIONS"
	ErrCodeNoSVGRoot       Code = "NO_SVG_ROOT"
	ErrCodeNoSelection     Code = "NO_SELECTION"
	ErrCodeFileTooLarge    Code = "FILE_TOO_LARGE"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	ErrCodeRasterize   Code = "RASTERIZE_FAILED"
	ErrCodeNoURI       Code = "NO_URI"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// statuses maps codes to HTTP statuses. Codes not listed, and errors
// without a code, are server errors.
var statuses = map[Code]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidFilename: http.StatusBadRequest,
	ErrCodeInvalidOptions:  http.StatusBadRequest,
	ErrCodeNoSVGRoot:       http.StatusBadRequest,
	ErrCodeNoSelection:     http.StatusBadRequest,
	ErrCodeSessionNotFound: http.StatusBadRequest,
	ErrCodeFileTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeUnsupported:     http.StatusNotImplemented,
}

// Status returns the HTTP status for c.
func (c Code) Status() int {
	if s, ok := statuses[c]; ok {
		return s
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

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage is the message without the code prefix, or err.Error() for
// uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus returns the status the web UI answers err with.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
