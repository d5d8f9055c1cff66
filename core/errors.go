package core

import (
	"errors"
	"fmt"
)

// General error codes
const (
	NOERROR     int = 0
	EMISSING    int = 122 // resource does not exist
	EINVALID    int = 123 // validation failed
	ECONNECTION int = 124 // remote resource not connected
	EINTERNAL   int = 125 // internal error
	EPARSE      int = 126 // font binary cannot be parsed
	EDECOMPRESS int = 127 // compressed font container cannot be unpacked
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case ECONNECTION:
		return "transmission-error"
	case EINTERNAL:
		return "internal error"
	case EPARSE:
		return "font parse error"
	case EDECOMPRESS:
		return "font decompression error"
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// ErrorWithCode adds an error code to err's error chain.
// Unlike pkg/errors, ErrorWithCode will wrap nil error.
func ErrorWithCode(err error, code int) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return coreError{err, code, errorText(code)}
}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting NOERROR is returned.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	msg := fmt.Sprintf(format, v...)
	return coreError{err, code, msg}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks StatusCode and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// --- Font errors -----------------------------------------------------------

// ParseError is returned if font bytes are not a valid font. It carries the
// message of the underlying parser.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%d] cannot parse font: %v", EPARSE, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) ErrorCode() int {
	return EPARSE
}

func (e *ParseError) UserMessage() string {
	return fmt.Sprintf("Can't load font file: %v", e.Err)
}

// DecompressionError is returned if a compressed font container has been
// detected but cannot be unpacked. Callers usually treat it the same as
// a ParseError.
type DecompressionError struct {
	Container string // e.g., "WOFF2"
	Err       error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("[%d] cannot decompress %s container: %v", EDECOMPRESS, e.Container, e.Err)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

func (e *DecompressionError) ErrorCode() int {
	return EDECOMPRESS
}

func (e *DecompressionError) UserMessage() string {
	return fmt.Sprintf("Can't load font file: broken %s data", e.Container)
}

var _ AppError = &ParseError{}
var _ AppError = &DecompressionError{}

// IsFontError is a predicate: does err signal unusable font bytes?
// Both parse errors and decompression errors qualify.
func IsFontError(err error) bool {
	var pe *ParseError
	var de *DecompressionError
	return errors.As(err, &pe) || errors.As(err, &de)
}
