// Package errors defines the coded errors shared by the taggraph library,
// CLI and HTTP server.
//
// Every failure that reaches a user carries a [Code]. The CLI prints the
// message without the code, and the server maps the code's [Category] to an
// HTTP status and echoes the code in its JSON error body.
//
//	err := errors.New(errors.ErrCodeInvalidFilter, "unknown modifier: %s", mod)
//	if errors.Is(err, errors.ErrCodeInvalidFilter) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch tags from %s", endpoint)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFilter   Code = "INVALID_FILTER"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidEndpoint Code = "INVALID_ENDPOINT"
	ErrCodeInvalidPattern  Code = "INVALID_PATTERN"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeNoTags Code = "NO_TAGS"

	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"
	ErrCodeGraphQL           Code = "GRAPHQL_ERROR"

	ErrCodeConfigUnavailable Code = "CONFIG_UNAVAILABLE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Category groups codes by who is at fault.
type Category int

const (
	CategoryInternal Category = iota
	CategoryInput             // bad flags, filters, query parameters or config
	CategoryEmpty             // the query succeeded but matched nothing
	CategoryUpstream          // the GraphQL endpoint failed or answered garbage
)

// Category classifies c. Unknown codes are internal.
func (c Code) Category() Category {
	switch {
	case strings.HasPrefix(string(c), "INVALID_"):
		return CategoryInput
	case c == ErrCodeNoTags:
		return CategoryEmpty
	case c == ErrCodeNetwork, c == ErrCodeMalformedResponse, c == ErrCodeGraphQL:
		return CategoryUpstream
	}
	return CategoryInternal
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like New but records cause for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// outermost returns the first *Error in err's chain, or nil.
func outermost(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e := outermost(err)
	return e != nil && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "" when there is none.
func GetCode(err error) Code {
	if e := outermost(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the text shown to users: the coded message without
// its code prefix, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e := outermost(err); e != nil {
		return e.Message
	}
	return err.Error()
}
