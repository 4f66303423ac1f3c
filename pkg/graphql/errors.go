package graphql

import "errors"

var (
	// ErrNetwork is returned when the endpoint cannot be reached or answers
	// with an unexpected HTTP status.
	ErrNetwork = errors.New("graphql: network error")

	// ErrMalformedResponse is returned when the body is not a valid GraphQL
	// response or lacks the expected fields.
	ErrMalformedResponse = errors.New("graphql: malformed response")
)
