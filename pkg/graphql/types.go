package graphql

import (
	"encoding/json"
	"strings"
)

// Request is the JSON body POSTed to the endpoint.
type Request struct {
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
	OperationName string `json:"operationName,omitempty"`
}

// envelope is the top-level response shape shared by every operation.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors"`
}

// ErrorEntry is one element of a response's errors array.
type ErrorEntry struct {
	Message   string     `json:"message"`
	Path      []any      `json:"path,omitempty"`
	Locations []Location `json:"locations,omitempty"`
}

// Location points into the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ResponseError is returned when the server answers with a non-empty
// errors array.
type ResponseError struct {
	Errors []ErrorEntry
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		msgs = append(msgs, entry.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}
