// Package httputil provides HTTP error handling utilities.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxErrorMessageSize is the maximum length of an error message sent to clients
const MaxErrorMessageSize = 500

// HTTPError is an error that carries the status code it should be reported with
type HTTPError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewError builds an HTTPError.
func NewError(status int, message string, err error) *HTTPError {
	return &HTTPError{StatusCode: status, Message: message, Err: err}
}

// BadRequest wraps err as a 400 with the error text as the client message.
func BadRequest(err error) *HTTPError {
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: truncate(err.Error(), MaxErrorMessageSize), Err: err}
}

// ErrorBody is the JSON body written for failed requests
type ErrorBody struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}

// StatusOf returns the status code err should be reported with. Errors that
// are not HTTPErrors are internal.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}

// WriteError writes err as an ErrorBody. Internal errors are not echoed to
// the client.
func WriteError(w http.ResponseWriter, err error, requestID string) {
	status := StatusOf(err)
	msg := http.StatusText(status)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && status < http.StatusInternalServerError {
		msg = httpErr.Message
	}
	WriteJSON(w, status, ErrorBody{Error: msg, Status: status, RequestID: requestID})
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// truncate truncates a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
