package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when a 2xx payload cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// RequestError is returned for failed requests. StatusCode is 0 when no response was received.
type RequestError struct {
	StatusCode int
	Message    string
	Details    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a *RequestError with the given status code.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == status
}

// newStatusError builds a RequestError from a non-2xx response body.
// The server sends {"error": "..."}; other bodies are kept only as details.
func newStatusError(status int, body []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Details:    string(body),
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		reqErr.Message = payload.Error
	}
	return reqErr
}

func decode[T any](payload []byte) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return v, nil
}
