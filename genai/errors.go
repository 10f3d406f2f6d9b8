package genai

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/verdantlabs/googleai/internal/utils"
)

// APIError is a service-reported failure: a non-2xx HTTP response, with the
// structured error body decoded when the service provided one.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Status is the service's canonical status string, e.g.
	// "RESOURCE_EXHAUSTED". Empty when the body was not parseable.
	Status string
	// Message is the service's human-readable error message.
	Message string
	// Body is the raw response body.
	Body []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("genai: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("genai: unexpected status %d", e.StatusCode)
}

// Temporary reports whether the request may succeed on retry.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// wrapTransportError maps the transport's HTTP error into an APIError,
// passing other errors through untouched.
func wrapTransportError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *utils.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	apiErr := &APIError{StatusCode: httpErr.StatusCode, Body: httpErr.Body}
	var env errorEnvelope
	if jsonErr := json.Unmarshal(httpErr.Body, &env); jsonErr == nil {
		apiErr.Status = env.Error.Status
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
