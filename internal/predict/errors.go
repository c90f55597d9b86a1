package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// BatchFailureMessage is shown for any failed batch upload. Column checks are
// the server's job; the client does not inspect the CSV.
const BatchFailureMessage = "Failed to process batch. Ensure CSV columns match requirements."

// NetworkError means the request never produced an HTTP response
// (dial failure, reset, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return "network error"
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response that is not a batch shape rejection.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
	Body       string
}

func (e *ServerError) Error() string {
	if e == nil {
		return "server error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: server error: status=%d message=%s", e.Op, e.StatusCode, msg)
}

// ValidationError is the batch endpoint rejecting the uploaded file.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "file rejected"
	}
	return fmt.Sprintf("batch: validation error: status=%d message=%s", e.StatusCode, msg)
}

// UserMessage turns a client error into text fit for the result panel.
func UserMessage(err error) string {
	var (
		nerr *NetworkError
		serr *ServerError
		verr *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return BatchFailureMessage
	case errors.As(err, &nerr):
		return "Could not reach the prediction service. Check that it is running and try again."
	case errors.As(err, &serr):
		if serr.StatusCode == http.StatusServiceUnavailable {
			return "The prediction model is not available right now."
		}
		return fmt.Sprintf("The prediction service returned an error (status %d).", serr.StatusCode)
	default:
		return "Prediction failed."
	}
}

// errorDetail pulls a message out of either a FastAPI `{"detail": ...}` body
// or an `{"error": {"message": ...}}` envelope.
func errorDetail(raw []byte) string {
	var fast struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &fast); err == nil && fast.Detail != nil {
		switch d := fast.Detail.(type) {
		case string:
			return strings.TrimSpace(d)
		default:
			b, _ := json.Marshal(d)
			return string(b)
		}
	}
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		return strings.TrimSpace(env.Error.Message)
	}
	return ""
}

func singleError(op string) func(int, []byte) error {
	return func(status int, raw []byte) error {
		return &ServerError{
			Op:         op,
			StatusCode: status,
			Message:    errorDetail(raw),
			Body:       strings.TrimSpace(string(raw)),
		}
	}
}

func batchError(status int, raw []byte) error {
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return &ValidationError{StatusCode: status, Message: errorDetail(raw)}
	}
	return singleError("batch")(status, raw)
}
