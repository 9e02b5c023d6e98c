package apiclient

import (
	"errors"
	"net/http"
	"strings"
)

// APIError is a failed backend call, carrying the message shown to the user.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return http.StatusText(e.Status) + ": " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show for err, preferring the server message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func newAPIError(status int, raw []byte) *APIError {
	var body errorBody
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, candidate := range []string{body.Message, body.Error, body.Msg} {
			if strings.TrimSpace(candidate) != "" {
				msg = strings.TrimSpace(candidate)
				break
			}
		}
	}
	if msg == "" {
		msg = genericMessage(status)
	}
	return &APIError{Status: status, Message: msg}
}

func genericMessage(status int) string {
	switch {
	case status == 0:
		return "Unable to reach the server. Please try again."
	case status == http.StatusUnauthorized:
		return "Please log in to continue."
	case status == http.StatusForbidden:
		return "You do not have permission to do that."
	case status == http.StatusNotFound:
		return "The requested item could not be found."
	case status >= 500:
		return "Something went wrong on our side. Please try again."
	default:
		return "Request failed. Please try again."
	}
}
