package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")

	ErrConfigRequired  = errors.New("config is required")
	ErrInvalidEndpoint = errors.New("endpoint must be an http or https URL")

	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyPath = errors.New("path is required")
)

// APIError is a non-success response from the server. Two APIErrors match
// under errors.Is when their status codes are equal, so the sentinels below
// can be compared against any response.
type APIError struct {
	StatusCode int
	Body       string
	// Detail is the server's "detail" message. For validation failures it
	// joins the message of every reported item.
	Detail string
}

var (
	ErrNotFound       = &APIError{StatusCode: http.StatusNotFound}
	ErrTooLarge       = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
	ErrInvalidRequest = &APIError{StatusCode: http.StatusUnprocessableEntity}
)

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server error: %d - %s", e.StatusCode, msg)
}

func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// parseServerError decodes the server's {"detail": ...} body, which carries
// a string for most errors and a list of items for validation failures.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if json.Unmarshal(envelope.Detail, &detail) == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(envelope.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}
