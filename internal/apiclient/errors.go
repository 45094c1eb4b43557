package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 from the remote API.  By the time it
	// is returned the unauthorized hook has already run.
	ErrUnauthorized = errors.New("remote api: unauthorized")
	// ErrNotFound matches any 404 from the remote API.
	ErrNotFound = errors.New("remote api: not found")
)

// APIError is a non-2xx answer from the remote API.  Message is the text
// the user should see and stays empty when the body carried none; Fields
// keeps per-field validation errors when the server returned them.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("remote api: %d %s", e.StatusCode, msg)
}

// Is lets callers use errors.Is with the sentinel errors above.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message extracts the user-facing text from err, or returns fallback when
// err is not an APIError or carries no message.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseError builds an APIError from a response body.  Django REST answers
// errors as {"detail": "..."}, {"message": "..."}, {"error": "..."}, a bare
// list of strings, or a map of field name to a list of messages.
func parseError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	var list []string
	if json.Unmarshal(body, &list) == nil && len(list) > 0 {
		e.Message = strings.Join(list, " ")
		return e
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return e
	}
	for _, key := range []string{"message", "detail", "error"} {
		var s string
		if raw, ok := obj[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			e.Message = s
			return e
		}
	}

	e.Fields = map[string][]string{}
	for key, raw := range obj {
		var msgs []string
		if json.Unmarshal(raw, &msgs) == nil {
			e.Fields[key] = msgs
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			e.Fields[key] = []string{s}
		}
	}
	if len(e.Fields) == 0 {
		e.Fields = nil
		return e
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+strings.Join(e.Fields[k], ", "))
	}
	e.Message = strings.Join(lines, "\n")
	return e
}
