package shelter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedShape reports a body that does not match the expected envelope.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shelter API %d: %s", e.Status, e.Message)
}

// errorBody covers the error payloads the backend and its proxies emit, RFC 7807 included.
type errorBody struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

// ErrorMessage extracts the human readable message from an error body, falling back when the
// body carries none.
func ErrorMessage(body []byte, fallback string) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallback
	}
	for _, candidate := range []string{stringField(parsed.Error), parsed.Message, parsed.Detail, parsed.Title} {
		if msg := strings.TrimSpace(candidate); msg != "" {
			return msg
		}
	}
	return fallback
}

// BodyError returns the body's "error" field when present. Some endpoints answer 2xx with an
// error payload.
func BodyError(body []byte) (string, bool) {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false
	}
	msg := strings.TrimSpace(stringField(parsed.Error))
	return msg, msg != ""
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if msg, ok := t["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// envelope is the single response shape for collection endpoints.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeData unmarshals the "data" member of a {"data": ...} envelope into T. A missing or
// null member is ErrUnexpectedShape.
func DecodeData[T any](resp *Response) (T, error) {
	var zero T
	var env envelope
	if err := resp.Decode(&env); err != nil {
		return zero, err
	}
	trimmed := strings.TrimSpace(string(env.Data))
	if trimmed == "" || trimmed == "null" {
		return zero, fmt.Errorf("%w: missing data member", ErrUnexpectedShape)
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
	}
	return out, nil
}
