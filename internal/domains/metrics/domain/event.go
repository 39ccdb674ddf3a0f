package domain

import (
	"errors"
	"strings"
	"time"
)

// Usage events recorded by the client.
const (
	EventPageView   = "page_view"
	EventFormStep   = "form_step"
	EventFormSubmit = "form_submit"
)

// ErrEmptyName is returned for an event without a name.
var ErrEmptyName = errors.New("event name is required")

// Event is one usage beacon.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Validate checks the event can be published.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Label returns a low-cardinality dimension of the event: the form for wizard events, the path for
// page views and "" otherwise.
func (e Event) Label() string {
	var key string
	switch e.Name {
	case EventFormStep, EventFormSubmit:
		key = "form"
	case EventPageView:
		key = "path"
	default:
		return ""
	}
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}
