package ports

import (
	"context"
	"encoding/json"
)

// View is the externally visible state of one wizard.
type View struct {
	Form            string          `json:"form"`
	Step            int             `json:"step"`
	StepCount       int             `json:"stepCount"`
	StepTitle       string          `json:"stepTitle"`
	Fields          json.RawMessage `json:"fields"`
	Validation      []string        `json:"validation"`
	StepValid       bool            `json:"stepValid"`
	AttemptedSubmit bool            `json:"attemptedSubmit"`
	Submitting      bool            `json:"submitting"`
	Submitted       bool            `json:"submitted"`
	LastError       string          `json:"lastError,omitempty"`
}

// Controller drives a wizard without knowing its field type.
type Controller interface {
	Form() string
	View(ctx context.Context) View
	Patch(ctx context.Context, patch json.RawMessage) error
	Advance(ctx context.Context) error
	Retreat(ctx context.Context) error
	Submit(ctx context.Context) error
	Reset(ctx context.Context)
}
