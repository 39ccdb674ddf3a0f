package domain

import (
	"errors"
	"strings"
)

var (
	// ErrStepInvalid is returned when a transition is attempted from an invalid step.
	ErrStepInvalid = errors.New("step has missing or invalid fields")
	// ErrFinalStep is returned by Advance on the last step.
	ErrFinalStep = errors.New("already on the final step")
	// ErrNotFinalStep is returned by Submit before the last step.
	ErrNotFinalStep = errors.New("submission is only possible from the final step")
	// ErrSubmitInFlight is returned while a submission is outstanding.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrSubmissionFailed wraps rejected or undeliverable submissions.
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrInvalidPatch is returned for field updates that do not fit the form.
	ErrInvalidPatch = errors.New("invalid field update")
)

// ValidationError lists the labels of the fields blocking the current step.
type ValidationError struct {
	Labels []string
}

func (e *ValidationError) Error() string {
	if len(e.Labels) == 0 {
		return "step is not complete"
	}
	return "missing or invalid: " + strings.Join(e.Labels, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrStepInvalid
}

// SubmissionError carries the message to show after a failed submission. Status is 0 when no
// response was received.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubmissionFailed}
	}
	return []error{ErrSubmissionFailed, e.Err}
}

// NetworkErrorMessage is shown when a submission never reached the server.
const NetworkErrorMessage = "Network error. Please try again later."
