package domain

import (
	"errors"
	"time"
)

// Step is one page of a wizard.
type Step[F any] struct {
	Title string
	Rules []Rule[F]
	// Gate is an extra condition for leaving the step that produces no label.
	Gate func(f *F) bool
	// Skip marks the step inapplicable for the current fields; navigation passes over it.
	Skip func(f *F) bool
}

// Schema declares a form: its fields, steps, defaults and how it is submitted.
type Schema[F any] struct {
	Name       string
	StorageKey string
	Endpoint   string
	Steps      []Step[F]
	Defaults   func() F
	// Sanitize normalises user input after every patch.
	Sanitize func(f *F)
	// Payload builds the request body.
	Payload func(env Env, f F) (any, error)
	// DemoDelay is the simulated latency of a demo submission.
	DemoDelay time.Duration
	// RejectionMessage maps a non-2xx answer to the message shown to the user.
	RejectionMessage func(status int, body []byte) string
	// AcceptedError reports an error carried by a 2xx answer.
	AcceptedError func(body []byte) (string, bool)
}

// Validate checks the schema is usable.
func (s *Schema[F]) Validate() error {
	switch {
	case s == nil:
		return errors.New("schema is nil")
	case s.Name == "":
		return errors.New("schema name is required")
	case len(s.Steps) == 0:
		return errors.New("schema " + s.Name + " has no steps")
	case s.Defaults == nil:
		return errors.New("schema " + s.Name + " has no defaults")
	case s.Payload == nil:
		return errors.New("schema " + s.Name + " has no payload builder")
	}
	return nil
}

// LastStep is the index of the final step.
func (s *Schema[F]) LastStep() int {
	return len(s.Steps) - 1
}

// Labels evaluates the rules of step against f.
func (s *Schema[F]) Labels(env Env, step int, f *F) []string {
	if step < 0 || step >= len(s.Steps) {
		return nil
	}
	return evaluate(env, f, s.Steps[step].Rules)
}

// StepValid reports whether f may leave step: no labels and the gate, if any, open.
func (s *Schema[F]) StepValid(env Env, step int, f *F) bool {
	if len(s.Labels(env, step, f)) > 0 {
		return false
	}
	if gate := s.Steps[step].Gate; gate != nil {
		return gate(f)
	}
	return true
}

// Next returns the first applicable step after step, or step itself when none remains.
func (s *Schema[F]) Next(step int, f *F) int {
	for i := step + 1; i < len(s.Steps); i++ {
		if !s.skipped(i, f) {
			return i
		}
	}
	return step
}

// Prev returns the first applicable step before step, never below 0.
func (s *Schema[F]) Prev(step int, f *F) int {
	for i := step - 1; i > 0; i-- {
		if !s.skipped(i, f) {
			return i
		}
	}
	return 0
}

func (s *Schema[F]) skipped(step int, f *F) bool {
	skip := s.Steps[step].Skip
	return skip != nil && skip(f)
}
