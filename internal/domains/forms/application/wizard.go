package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/forms/domain"
	"github.com/Apurer/adoptionos/internal/domains/forms/ports"
	"github.com/Apurer/adoptionos/internal/platform/storage"
)

// Metric events.
const (
	EventFormStep   = "form_step"
	EventFormSubmit = "form_submit"
)

const fallbackRejection = "Submission failed"

// Wizard is the state machine of one multi-step form for one client.
type Wizard[F any] struct {
	schema    *domain.Schema[F]
	storage   ports.Storage
	submitter ports.Submitter
	metrics   ports.Metrics
	demo      ports.Demo
	selection ports.PetSelection
	logger    *slog.Logger
	now       func() time.Time
	demoDelay time.Duration

	mu         sync.Mutex
	step       int
	fields     F
	attempted  bool
	submitting bool
	submitted  bool
	lastErr    string
}

// State is a copy of the wizard's progress.
type State[F any] struct {
	Step            int
	Fields          F
	AttemptedSubmit bool
	Submitting      bool
	Submitted       bool
	LastError       string
}

type snapshot[F any] struct {
	Step   int `json:"step"`
	Fields F   `json:"fields"`
}

// Option configures a wizard.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	metrics   ports.Metrics
	demo      ports.Demo
	selection ports.PetSelection
	now       func() time.Time
	demoDelay *time.Duration
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets where step and submit events go.
func WithMetrics(m ports.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithDemo sets the demo mode switch.
func WithDemo(d ports.Demo) Option {
	return func(o *options) {
		if d != nil {
			o.demo = d
		}
	}
}

// WithPetSelection sets the source of the pet attached to submissions.
func WithPetSelection(s ports.PetSelection) Option {
	return func(o *options) {
		if s != nil {
			o.selection = s
		}
	}
}

// WithClock overrides the time source used by date rules.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDemoDelay overrides the schema's simulated submission latency.
func WithDemoDelay(d time.Duration) Option {
	return func(o *options) {
		o.demoDelay = &d
	}
}

// New builds a wizard for schema and restores its persisted snapshot.
func New[F any](ctx context.Context, schema *domain.Schema[F], store ports.Storage, submitter ports.Submitter, opts ...Option) (*Wizard[F], error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if store == nil || submitter == nil {
		return nil, errors.New("wizard requires storage and a submitter")
	}
	o := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   ports.NoMetrics,
		demo:      ports.DemoOff,
		selection: ports.NoSelection,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := &Wizard[F]{
		schema:    schema,
		storage:   store,
		submitter: submitter,
		metrics:   o.metrics,
		demo:      o.demo,
		selection: o.selection,
		logger:    o.logger.With(slog.String("form", schema.Name)),
		now:       o.now,
		demoDelay: schema.DemoDelay,
		fields:    schema.Defaults(),
	}
	if o.demoDelay != nil {
		w.demoDelay = *o.demoDelay
	}
	w.restore(ctx)
	return w, nil
}

func (w *Wizard[F]) restore(ctx context.Context) {
	snap := snapshot[F]{Fields: w.schema.Defaults()}
	if !w.storage.Read(ctx, storage.ScopeSession, w.schema.StorageKey, &snap) {
		return
	}
	if snap.Step < 0 || snap.Step > w.schema.LastStep() {
		w.logger.WarnContext(ctx, "restored step out of range", slog.Int("step", snap.Step))
		snap.Step = 0
	}
	w.step = snap.Step
	w.fields = snap.Fields
}

// persist must be called with mu held.
func (w *Wizard[F]) persist(ctx context.Context) {
	err := w.storage.Write(ctx, storage.ScopeSession, w.schema.StorageKey, snapshot[F]{Step: w.step, Fields: w.fields})
	if err != nil {
		w.logger.WarnContext(ctx, "persist wizard snapshot", slog.String("error", err.Error()))
	}
}

// Form is the schema name.
func (w *Wizard[F]) Form() string {
	return w.schema.Name
}

// Schema returns the declaration the wizard runs.
func (w *Wizard[F]) Schema() *domain.Schema[F] {
	return w.schema
}

// State returns a copy of the current progress.
func (w *Wizard[F]) State() State[F] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State[F]{
		Step:            w.step,
		Fields:          w.cloneFields(w.fields),
		AttemptedSubmit: w.attempted,
		Submitting:      w.submitting,
		Submitted:       w.submitted,
		LastError:       w.lastErr,
	}
}

// Fields returns a copy of the field values.
func (w *Wizard[F]) Fields() F {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cloneFields(w.fields)
}

// Update applies fn to a copy of the fields, sanitizes and persists the result.
func (w *Wizard[F]) Update(ctx context.Context, fn func(f *F)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := w.cloneFields(w.fields)
	fn(&next)
	w.commit(ctx, next)
}

// Patch replaces the top-level fields named in a JSON object. Lists are replaced whole, never
// merged entry by entry. Unknown fields and mistyped values leave the form untouched.
func (w *Wizard[F]) Patch(ctx context.Context, patch json.RawMessage) error {
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPatch, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	next, err := overlayFields(w.fields, changes)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPatch, err)
	}
	w.commit(ctx, next)
	return nil
}

// overlayFields decodes current with every key in changes swapped for its new value into a zero F.
func overlayFields[F any](current F, changes map[string]json.RawMessage) (F, error) {
	var next F
	raw, err := json.Marshal(current)
	if err != nil {
		return next, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return next, err
	}
	for key, value := range changes {
		merged[key] = value
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return next, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return next, err
	}
	return next, nil
}

func (w *Wizard[F]) commit(ctx context.Context, next F) {
	if w.schema.Sanitize != nil {
		w.schema.Sanitize(&next)
	}
	w.fields = next
	w.persist(ctx)
}

// Validation lists the labels blocking the current step.
func (w *Wizard[F]) Validation() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.labels()
}

// StepValid reports whether the current step may be left, demo mode aside.
func (w *Wizard[F]) StepValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.schema.StepValid(w.env(), w.step, &w.fields)
}

func (w *Wizard[F]) env() domain.Env {
	return domain.Env{Now: w.now()}
}

func (w *Wizard[F]) labels() []string {
	labels := w.schema.Labels(w.env(), w.step, &w.fields)
	if labels == nil {
		labels = []string{}
	}
	return labels
}

// Advance moves to the next applicable step when the current one is complete.
func (w *Wizard[F]) Advance(ctx context.Context) error {
	demo := w.demo.Enabled(ctx)

	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	if w.step >= w.schema.LastStep() {
		w.mu.Unlock()
		return domain.ErrFinalStep
	}
	w.attempted = true
	if !demo && !w.schema.StepValid(w.env(), w.step, &w.fields) {
		labels := w.labels()
		w.mu.Unlock()
		return &domain.ValidationError{Labels: labels}
	}
	next := w.schema.Next(w.step, &w.fields)
	if next == w.step {
		w.mu.Unlock()
		return domain.ErrFinalStep
	}
	w.step = next
	w.persist(ctx)
	w.attempted = false
	w.mu.Unlock()

	w.metrics.Record(ctx, EventFormStep, map[string]any{"form": w.schema.Name, "step": next})
	w.logger.DebugContext(ctx, "wizard advanced", slog.Int("step", next))
	return nil
}

// Retreat moves to the previous applicable step without validating.
func (w *Wizard[F]) Retreat(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return domain.ErrSubmitInFlight
	}
	prev := w.schema.Prev(w.step, &w.fields)
	if prev == w.step {
		return nil
	}
	w.step = prev
	w.persist(ctx)
	return nil
}

// Submit sends the application from the final step. A failed submission keeps the wizard where it
// is and records the message in LastError.
func (w *Wizard[F]) Submit(ctx context.Context) error {
	demo := w.demo.Enabled(ctx)

	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	if w.step != w.schema.LastStep() {
		w.mu.Unlock()
		return domain.ErrNotFinalStep
	}
	w.attempted = true
	w.lastErr = ""
	if !demo && !w.schema.StepValid(w.env(), w.step, &w.fields) {
		labels := w.labels()
		w.mu.Unlock()
		return &domain.ValidationError{Labels: labels}
	}
	w.submitting = true
	fields := w.cloneFields(w.fields)
	w.mu.Unlock()

	var err error
	if demo {
		err = w.simulate(ctx)
	} else {
		err = w.send(ctx, fields)
	}
	if err != nil {
		w.mu.Lock()
		w.submitting = false
		var subErr *domain.SubmissionError
		if errors.As(err, &subErr) {
			w.lastErr = subErr.Message
		}
		w.mu.Unlock()
		w.logger.WarnContext(ctx, "submission failed", slog.String("error", err.Error()))
		return err
	}

	w.mu.Lock()
	w.submitting = false
	w.submitted = true
	w.attempted = false
	w.fields = w.schema.Defaults()
	w.step = 0
	w.storage.Remove(ctx, storage.ScopeSession, w.schema.StorageKey)
	w.mu.Unlock()

	if !demo {
		w.metrics.Record(ctx, EventFormSubmit, map[string]any{"form": w.schema.Name})
	}
	w.logger.InfoContext(ctx, "application submitted", slog.Bool("demo", demo))
	return nil
}

func (w *Wizard[F]) simulate(ctx context.Context) error {
	timer := time.NewTimer(w.demoDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Wizard[F]) send(ctx context.Context, fields F) error {
	env := w.env()
	if pet, ok := w.selection.SelectedPet(ctx); ok {
		env.Pet = &pet
	}
	payload, err := w.schema.Payload(env, fields)
	if err != nil {
		return fmt.Errorf("build %s payload: %w", w.schema.Name, err)
	}
	reply, err := w.submitter.Submit(ctx, w.schema.Endpoint, payload)
	if err != nil {
		return &domain.SubmissionError{Message: domain.NetworkErrorMessage, Err: err}
	}
	if !reply.OK() {
		return &domain.SubmissionError{Status: reply.Status, Message: w.rejection(reply)}
	}
	if w.schema.AcceptedError != nil {
		if msg, failed := w.schema.AcceptedError(reply.Body); failed {
			return &domain.SubmissionError{Status: reply.Status, Message: msg}
		}
	}
	return nil
}

func (w *Wizard[F]) rejection(reply *ports.Reply) string {
	if w.schema.RejectionMessage == nil {
		return fallbackRejection
	}
	if msg := w.schema.RejectionMessage(reply.Status, reply.Body); msg != "" {
		return msg
	}
	return fallbackRejection
}

// Reset returns the wizard to its defaults and erases the snapshot.
func (w *Wizard[F]) Reset(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields = w.schema.Defaults()
	w.step = 0
	w.attempted = false
	w.submitted = false
	w.lastErr = ""
	w.storage.Remove(ctx, storage.ScopeSession, w.schema.StorageKey)
}

// View renders the wizard for the portal.
func (w *Wizard[F]) View(_ context.Context) ports.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	raw, err := json.Marshal(w.fields)
	if err != nil {
		raw = []byte("{}")
	}
	return ports.View{
		Form:            w.schema.Name,
		Step:            w.step,
		StepCount:       len(w.schema.Steps),
		StepTitle:       w.schema.Steps[w.step].Title,
		Fields:          raw,
		Validation:      w.labels(),
		StepValid:       w.schema.StepValid(w.env(), w.step, &w.fields),
		AttemptedSubmit: w.attempted,
		Submitting:      w.submitting,
		Submitted:       w.submitted,
		LastError:       w.lastErr,
	}
}

// cloneFields deep-copies f through its JSON form, which is also its persisted form.
func (w *Wizard[F]) cloneFields(f F) F {
	raw, err := json.Marshal(f)
	if err != nil {
		return f
	}
	var out F
	if err := json.Unmarshal(raw, &out); err != nil {
		return f
	}
	return out
}

var _ ports.Controller = (*Wizard[domain.AdoptionFields])(nil)
