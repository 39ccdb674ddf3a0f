package application

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Apurer/adoptionos/internal/domains/metrics/domain"
	"github.com/Apurer/adoptionos/internal/domains/metrics/ports"
)

// Recorder stamps usage events and fans them out to every sink. Recording never fails the caller:
// sink errors are logged and dropped.
type Recorder struct {
	sinks  []ports.Sink
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Option configures the recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder publishes to sinks in order.
func NewRecorder(sinks []ports.Sink, opts ...Option) *Recorder {
	r := &Recorder{
		sinks:   sinks,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record publishes the event name with data.
func (r *Recorder) Record(ctx context.Context, name string, data map[string]any) {
	event := domain.Event{Name: name, Data: data, Timestamp: r.now().UTC()}
	if err := event.Validate(); err != nil {
		r.logger.WarnContext(ctx, "dropping metric event", slog.String("error", err.Error()))
		return
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	event.ID = r.newID(event.Timestamp)

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			r.logger.WarnContext(ctx, "metric sink failed",
				slog.String("event", name), slog.String("id", event.ID), slog.String("error", err.Error()))
		}
	}
}

func (r *Recorder) newID(at time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
}
