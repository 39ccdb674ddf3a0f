package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
	"github.com/Apurer/adoptionos/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/adoptionos/internal/domains/pets/adapters/observability/service"

// Service decorates the pet store with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the store.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// FetchAvailable loads the public collection.
func (s *Service) FetchAvailable(ctx context.Context, force bool) []domain.Pet {
	ctx, span := s.startSpan(ctx, "Store.FetchAvailable", attribute.Bool("pets.force", force))
	defer span.End()

	fetching := s.inner.IsFetching()
	result := s.inner.FetchAvailable(ctx, force)
	if msg := s.inner.Err(); msg != "" {
		span.SetStatus(codes.Error, msg)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "available pets unavailable", slog.String("message", msg))
	}
	s.metrics.recordFetch(ctx, "available", force, fetching)
	span.SetAttributes(attribute.Int("pets.result.count", len(result)))
	return result
}

// FetchAdmin loads the admin collection for params.
func (s *Service) FetchAdmin(ctx context.Context, params string, force bool) ([]domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "Store.FetchAdmin", attribute.String("pets.params", params), attribute.Bool("pets.force", force))
	defer span.End()

	s.logInfo(ctx, "fetching admin pets", slog.String("params", params), slog.Bool("force", force))
	result, err := s.inner.FetchAdmin(ctx, params, force)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to fetch admin pets", slog.String("params", params))
	}
	s.metrics.recordFetch(ctx, "admin", force, false)
	span.SetAttributes(attribute.Int("pets.result.count", len(result)))
	return result, nil
}

// FetchAdopted loads the adopted report.
func (s *Service) FetchAdopted(ctx context.Context) ([]domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "Store.FetchAdopted")
	defer span.End()

	result, err := s.inner.FetchAdopted(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to fetch adopted pets")
	}
	s.metrics.recordFetch(ctx, "adopted", true, false)
	span.SetAttributes(attribute.Int("pets.result.count", len(result)))
	s.logInfo(ctx, "fetched adopted pets", slog.Int("count", len(result)))
	return result, nil
}

// UpdatePet applies an optimistic update.
func (s *Service) UpdatePet(ctx context.Context, pet domain.Pet) error {
	ctx, span := s.startSpan(ctx, "Store.UpdatePet", attribute.String("pet.id", pet.ID))
	defer span.End()

	s.logInfo(ctx, "updating pet", slog.String("pet.id", pet.ID))
	if err := s.inner.UpdatePet(ctx, pet); err != nil {
		s.metrics.recordUpdate(ctx, pet.Status(), false)
		return s.handleError(ctx, span, err, "failed to update pet", slog.String("pet.id", pet.ID))
	}
	s.metrics.recordUpdate(ctx, pet.Status(), true)
	s.logInfo(ctx, "pet updated", slog.String("pet.id", pet.ID), slog.String("status", string(pet.Status())))
	return nil
}

// Spotlight returns the featured pets.
func (s *Service) Spotlight(ctx context.Context) []domain.Pet {
	ctx, span := s.startSpan(ctx, "Store.Spotlight")
	defer span.End()

	result := s.inner.Spotlight(ctx)
	span.SetAttributes(attribute.Int("pets.result.count", len(result)))
	return result
}

func (s *Service) Available() []domain.Pet { return s.inner.Available() }
func (s *Service) Admin() []domain.Pet     { return s.inner.Admin() }
func (s *Service) Adopted() []domain.Pet   { return s.inner.Adopted() }
func (s *Service) IsFetching() bool        { return s.inner.IsFetching() }
func (s *Service) Err() string             { return s.inner.Err() }

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	fetches metric.Int64Counter
	updates metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	fetches, _ := m.Int64Counter("pets.store.fetches", metric.WithDescription("Number of collection reads by collection and refresh mode"))
	updates, _ := m.Int64Counter("pets.store.updates", metric.WithDescription("Number of pet updates by outcome"))
	return serviceMetrics{fetches: fetches, updates: updates}
}

func (m serviceMetrics) recordFetch(ctx context.Context, collection string, force, overlapping bool) {
	addCounter(ctx, m.fetches, 1,
		attribute.String("pets.collection", collection),
		attribute.Bool("pets.force", force),
		attribute.Bool("pets.overlapping", overlapping),
	)
}

func (m serviceMetrics) recordUpdate(ctx context.Context, status domain.Status, ok bool) {
	addCounter(ctx, m.updates, 1, attribute.String("pet.status", string(status)), attribute.Bool("ok", ok))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
