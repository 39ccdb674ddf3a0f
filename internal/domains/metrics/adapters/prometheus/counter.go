// Package prometheus mirrors usage events into Prometheus counters.
package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Apurer/adoptionos/internal/domains/metrics/domain"
	"github.com/Apurer/adoptionos/internal/domains/metrics/ports"
)

// Sink counts events by name and label.
type Sink struct {
	events *prometheus.CounterVec
}

var _ ports.Sink = (*Sink)(nil)

// NewSink registers the event counter on reg.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adoptionos",
		Subsystem: "portal",
		Name:      "events_total",
		Help:      "Usage events recorded by portal clients.",
	}, []string{"event", "label"})
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &Sink{events: events}, nil
}

func (s *Sink) Publish(_ context.Context, event domain.Event) error {
	s.events.WithLabelValues(event.Name, event.Label()).Inc()
	return nil
}
