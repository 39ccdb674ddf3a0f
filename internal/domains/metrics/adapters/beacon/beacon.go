// Package beacon forwards usage events to the shelter backend.
package beacon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/metrics/domain"
	"github.com/Apurer/adoptionos/internal/domains/metrics/ports"
)

// Path is the backend endpoint accepting beacons.
const Path = "/metrics"

// Doer is the part of the shelter client the sink needs.
type Doer interface {
	Do(ctx context.Context, req shelter.Request) (*shelter.Response, error)
}

// Sink posts every event anonymously.
type Sink struct {
	client Doer
}

var _ ports.Sink = (*Sink)(nil)

// NewSink wraps client.
func NewSink(client Doer) *Sink {
	return &Sink{client: client}
}

func (s *Sink) Publish(ctx context.Context, event domain.Event) error {
	resp, err := s.client.Do(ctx, shelter.Request{
		Method: http.MethodPost,
		Path:   Path,
		Body:   event,
		Auth:   shelter.AuthNone,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("beacon %s rejected: %w", event.Name, resp.Err())
	}
	return nil
}
