// Package remote posts finished applications to the shelter backend.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/forms/ports"
)

// Doer is the part of the shelter client the adapter needs.
type Doer interface {
	Do(ctx context.Context, req shelter.Request) (*shelter.Response, error)
}

// Submitter implements ports.Submitter. Applications are public so no credentials are sent.
type Submitter struct {
	client Doer
}

var _ ports.Submitter = (*Submitter)(nil)

// NewSubmitter wraps client.
func NewSubmitter(client Doer) *Submitter {
	return &Submitter{client: client}
}

func (s *Submitter) Submit(ctx context.Context, endpoint string, payload any) (*ports.Reply, error) {
	resp, err := s.client.Do(ctx, shelter.Request{
		Method: http.MethodPost,
		Path:   endpoint,
		Body:   payload,
		Auth:   shelter.AuthNone,
	})
	if err != nil {
		if errors.Is(err, shelter.ErrTransport) {
			return nil, fmt.Errorf("%w: %w", ports.ErrUnreachable, err)
		}
		return nil, err
	}
	return &ports.Reply{Status: resp.StatusCode, Body: resp.Body}, nil
}
