package ports

import (
	"context"
	"errors"

	"github.com/Apurer/adoptionos/internal/domains/forms/domain"
)

// ErrUnreachable is returned by a Submitter when no response was received.
var ErrUnreachable = errors.New("application service unreachable")

// Reply is the raw answer to a submission.
type Reply struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Reply) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Submitter posts a finished application.
type Submitter interface {
	Submit(ctx context.Context, endpoint string, payload any) (*Reply, error)
}

// Metrics receives usage events.
type Metrics interface {
	Record(ctx context.Context, event string, data map[string]any)
}

// Demo reports whether submissions are simulated for the current client.
type Demo interface {
	Enabled(ctx context.Context) bool
}

// PetSelection exposes the pet the visitor chose before applying.
type PetSelection interface {
	SelectedPet(ctx context.Context) (domain.PetRef, bool)
}

// NoMetrics drops events.
var NoMetrics Metrics = noMetrics{}

// DemoOff never simulates.
var DemoOff Demo = demoOff{}

// NoSelection never has a pet.
var NoSelection PetSelection = noSelection{}

type noMetrics struct{}

func (noMetrics) Record(context.Context, string, map[string]any) {}

type demoOff struct{}

func (demoOff) Enabled(context.Context) bool { return false }

type noSelection struct{}

func (noSelection) SelectedPet(context.Context) (domain.PetRef, bool) { return domain.PetRef{}, false }
