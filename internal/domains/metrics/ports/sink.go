package ports

import (
	"context"

	"github.com/Apurer/adoptionos/internal/domains/metrics/domain"
)

// Sink receives recorded events.
type Sink interface {
	Publish(ctx context.Context, event domain.Event) error
}
