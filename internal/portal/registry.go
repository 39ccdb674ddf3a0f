package portal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/adoptionos/internal/platform/storage/memory"
)

// ErrMissingIdentifiers is returned when a browser presents no tab or device id.
var ErrMissingIdentifiers = errors.New("tab and device identifiers are required")

// DefaultIdleTTL is how long an unused tab keeps its in-memory stores.
const DefaultIdleTTL = 30 * time.Minute

// Registry owns the clients of all connected browsers.
type Registry struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithIdleTTL sets how long an idle client is kept.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry builds clients from deps on demand.
func NewRegistry(deps Deps, opts ...RegistryOption) *Registry {
	r := &Registry{
		deps:    deps,
		ttl:     DefaultIdleTTL,
		now:     time.Now,
		clients: map[string]*Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.deps.Session == nil {
		r.deps.Session = memory.NewBackend()
	}
	if r.deps.Durable == nil {
		r.deps.Durable = memory.NewBackend()
	}
	return r
}

// Client returns the client of the tab, creating it on first use.
func (r *Registry) Client(ctx context.Context, tab, device string) (*Client, error) {
	if tab == "" || device == "" {
		return nil, ErrMissingIdentifiers
	}
	key := device + "/" + tab

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[key]; ok {
		c.Touch(r.now())
		return c, nil
	}
	c, err := NewClient(ctx, r.deps, tab, device)
	if err != nil {
		return nil, err
	}
	c.Touch(r.now())
	r.clients[key] = c
	return c, nil
}

// Len reports the number of live clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep evicts clients idle for longer than the TTL and drops their tab-scoped storage, like a
// closed tab. It returns the number evicted.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*Client
	for key, c := range r.clients {
		if c.LastSeen().Before(cutoff) {
			idle = append(idle, c)
			delete(r.clients, key)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Close(ctx)
	}
	if len(idle) > 0 && r.deps.Logger != nil {
		r.deps.Logger.InfoContext(ctx, "evicted idle portal clients", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
