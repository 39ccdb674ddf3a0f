// Package storage is the persistence gateway shared by every stateful store: JSON values in a
// session scope (one browser tab) and a durable scope (survives restarts).
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/adoptionos/internal/platform/storage/memory"
	"github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

// Scope selects the lifetime of a stored value.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeDurable Scope = "durable"
)

// Gateway reads and writes JSON values against the two scopes. Backend failures never reach the
// caller: the failing scope is swapped for an in-memory backend and the gateway keeps working.
type Gateway struct {
	mu       sync.Mutex
	backends map[Scope]ports.Backend
	degraded map[Scope]bool
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway wires the session and durable backends. A nil backend means in-memory only.
func NewGateway(session, durable ports.Backend, opts ...Option) *Gateway {
	if session == nil {
		session = memory.NewBackend()
	}
	if durable == nil {
		durable = memory.NewBackend()
	}
	g := &Gateway{
		backends: map[Scope]ports.Backend{ScopeSession: session, ScopeDurable: durable},
		degraded: map[Scope]bool{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Read decodes the value stored under key into dst and reports whether it was present.
// An undecodable value is removed and reported as absent. dst is unspecified when Read
// returns false, so callers should decode into a scratch value.
func (g *Gateway) Read(ctx context.Context, scope Scope, key string, dst any) bool {
	raw, ok := g.get(ctx, scope, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		g.logger.WarnContext(ctx, "discarding unreadable stored value",
			slog.String("scope", string(scope)), slog.String("key", key), slog.String("error", err.Error()))
		g.Remove(ctx, scope, key)
		return false
	}
	return true
}

// Write encodes value and stores it under key. Only encoding failures are returned.
func (g *Gateway) Write(ctx context.Context, scope Scope, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.backend(scope).Set(ctx, key, string(payload)); err != nil {
		_ = g.degrade(ctx, scope, "set", err).Set(ctx, key, string(payload))
	}
	return nil
}

// Remove deletes key from the scope.
func (g *Gateway) Remove(ctx context.Context, scope Scope, key string) {
	if err := g.backend(scope).Delete(ctx, key); err != nil {
		_ = g.degrade(ctx, scope, "delete", err).Delete(ctx, key)
	}
}

// Clear removes every key of the scope.
func (g *Gateway) Clear(ctx context.Context, scope Scope) {
	if err := g.backend(scope).Clear(ctx, ""); err != nil {
		_ = g.degrade(ctx, scope, "clear", err).Clear(ctx, "")
	}
}

// Degraded reports whether the scope fell back to memory.
func (g *Gateway) Degraded(scope Scope) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded[scope]
}

func (g *Gateway) get(ctx context.Context, scope Scope, key string) (string, bool) {
	raw, ok, err := g.backend(scope).Get(ctx, key)
	if err != nil {
		raw, ok, _ = g.degrade(ctx, scope, "get", err).Get(ctx, key)
	}
	return raw, ok
}

func (g *Gateway) backend(scope Scope) ports.Backend {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.backends[scope]
	if !ok {
		b = memory.NewBackend()
		g.backends[scope] = b
	}
	return b
}

func (g *Gateway) degrade(ctx context.Context, scope Scope, op string, cause error) ports.Backend {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.degraded[scope] {
		return g.backends[scope]
	}
	g.logger.WarnContext(ctx, "storage unavailable, continuing in memory",
		slog.String("scope", string(scope)), slog.String("op", op), slog.String("error", cause.Error()))
	fallback := memory.NewBackend()
	g.backends[scope] = fallback
	g.degraded[scope] = true
	return fallback
}
