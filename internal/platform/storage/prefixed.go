package storage

import (
	"context"

	"github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

type prefixed struct {
	inner  ports.Backend
	prefix string
}

// Prefixed namespaces every key of inner under namespace, so a single physical store can hold
// the scopes of many portal sessions. Clear only touches the namespace.
func Prefixed(inner ports.Backend, namespace string) ports.Backend {
	return &prefixed{inner: inner, prefix: namespace + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Clear(ctx context.Context, prefix string) error {
	return p.inner.Clear(ctx, p.prefix+prefix)
}
