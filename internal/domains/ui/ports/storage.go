package ports

import (
	"context"

	"github.com/Apurer/adoptionos/internal/platform/storage"
)

// Storage is the persistence gateway as seen by the UI stores.
type Storage interface {
	Read(ctx context.Context, scope storage.Scope, key string, dst any) bool
	Write(ctx context.Context, scope storage.Scope, key string, value any) error
	Remove(ctx context.Context, scope storage.Scope, key string)
}

var _ Storage = (*storage.Gateway)(nil)
