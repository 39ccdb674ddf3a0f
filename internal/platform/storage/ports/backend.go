package ports

import (
	"context"
	"errors"
)

// ErrUnavailable signals the underlying store cannot be used at all (privacy mode, missing
// directory permissions, dropped database connection).
var ErrUnavailable = errors.New("storage backend unavailable")

// Backend is a raw text key/value store. Values are opaque to the backend.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key starting with prefix; an empty prefix clears the backend.
	Clear(ctx context.Context, prefix string) error
}
