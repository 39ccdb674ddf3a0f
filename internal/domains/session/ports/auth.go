package ports

import (
	"context"
	"errors"

	"github.com/Apurer/adoptionos/internal/domains/session/domain"
)

var (
	// ErrUnauthenticated is returned when the backend does not recognise the caller.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned when a login is rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// LoginResult is the backend's answer to a successful login. Either member may be empty.
type LoginResult struct {
	Token    string
	Identity *domain.Identity
}

// AuthAPI is the identity lifecycle on the backend.
type AuthAPI interface {
	// Me returns the current identity, nil when the backend answered without one, or
	// ErrUnauthenticated.
	Me(ctx context.Context) (*domain.Identity, error)
	Login(ctx context.Context, creds domain.Credentials) (LoginResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error)
}
