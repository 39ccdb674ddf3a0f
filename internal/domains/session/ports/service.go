package ports

import (
	"context"

	"github.com/Apurer/adoptionos/internal/domains/session/domain"
)

// Service exposes identity and selection use cases to adapters.
type Service interface {
	Identity() (domain.Identity, bool)
	IsAuthenticated() bool
	Token(ctx context.Context) (string, bool)
	CheckAuth(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	Initialize(ctx context.Context)
	Initialized() bool
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Identity, error)
	SessionExpired(ctx context.Context)

	SelectPet(ctx context.Context, pet domain.SelectedPet) error
	SelectedPet(ctx context.Context) (domain.SelectedPet, bool)
	ClearSelectedPet(ctx context.Context)
}
