package ports

import (
	"context"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
)

// Service defines the pet data use cases exposed to adapters.
type Service interface {
	FetchAvailable(ctx context.Context, force bool) []domain.Pet
	FetchAdmin(ctx context.Context, params string, force bool) ([]domain.Pet, error)
	FetchAdopted(ctx context.Context) ([]domain.Pet, error)
	UpdatePet(ctx context.Context, pet domain.Pet) error
	Spotlight(ctx context.Context) []domain.Pet

	Available() []domain.Pet
	Admin() []domain.Pet
	Adopted() []domain.Pet
	IsFetching() bool
	Err() string
}
