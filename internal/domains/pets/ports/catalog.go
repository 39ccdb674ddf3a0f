package ports

import (
	"context"
	"errors"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
)

var (
	// ErrUnreachable marks failures where no response was received.
	ErrUnreachable = errors.New("pet catalog unreachable")
	// ErrRejected marks a non-2xx answer from the backend.
	ErrRejected = errors.New("pet catalog rejected the request")
	// ErrUnexpectedShape marks a response that is not the {"data": [...]} envelope.
	ErrUnexpectedShape = errors.New("pet catalog returned an unexpected shape")
)

// AdoptedPageSize is the page size of the adopted-pets report.
const AdoptedPageSize = 1000

// Catalog is the remote pet collection.
type Catalog interface {
	// ListAvailable fetches adoptable pets sorted by age, without credentials.
	ListAvailable(ctx context.Context) ([]domain.Pet, error)
	// ListAdmin fetches with the bearer credential using a raw query string.
	ListAdmin(ctx context.Context, params string) ([]domain.Pet, error)
	// ListAdopted fetches the adopted report with the bearer credential.
	ListAdopted(ctx context.Context) ([]domain.Pet, error)
	// Update replaces the editable part of a pet.
	Update(ctx context.Context, id string, profile domain.Profile) error
}
