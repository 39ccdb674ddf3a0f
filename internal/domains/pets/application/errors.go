package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
	"github.com/Apurer/adoptionos/internal/domains/pets/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid pet input")
	// ErrFetchFailed wraps collection fetch failures.
	ErrFetchFailed = errors.New("failed to fetch pets")
	// ErrUpdateFailed wraps update failures.
	ErrUpdateFailed = errors.New("failed to update pet")
)

const networkErrorMessage = "Network error. Please try again later."

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// userMessage is the text shown in place of the collection when a fetch fails.
func userMessage(err error, fallback string) string {
	if errors.Is(err, ports.ErrUnreachable) {
		return networkErrorMessage
	}
	return fallback
}
