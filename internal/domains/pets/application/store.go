package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
	"github.com/Apurer/adoptionos/internal/domains/pets/ports"
)

// CacheDuration is the freshness window of the available and admin collections.
const CacheDuration = 5 * time.Minute

const (
	availableFailedMessage = "Failed to fetch pets"
	adminFailedMessage     = "Failed to fetch admin pets"
	adoptedFailedMessage   = "Failed to fetch adopted pets"
)

type collection struct {
	pets      []domain.Pet
	fetchedAt time.Time
	params    string
	fetched   bool
}

func (c collection) fresh(now time.Time) bool {
	return c.fetched && now.Sub(c.fetchedAt) < CacheDuration
}

// Store caches the three pet collections shown by the client. Overlapping fetches of one
// collection are not merged; whichever response lands last is kept.
type Store struct {
	catalog ports.Catalog
	logger  *slog.Logger
	now     func() time.Time

	inflight atomic.Int32

	mu        sync.RWMutex
	available collection
	admin     collection
	adopted   collection
	lastErr   string
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds an empty store over catalog.
func NewStore(catalog ports.Catalog, opts ...Option) *Store {
	s := &Store{catalog: catalog, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// FetchAvailable returns the public collection, fetching it when stale or forced. Failures are
// recorded in Err and the previous collection is returned.
func (s *Store) FetchAvailable(ctx context.Context, force bool) []domain.Pet {
	s.mu.RLock()
	cached := s.available
	s.mu.RUnlock()
	if !force && cached.fresh(s.now()) {
		return clonePets(cached.pets)
	}

	s.beginFetch()
	defer s.endFetch()
	pets, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "fetching available pets failed", slog.String("error", err.Error()))
		s.setErr(userMessage(err, availableFailedMessage))
		return s.Available()
	}
	s.mu.Lock()
	s.available = collection{pets: pets, fetchedAt: s.now(), fetched: true}
	s.mu.Unlock()
	return clonePets(pets)
}

// FetchAdmin returns the admin collection for params. The cache is reused only when it is fresh
// and was fetched with the same params.
func (s *Store) FetchAdmin(ctx context.Context, params string, force bool) ([]domain.Pet, error) {
	s.mu.RLock()
	cached := s.admin
	s.mu.RUnlock()
	if !force && cached.fresh(s.now()) && cached.params == params {
		return clonePets(cached.pets), nil
	}

	s.beginFetch()
	defer s.endFetch()
	pets, err := s.catalog.ListAdmin(ctx, params)
	if err != nil {
		s.setErr(userMessage(err, adminFailedMessage))
		return nil, fmt.Errorf("%w: admin: %w", ErrFetchFailed, err)
	}
	s.mu.Lock()
	s.admin = collection{pets: pets, fetchedAt: s.now(), params: params, fetched: true}
	s.mu.Unlock()
	return clonePets(pets), nil
}

// FetchAdopted always refetches the adopted report.
func (s *Store) FetchAdopted(ctx context.Context) ([]domain.Pet, error) {
	s.beginFetch()
	defer s.endFetch()
	pets, err := s.catalog.ListAdopted(ctx)
	if err != nil {
		s.setErr(userMessage(err, adoptedFailedMessage))
		return nil, fmt.Errorf("%w: adopted: %w", ErrFetchFailed, err)
	}
	s.mu.Lock()
	s.adopted = collection{pets: pets, fetchedAt: s.now(), fetched: true}
	s.mu.Unlock()
	return clonePets(pets), nil
}

// UpdatePet writes pet into every cached collection holding its id, then sends the update. A
// failed update is not rolled back locally; the available collection is refetched instead and
// the error returned.
func (s *Store) UpdatePet(ctx context.Context, pet domain.Pet) error {
	if err := pet.Validate(); err != nil {
		return mapError(err)
	}
	s.mu.Lock()
	s.available.pets = replaced(s.available.pets, pet)
	s.admin.pets = replaced(s.admin.pets, pet)
	s.adopted.pets = replaced(s.adopted.pets, pet)
	s.mu.Unlock()

	if err := s.catalog.Update(ctx, pet.ID, pet.Profile); err != nil {
		s.logger.WarnContext(ctx, "pet update failed, resynchronising", slog.String("pet.id", pet.ID), slog.String("error", err.Error()))
		s.FetchAvailable(ctx, true)
		return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, pet.ID, err)
	}
	return nil
}

// Spotlight returns the featured pets from the available collection, fetching it if stale.
func (s *Store) Spotlight(ctx context.Context) []domain.Pet {
	return domain.Spotlight(s.FetchAvailable(ctx, false), domain.SpotlightLimit)
}

// Available returns the cached public collection.
func (s *Store) Available() []domain.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePets(s.available.pets)
}

// Admin returns the cached admin collection.
func (s *Store) Admin() []domain.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePets(s.admin.pets)
}

// Adopted returns the last adopted report.
func (s *Store) Adopted() []domain.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePets(s.adopted.pets)
}

// IsFetching reports whether any fetch is outstanding.
func (s *Store) IsFetching() bool {
	return s.inflight.Load() > 0
}

// Err returns the message of the last failed fetch, or "" when the latest fetch started cleanly.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) beginFetch() {
	s.inflight.Add(1)
	s.setErr("")
}

func (s *Store) endFetch() {
	s.inflight.Add(-1)
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// replaced returns a copy of pets with matching records swapped, so slices handed out earlier
// keep their contents.
func replaced(pets []domain.Pet, pet domain.Pet) []domain.Pet {
	if len(pets) == 0 {
		return pets
	}
	out := clonePets(pets)
	if !domain.ReplaceByID(out, pet) {
		return pets
	}
	return out
}

func clonePets(pets []domain.Pet) []domain.Pet {
	if pets == nil {
		return nil
	}
	out := make([]domain.Pet, len(pets))
	copy(out, pets)
	return out
}

var _ ports.Service = (*Store)(nil)
