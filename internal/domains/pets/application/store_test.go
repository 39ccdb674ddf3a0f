package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/adoptionos/internal/domains/pets/domain"
	"github.com/Apurer/adoptionos/internal/domains/pets/ports"
)

type fakeCatalog struct {
	mu          sync.Mutex
	available   []domain.Pet
	admin       map[string][]domain.Pet
	adopted     []domain.Pet
	listErr     error
	updateErr   error
	calls       map[string]int
	adminParams []string
	updates     []domain.Profile
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{admin: map[string][]domain.Pet{}, calls: map[string]int{}}
}

func (f *fakeCatalog) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalog) ListAvailable(context.Context) ([]domain.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["available"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return clonePets(f.available), nil
}

func (f *fakeCatalog) ListAdmin(_ context.Context, params string) ([]domain.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["admin"]++
	f.adminParams = append(f.adminParams, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return clonePets(f.admin[params]), nil
}

func (f *fakeCatalog) ListAdopted(context.Context) ([]domain.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["adopted"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return clonePets(f.adopted), nil
}

func (f *fakeCatalog) Update(_ context.Context, _ string, profile domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	f.updates = append(f.updates, profile)
	return f.updateErr
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func pet(id, name string, status domain.Status) domain.Pet {
	return domain.Pet{ID: id, Profile: domain.Profile{Name: name, Details: domain.Details{Status: status}}}
}

func TestFetchAvailable_ReusesFreshCache(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.available = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable)}
	clock := &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewStore(catalog, WithClock(clock.Now))
	ctx := context.Background()

	first := store.FetchAvailable(ctx, false)
	clock.now = clock.now.Add(4 * time.Minute)
	second := store.FetchAvailable(ctx, false)

	require.Equal(t, 1, catalog.count("available"))
	require.Equal(t, first, second)

	clock.now = clock.now.Add(time.Minute)
	store.FetchAvailable(ctx, false)
	require.Equal(t, 2, catalog.count("available"), "window closes at five minutes")

	store.FetchAvailable(ctx, true)
	require.Equal(t, 3, catalog.count("available"), "force refresh bypasses the cache")
}

func TestFetchAvailable_SwallowsFailures(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.available = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable)}
	store := NewStore(catalog)
	ctx := context.Background()

	require.Len(t, store.FetchAvailable(ctx, false), 1)

	catalog.listErr = fmt.Errorf("%w: dial tcp", ports.ErrUnreachable)
	got := store.FetchAvailable(ctx, true)
	require.Len(t, got, 1, "previous collection stays visible")
	require.Equal(t, networkErrorMessage, store.Err())

	catalog.listErr = fmt.Errorf("%w: 500", ports.ErrRejected)
	store.FetchAvailable(ctx, true)
	require.Equal(t, availableFailedMessage, store.Err())

	catalog.listErr = nil
	store.FetchAvailable(ctx, true)
	require.Empty(t, store.Err())
	require.False(t, store.IsFetching())
}

func TestFetchAdmin_ParamsAreTheCacheKey(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.admin["status=hold"] = []domain.Pet{pet("p2", "Mochi", domain.StatusHold)}
	catalog.admin["status=intake"] = []domain.Pet{pet("p3", "Pepper", domain.StatusIntake)}
	store := NewStore(catalog)
	ctx := context.Background()

	hold, err := store.FetchAdmin(ctx, "status=hold", false)
	require.NoError(t, err)
	intake, err := store.FetchAdmin(ctx, "status=intake", false)
	require.NoError(t, err)

	require.Equal(t, 2, catalog.count("admin"))
	require.Equal(t, "p2", hold[0].ID)
	require.Equal(t, "p3", intake[0].ID)

	_, err = store.FetchAdmin(ctx, "status=intake", false)
	require.NoError(t, err)
	require.Equal(t, 2, catalog.count("admin"))
}

func TestFetchAdmin_RethrowsAndRecordsError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.listErr = fmt.Errorf("%w: 403", ports.ErrRejected)
	store := NewStore(catalog)

	_, err := store.FetchAdmin(context.Background(), "status=hold", false)
	require.ErrorIs(t, err, ErrFetchFailed)
	require.ErrorIs(t, err, ports.ErrRejected)
	require.Equal(t, adminFailedMessage, store.Err())
}

func TestFetchAdopted_AlwaysRefetches(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.adopted = []domain.Pet{pet("p9", "Old Tom", domain.StatusAdopted)}
	store := NewStore(catalog)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := store.FetchAdopted(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	require.Equal(t, 3, catalog.count("adopted"))

	catalog.listErr = errors.New("boom")
	_, err := store.FetchAdopted(ctx)
	require.ErrorIs(t, err, ErrFetchFailed)
	require.Equal(t, adoptedFailedMessage, store.Err())
}

func TestUpdatePet_ReplacesInEveryCollectionHoldingIt(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.available = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable), pet("p2", "Mochi", domain.StatusAvailable)}
	catalog.admin["sort=name"] = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable)}
	catalog.adopted = []domain.Pet{pet("p9", "Old Tom", domain.StatusAdopted)}
	store := NewStore(catalog)
	ctx := context.Background()

	before := store.FetchAvailable(ctx, false)
	_, err := store.FetchAdmin(ctx, "sort=name", false)
	require.NoError(t, err)
	_, err = store.FetchAdopted(ctx)
	require.NoError(t, err)

	updated := pet("p1", "Biscuit", domain.StatusHold)
	updated.CreatedAt = "2025-01-01T00:00:00Z"
	require.NoError(t, store.UpdatePet(ctx, updated))

	require.Equal(t, domain.StatusHold, store.Available()[0].Status())
	require.Equal(t, domain.StatusAvailable, store.Available()[1].Status())
	require.Equal(t, domain.StatusHold, store.Admin()[0].Status())
	require.Equal(t, []domain.Pet{pet("p9", "Old Tom", domain.StatusAdopted)}, store.Adopted())
	require.Equal(t, domain.StatusAvailable, before[0].Status(), "slices returned earlier are not mutated")

	require.Len(t, catalog.updates, 1)
	require.Equal(t, updated.Profile, catalog.updates[0])
}

func TestUpdatePet_FailureResyncsAvailable(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.available = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable)}
	catalog.updateErr = fmt.Errorf("%w: 500", ports.ErrRejected)
	store := NewStore(catalog)
	ctx := context.Background()
	store.FetchAvailable(ctx, false)

	err := store.UpdatePet(ctx, pet("p1", "Biscuit", domain.StatusHold))
	require.ErrorIs(t, err, ErrUpdateFailed)
	require.ErrorIs(t, err, ports.ErrRejected)
	require.Equal(t, 2, catalog.count("available"), "failed update forces a refetch")
	require.Equal(t, domain.StatusAvailable, store.Available()[0].Status())
}

func TestUpdatePet_Invalid(t *testing.T) {
	catalog := newFakeCatalog()
	store := NewStore(catalog)

	err := store.UpdatePet(context.Background(), domain.Pet{Profile: domain.Profile{Name: "x"}})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, catalog.count("update"))
}

func TestUpdatePet_EmptyNameIsSentOptimistically(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.available = []domain.Pet{pet("p1", "Biscuit", domain.StatusAvailable)}
	store := NewStore(catalog)
	ctx := context.Background()
	store.FetchAvailable(ctx, false)

	require.NoError(t, store.UpdatePet(ctx, pet("p1", "", domain.StatusAvailable)))
	require.Empty(t, store.Available()[0].Name)
	require.Len(t, catalog.updates, 1)
}

func TestSpotlight_FeaturedFromAvailable(t *testing.T) {
	catalog := newFakeCatalog()
	for i := 0; i < 6; i++ {
		p := pet(fmt.Sprintf("p%d", i), "pet", domain.StatusAvailable)
		p.Settings.IsSpotlightFeatured = i != 1
		catalog.available = append(catalog.available, p)
	}
	store := NewStore(catalog)

	got := store.Spotlight(context.Background())
	require.Len(t, got, domain.SpotlightLimit)
	require.Equal(t, "p0", got[0].ID)
	require.Equal(t, "p2", got[1].ID)
}

type blockingCatalog struct {
	*fakeCatalog
	release chan struct{}
	entered chan struct{}
}

func (b *blockingCatalog) ListAvailable(ctx context.Context) ([]domain.Pet, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.fakeCatalog.ListAvailable(ctx)
}

func TestIsFetching_CoversOverlappingFetches(t *testing.T) {
	catalog := &blockingCatalog{fakeCatalog: newFakeCatalog(), release: make(chan struct{}), entered: make(chan struct{}, 2)}
	store := NewStore(catalog)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.FetchAvailable(context.Background(), true)
		}()
	}
	<-catalog.entered
	<-catalog.entered
	require.True(t, store.IsFetching())

	catalog.release <- struct{}{}
	require.True(t, store.IsFetching(), "second fetch still outstanding")
	catalog.release <- struct{}{}
	wg.Wait()

	require.False(t, store.IsFetching())
	require.Equal(t, 2, catalog.count("available"), "overlapping fetches are not merged")
}
