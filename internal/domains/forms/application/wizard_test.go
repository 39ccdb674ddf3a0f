package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Apurer/adoptionos/internal/domains/forms/domain"
	"github.com/Apurer/adoptionos/internal/domains/forms/ports"
	"github.com/Apurer/adoptionos/internal/platform/storage"
	"github.com/Apurer/adoptionos/internal/platform/storage/memory"
)

type submission struct {
	endpoint string
	payload  any
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []submission
	reply   *ports.Reply
	err     error
	release chan struct{}
	entered chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, endpoint string, payload any) (*ports.Reply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, submission{endpoint: endpoint, payload: payload})
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &ports.Reply{Status: http.StatusCreated, Body: []byte(`{"data":{"id":1}}`)}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type event struct {
	name string
	data map[string]any
}

type fakeMetrics struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeMetrics) Record(_ context.Context, name string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{name: name, data: data})
}

func (f *fakeMetrics) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.name)
	}
	return out
}

type demoSwitch bool

func (d demoSwitch) Enabled(context.Context) bool { return bool(d) }

type selection struct{ pet domain.PetRef }

func (s selection) SelectedPet(context.Context) (domain.PetRef, bool) { return s.pet, true }

func newStorage() *storage.Gateway {
	return storage.NewGateway(memory.NewBackend(), memory.NewBackend())
}

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func completeVolunteer(f *domain.VolunteerFields) {
	f.FirstName, f.LastName = "Ann", "Lee"
	f.Email = "ann@example.org"
	f.Address, f.City, f.Zip = "1 Main St", "Springfield", "12345"
	f.PhoneNumber = "5551234567"
	f.Birthday = "1990-04-01"
	f.Age = intPtr(36)
	f.EmergencyContactName, f.EmergencyContactPhone = "Bob", "5557654321"
	f.InterestReason = "cats"
	f.PositionPreferences = []string{"Cat care"}
	f.Availability = []string{"Weekends"}
	f.NameFull = "Ann Lee"
	f.SignatureDate = "2026-10-18"
	f.SignatureData = strPtr("data:image/png;base64,AAAA")
	f.ParentName = "Pat Lee"
}

func TestWizard_AdvanceRejectsIncompleteStep(t *testing.T) {
	ctx := context.Background()
	metrics := &fakeMetrics{}
	w, err := New(ctx, domain.AdoptionSchema(), newStorage(), &fakeSubmitter{}, WithMetrics(metrics))
	require.NoError(t, err)

	w.Update(ctx, func(f *domain.AdoptionFields) { f.FirstName = "Alice" })
	err = w.Advance(ctx)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.ErrorIs(t, err, domain.ErrStepInvalid)
	require.Contains(t, verr.Labels, "Last Name")
	require.NotContains(t, verr.Labels, "First Name")

	state := w.State()
	require.Equal(t, 0, state.Step)
	require.True(t, state.AttemptedSubmit)
	require.Empty(t, metrics.names())
}

func TestWizard_AdvancePersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	store := newStorage()
	metrics := &fakeMetrics{}
	w, err := New(ctx, domain.SurrenderSchema(), store, &fakeSubmitter{}, WithMetrics(metrics))
	require.NoError(t, err)

	require.NoError(t, w.Patch(ctx, json.RawMessage(`{"animalType":"cat","firstName":"Jo"}`)))
	require.NoError(t, w.Advance(ctx))
	require.Equal(t, 1, w.State().Step)
	require.False(t, w.State().AttemptedSubmit)

	require.Len(t, metrics.events, 1)
	require.Equal(t, EventFormStep, metrics.events[0].name)
	require.Equal(t, map[string]any{"form": domain.SurrenderForm, "step": 1}, metrics.events[0].data)

	restored, err := New(ctx, domain.SurrenderSchema(), store, &fakeSubmitter{})
	require.NoError(t, err)
	state := restored.State()
	require.Equal(t, 1, state.Step)
	require.Equal(t, domain.AnimalCat, state.Fields.AnimalType)
	require.Equal(t, "Jo", state.Fields.FirstName)
	require.Len(t, state.Fields.HouseholdMembers, 1)
}

func TestWizard_RestoreFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	session := memory.NewBackend()
	store := storage.NewGateway(session, memory.NewBackend())

	require.NoError(t, session.Set(ctx, domain.SurrenderStorageKey, `{"step":`))
	w, err := New(ctx, domain.SurrenderSchema(), store, &fakeSubmitter{})
	require.NoError(t, err)
	require.Equal(t, 0, w.State().Step)
	_, ok, _ := session.Get(ctx, domain.SurrenderStorageKey)
	require.False(t, ok, "corrupt snapshot is removed")

	require.NoError(t, session.Set(ctx, domain.SurrenderStorageKey, `{"step":42,"fields":{"firstName":"Jo"}}`))
	w, err = New(ctx, domain.SurrenderSchema(), store, &fakeSubmitter{})
	require.NoError(t, err)
	require.Equal(t, 0, w.State().Step)
	require.Equal(t, "Jo", w.Fields().FirstName)
}

func TestWizard_DogSkipsCatDetails(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.SurrenderSchema(), newStorage(), &fakeSubmitter{}, WithDemo(demoSwitch(true)))
	require.NoError(t, err)
	w.Update(ctx, func(f *domain.SurrenderFields) { f.AnimalType = domain.AnimalDog })

	for i := 0; i < domain.SurrenderCatDetailsStep-1; i++ {
		require.NoError(t, w.Advance(ctx))
	}
	require.Equal(t, domain.SurrenderCatDetailsStep-1, w.State().Step)

	require.NoError(t, w.Advance(ctx))
	require.Equal(t, domain.SurrenderCatDetailsStep+1, w.State().Step)

	require.NoError(t, w.Retreat(ctx))
	require.Equal(t, domain.SurrenderCatDetailsStep-1, w.State().Step)
}

func TestWizard_RetreatStopsAtFirstStep(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.AdoptionSchema(), newStorage(), &fakeSubmitter{})
	require.NoError(t, err)
	require.NoError(t, w.Retreat(ctx))
	require.Equal(t, 0, w.State().Step)
}

func TestWizard_PatchSanitizesAndRejectsUnknownFields(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), &fakeSubmitter{})
	require.NoError(t, err)

	require.NoError(t, w.Patch(ctx, json.RawMessage(`{"phoneNumber":"555-123-4567","zip":"12a345678"}`)))
	require.Equal(t, "(555)123-4567", w.Fields().PhoneNumber)
	require.Equal(t, "12345", w.Fields().Zip)

	err = w.Patch(ctx, json.RawMessage(`{"nickname":"x"}`))
	require.ErrorIs(t, err, domain.ErrInvalidPatch)
	err = w.Patch(ctx, json.RawMessage(`{"age":"old"}`))
	require.ErrorIs(t, err, domain.ErrInvalidPatch)
	require.Nil(t, w.Fields().Age)
}

func TestWizard_PatchReplacesListsWhole(t *testing.T) {
	ctx := context.Background()

	t.Run("current pets", func(t *testing.T) {
		w, err := New(ctx, domain.AdoptionSchema(), newStorage(), &fakeSubmitter{})
		require.NoError(t, err)
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"currentlyHavePets":"Yes","currentPets":[`+
			`{"name":"Tom","speciesBreedSize":"Cat","age":"3","source":"Shelter","spayedNeutered":"Yes","likesDogs":"No"},`+
			`{"name":"Kit"}]}`)))
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"currentPets":[{"name":"Kit"}]}`)))

		fields := w.Fields()
		require.Equal(t, []domain.CurrentPet{{Name: "Kit"}}, fields.CurrentPets)
		require.Equal(t, domain.Yes, *fields.CurrentlyHavePets)
		labels := domain.AdoptionSchema().Labels(domain.Env{}, 3, &fields)
		require.Contains(t, labels, "Pet 1 Age")
		require.Contains(t, labels, "Pet 1 Source")
	})

	t.Run("past pets", func(t *testing.T) {
		w, err := New(ctx, domain.AdoptionSchema(), newStorage(), &fakeSubmitter{})
		require.NoError(t, err)
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"ownPetsBefore":"Yes","pastPets":[`+
			`{"name":"Max","speciesBreedSize":"Dog","age":"12","source":"Breeder","spayedNeutered":"Yes","passedAwayReason":"Old age"},`+
			`{"name":"Bea","source":"Friend"}]}`)))
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"pastPets":[{"name":"Bea"}]}`)))

		fields := w.Fields()
		require.Equal(t, []domain.PastPet{{Name: "Bea"}}, fields.PastPets)
		labels := domain.AdoptionSchema().Labels(domain.Env{}, 4, &fields)
		require.Contains(t, labels, "Past Pet 1 Age")
		require.Contains(t, labels, "Past Pet 1 Source")
	})

	t.Run("household members", func(t *testing.T) {
		w, err := New(ctx, domain.SurrenderSchema(), newStorage(), &fakeSubmitter{})
		require.NoError(t, err)
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"householdMembers":[`+
			`{"age":"40","gender":"Male","count":1},{"gender":"Female","count":2}]}`)))
		require.NoError(t, w.Patch(ctx, json.RawMessage(`{"householdMembers":[{"gender":"Female"}]}`)))

		fields := w.Fields()
		require.Equal(t, []domain.HouseholdMember{{Gender: "Female"}}, fields.HouseholdMembers)
		labels := domain.SurrenderSchema().Labels(domain.Env{}, 1, &fields)
		require.Contains(t, labels, "Household - Age")
		require.Contains(t, labels, "Household - Quantity")
	})
}

func TestWizard_FieldsAreCopies(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), &fakeSubmitter{})
	require.NoError(t, err)
	w.Update(ctx, func(f *domain.VolunteerFields) { f.Availability = []string{"Mornings"} })

	fields := w.Fields()
	fields.Availability[0] = "Nights"
	require.Equal(t, []string{"Mornings"}, w.Fields().Availability)
}

func TestWizard_SubmitOnlyFromFinalStep(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{}
	w, err := New(ctx, domain.AdoptionSchema(), newStorage(), sub)
	require.NoError(t, err)
	require.ErrorIs(t, w.Submit(ctx), domain.ErrNotFinalStep)
	require.Zero(t, sub.count())
}

func TestWizard_SubmitInvalidDoesNotSend(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub, WithClock(clock))
	require.NoError(t, err)

	err = w.Submit(ctx)
	require.ErrorIs(t, err, domain.ErrStepInvalid)
	require.True(t, w.State().AttemptedSubmit)
	require.Zero(t, sub.count())
}

func TestWizard_SubmitSuccessResetsForm(t *testing.T) {
	ctx := context.Background()
	store := newStorage()
	sub := &fakeSubmitter{}
	metrics := &fakeMetrics{}
	w, err := New(ctx, domain.VolunteerSchema(), store, sub, WithMetrics(metrics), WithClock(clock))
	require.NoError(t, err)
	w.Update(ctx, completeVolunteer)
	require.Empty(t, w.Validation())

	require.NoError(t, w.Submit(ctx))

	require.Equal(t, 1, sub.count())
	require.Equal(t, domain.VolunteerEndpoint, sub.calls[0].endpoint)
	payload := sub.calls[0].payload.(map[string]any)
	require.NotContains(t, payload, "parentName")
	require.Equal(t, "Ann", payload["firstName"])

	state := w.State()
	require.True(t, state.Submitted)
	require.False(t, state.Submitting)
	require.Empty(t, state.Fields.FirstName)
	require.Equal(t, []string{EventFormSubmit}, metrics.names())

	var snap map[string]any
	require.False(t, store.Read(ctx, storage.ScopeSession, domain.VolunteerStorageKey, &snap))
}

func TestWizard_SubmitRejectedKeepsStateAndMessage(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{reply: &ports.Reply{Status: http.StatusConflict, Body: []byte(`{"error":"Already applied"}`)}}
	metrics := &fakeMetrics{}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub, WithMetrics(metrics), WithClock(clock))
	require.NoError(t, err)
	w.Update(ctx, completeVolunteer)

	err = w.Submit(ctx)
	var subErr *domain.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.ErrorIs(t, err, domain.ErrSubmissionFailed)
	require.Equal(t, http.StatusConflict, subErr.Status)
	require.Equal(t, "Already applied", subErr.Message)

	state := w.State()
	require.False(t, state.Submitted)
	require.Equal(t, "Already applied", state.LastError)
	require.Equal(t, "Ann", state.Fields.FirstName)
	require.Empty(t, metrics.names())
}

func TestWizard_SubmitAcceptedWithErrorBodyFails(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{reply: &ports.Reply{Status: http.StatusOK, Body: []byte(`{"error":"Quota reached"}`)}}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub, WithClock(clock))
	require.NoError(t, err)
	w.Update(ctx, completeVolunteer)

	require.ErrorIs(t, w.Submit(ctx), domain.ErrSubmissionFailed)
	require.Equal(t, "Quota reached", w.State().LastError)
}

func TestWizard_SubmitNetworkFailure(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{err: ports.ErrUnreachable}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub, WithClock(clock))
	require.NoError(t, err)
	w.Update(ctx, completeVolunteer)

	err = w.Submit(ctx)
	require.ErrorIs(t, err, ports.ErrUnreachable)
	require.Equal(t, domain.NetworkErrorMessage, w.State().LastError)
}

func TestWizard_SubmitAttachesSelectedPet(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{}
	w, err := New(ctx, domain.AdoptionSchema(), newStorage(), sub,
		WithPetSelection(selection{pet: domain.PetRef{ID: "p-7", Name: "Mochi"}}))
	require.NoError(t, err)
	w.Update(ctx, func(f *domain.AdoptionFields) { f.CatAccess = []string{"Whole house"} })

	require.NoError(t, w.send(ctx, w.Fields()))

	payload := sub.calls[0].payload.(map[string]any)
	require.Equal(t, domain.AdoptionEndpoint, sub.calls[0].endpoint)
	require.Equal(t, "p-7", payload["petId"])
	require.Equal(t, "Mochi", payload["petName"])
	require.Equal(t, "Whole house", payload["catAccess"])
}

func TestWizard_DemoAdvanceIgnoresValidation(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.AdoptionSchema(), newStorage(), &fakeSubmitter{}, WithDemo(demoSwitch(true)))
	require.NoError(t, err)
	for w.State().Step < w.Schema().LastStep() {
		require.NoError(t, w.Advance(ctx))
	}
	require.ErrorIs(t, w.Advance(ctx), domain.ErrFinalStep)
}

func TestWizard_SecondSubmitWhileInFlight(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub, WithClock(clock))
	require.NoError(t, err)
	w.Update(ctx, completeVolunteer)

	done := make(chan error, 1)
	go func() { done <- w.Submit(ctx) }()
	<-sub.entered

	require.ErrorIs(t, w.Submit(ctx), domain.ErrSubmitInFlight)
	require.ErrorIs(t, w.Advance(ctx), domain.ErrSubmitInFlight)
	require.True(t, w.State().Submitting)

	close(sub.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, sub.count())
}

func TestWizard_DemoSubmitSkipsNetwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	sub := &fakeSubmitter{}
	metrics := &fakeMetrics{}
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), sub,
		WithDemo(demoSwitch(true)), WithDemoDelay(10*time.Millisecond), WithMetrics(metrics))
	require.NoError(t, err)

	require.NoError(t, w.Submit(ctx))
	require.True(t, w.State().Submitted)
	require.Zero(t, sub.count())
	require.Empty(t, metrics.names())
}

func TestWizard_DemoSubmitHonoursCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(ctx, domain.VolunteerSchema(), newStorage(), &fakeSubmitter{},
		WithDemo(demoSwitch(true)), WithDemoDelay(time.Hour))
	require.NoError(t, err)

	cancel()
	err = w.Submit(ctx)
	require.True(t, errors.Is(err, context.Canceled))
	require.False(t, w.State().Submitting)
	require.False(t, w.State().Submitted)
}

func TestWizard_ResetRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	store := newStorage()
	w, err := New(ctx, domain.AdoptionSchema(), store, &fakeSubmitter{}, WithDemo(demoSwitch(true)))
	require.NoError(t, err)
	w.Update(ctx, func(f *domain.AdoptionFields) { f.FirstName = "Alice" })
	require.NoError(t, w.Advance(ctx))

	w.Reset(ctx)

	state := w.State()
	require.Equal(t, 0, state.Step)
	require.Empty(t, state.Fields.FirstName)
	require.Equal(t, []string{""}, state.Fields.RoommatesNames)
	require.False(t, state.AttemptedSubmit)
	var snap map[string]any
	require.False(t, store.Read(ctx, storage.ScopeSession, domain.AdoptionStorageKey, &snap))
}

func TestWizard_View(t *testing.T) {
	ctx := context.Background()
	w, err := New(ctx, domain.SurrenderSchema(), newStorage(), &fakeSubmitter{})
	require.NoError(t, err)

	view := w.View(ctx)
	require.Equal(t, domain.SurrenderForm, view.Form)
	require.Equal(t, 8, view.StepCount)
	require.Equal(t, "Animal Type", view.StepTitle)
	require.Equal(t, []string{"Animal Type (Dog or Cat)"}, view.Validation)
	require.False(t, view.StepValid)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(view.Fields, &fields))
	require.Contains(t, fields, "householdMembers")
}

func TestSet_Controller(t *testing.T) {
	ctx := context.Background()
	set, err := NewSet(ctx, newStorage(), &fakeSubmitter{})
	require.NoError(t, err)

	for _, form := range set.Forms() {
		c, err := set.Controller(form)
		require.NoError(t, err)
		require.Equal(t, form, c.Form())
	}
	_, err = set.Controller("foster")
	require.ErrorIs(t, err, ErrUnknownForm)
}
