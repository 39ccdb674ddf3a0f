package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/adoptionos/internal/domains/forms/domain"
	"github.com/Apurer/adoptionos/internal/domains/forms/ports"
)

// ErrUnknownForm is returned for a form name no wizard is registered under.
var ErrUnknownForm = errors.New("unknown form")

// Set holds the three intake wizards of one client.
type Set struct {
	Adoption  *Wizard[domain.AdoptionFields]
	Surrender *Wizard[domain.SurrenderFields]
	Volunteer *Wizard[domain.VolunteerFields]
}

// NewSet builds and restores every wizard over the same collaborators.
func NewSet(ctx context.Context, store ports.Storage, submitter ports.Submitter, opts ...Option) (*Set, error) {
	adoption, err := New(ctx, domain.AdoptionSchema(), store, submitter, opts...)
	if err != nil {
		return nil, fmt.Errorf("adoption wizard: %w", err)
	}
	surrender, err := New(ctx, domain.SurrenderSchema(), store, submitter, opts...)
	if err != nil {
		return nil, fmt.Errorf("surrender wizard: %w", err)
	}
	volunteer, err := New(ctx, domain.VolunteerSchema(), store, submitter, opts...)
	if err != nil {
		return nil, fmt.Errorf("volunteer wizard: %w", err)
	}
	return &Set{Adoption: adoption, Surrender: surrender, Volunteer: volunteer}, nil
}

// Controller looks a wizard up by form name.
func (s *Set) Controller(form string) (ports.Controller, error) {
	switch form {
	case domain.AdoptionForm:
		return s.Adoption, nil
	case domain.SurrenderForm:
		return s.Surrender, nil
	case domain.VolunteerForm:
		return s.Volunteer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownForm, form)
}

// Forms lists the registered form names.
func (s *Set) Forms() []string {
	return []string{domain.AdoptionForm, domain.SurrenderForm, domain.VolunteerForm}
}
