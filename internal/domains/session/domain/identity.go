package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyPetID    = errors.New("pet id is required")
)

// Identity is the authenticated staff member. The JSON keys match the backend's user record.
type Identity struct {
	ID    int64  `json:"ID"`
	Name  string `json:"Name"`
	Email string `json:"Email"`
	Role  string `json:"Role"`
}

// IsZero reports whether no field of the identity is set, as when a stored or returned user is null.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// Credentials are the login form values.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the email and checks both fields are present.
func (c *Credentials) Normalize() error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if strings.TrimSpace(c.Password) == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ProfileUpdate is the payload for changing the current user's profile. An empty password keeps
// the existing one.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Validate trims the fields and applies the profile invariants.
func (p *ProfileUpdate) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// SelectedPet references the pet a visitor is applying for.
type SelectedPet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
}

// Validate requires an id; name and species are display hints.
func (p *SelectedPet) Validate() error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return ErrEmptyPetID
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Species = strings.ToLower(strings.TrimSpace(p.Species))
	return nil
}
