package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// Status is the lifecycle state of a shelter animal.
type Status string

const (
	StatusIntake          Status = "intake"
	StatusAvailable       Status = "available"
	StatusHold            Status = "hold"
	StatusFoster          Status = "foster"
	StatusAdoptionPending Status = "adoption-pending"
	StatusAdopted         Status = "adopted"
	StatusArchived        Status = "archived"
)

// Species of animals the shelter houses.
type Species string

const (
	SpeciesCat Species = "cat"
	SpeciesDog Species = "dog"
)

// ErrEmptyID is returned when a pet has no id to address it by.
var ErrEmptyID = errors.New("pet id is required")

// Pet is one animal record as served by the backend. The server manages ID and the timestamps;
// everything else is the editable Profile.
type Pet struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Profile
}

// Profile is the editable part of a pet record and the body of an update.
type Profile struct {
	Slug       string  `json:"slug,omitempty"`
	Name       string  `json:"name"`
	Species    Species `json:"species"`
	Sex        string  `json:"sex"`
	LitterName *string `json:"litterName,omitempty"`

	Physical     Physical     `json:"physical"`
	Behavior     Behavior     `json:"behavior"`
	Descriptions Descriptions `json:"descriptions"`
	Details      Details      `json:"details"`
	Returned     Returned     `json:"returned"`
	Settings     Settings     `json:"profileSettings"`

	// Sections the client passes through untouched.
	Medical   json.RawMessage `json:"medical,omitempty"`
	Adoption  json.RawMessage `json:"adoption,omitempty"`
	Foster    json.RawMessage `json:"foster,omitempty"`
	Sponsored json.RawMessage `json:"sponsored,omitempty"`
	Photos    json.RawMessage `json:"photos,omitempty"`

	// raw is the record as decoded, minus server-managed keys.
	raw map[string]json.RawMessage
}

type Physical struct {
	AgeGroup      *string  `json:"ageGroup"`
	Breed         *string  `json:"breed"`
	CoatLength    *string  `json:"coatLength"`
	Color         *string  `json:"color"`
	DateOfBirth   *string  `json:"dateOfBirth,omitempty"`
	Size          *string  `json:"size"`
	CurrentWeight *float64 `json:"currentWeight,omitempty"`
}

type Bonded struct {
	BondedWith []string `json:"bondedWith,omitempty"`
	IsBonded   *bool    `json:"isBonded,omitempty"`
}

type Behavior struct {
	Bonded               *Bonded  `json:"bonded,omitempty"`
	EnergyLevel          *string  `json:"energyLevel"`
	HealthSummary        *string  `json:"healthSummary,omitempty"`
	IsGoodWithCats       *bool    `json:"isGoodWithCats"`
	IsGoodWithDogs       *bool    `json:"isGoodWithDogs"`
	IsGoodWithKids       *bool    `json:"isGoodWithKids"`
	IsHouseTrained       *bool    `json:"isHouseTrained"`
	MustGoWithAnotherCat *bool    `json:"mustGoWithAnotherCat,omitempty"`
	MustGoWithAnotherDog *bool    `json:"mustGoWithAnotherDog,omitempty"`
	PersonalityTags      []string `json:"personalityTags"`
	PrefersToBeAlone     *bool    `json:"prefersToBeAlone"`
	SpecialNeeds         *string  `json:"specialNeeds,omitempty"`
}

type Descriptions struct {
	AdditionalInformation []string `json:"additionalInformation,omitempty"`
	Behavioral            *string  `json:"behavioral,omitempty"`
	Fun                   *string  `json:"fun,omitempty"`
	Origin                *string  `json:"origin,omitempty"`
	Primary               *string  `json:"primary"`
	SpecialNeeds          *string  `json:"specialNeeds,omitempty"`
	Spotlight             *string  `json:"spotlight,omitempty"`
}

type Details struct {
	EnvironmentType        *string `json:"environmentType,omitempty"`
	IntakeDate             *string `json:"intakeDate,omitempty"`
	PreferredPetLitterType *string `json:"preferredPetLitterType,omitempty"`
	ShelterLocation        *string `json:"shelterLocation,omitempty"`
	Status                 Status  `json:"status"`
}

type ReturnEntry struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type Returned struct {
	IsReturned bool          `json:"isReturned"`
	History    []ReturnEntry `json:"history"`
}

// Settings controls how the public site presents the pet.
type Settings struct {
	IsSpotlightFeatured       bool `json:"isSpotlightFeatured"`
	ShowAdditionalInformation bool `json:"showAdditionalInformation"`
	ShowMedicalHistory        bool `json:"showMedicalHistory"`
}

// Status returns the lifecycle status.
func (p Pet) Status() Status {
	return p.Details.Status
}

// Validate trims the id an update is addressed by. The profile is the backend's to judge.
func (p *Pet) Validate() error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// SpotlightLimit caps the number of featured pets on the home page.
const SpotlightLimit = 4

// Spotlight returns up to limit pets flagged as spotlight-featured, in list order.
func Spotlight(pets []Pet, limit int) []Pet {
	featured := make([]Pet, 0, limit)
	for _, p := range pets {
		if len(featured) == limit {
			break
		}
		if p.Settings.IsSpotlightFeatured {
			featured = append(featured, p)
		}
	}
	return featured
}

// ReplaceByID replaces, in place, every element of pets whose id matches updated.ID and reports
// whether any matched.
func ReplaceByID(pets []Pet, updated Pet) bool {
	matched := false
	for i := range pets {
		if pets[i].ID == updated.ID {
			pets[i] = updated
			matched = true
		}
	}
	return matched
}
