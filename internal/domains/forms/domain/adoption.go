package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/forms/sanitize"
)

const (
	AdoptionForm       = "adoption"
	AdoptionStorageKey = "adoption_form_state"
	AdoptionEndpoint   = "/applications/adoption"
)

// Yes is the affirmative answer of the yes/no selects.
const Yes = "Yes"

type ChildNameAge struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

type CurrentPet struct {
	Name             string `json:"name"`
	SpeciesBreedSize string `json:"speciesBreedSize"`
	Age              string `json:"age"`
	Source           string `json:"source"`
	SpayedNeutered   string `json:"spayedNeutered"`
	LikesDogs        string `json:"likesDogs"`
}

type PastPet struct {
	Name             string `json:"name"`
	SpeciesBreedSize string `json:"speciesBreedSize"`
	Age              string `json:"age"`
	Source           string `json:"source"`
	SpayedNeutered   string `json:"spayedNeutered"`
	PassedAwayReason string `json:"passedAwayReason"`
}

// AdoptionFields are the values of the adoption application.
type AdoptionFields struct {
	FaxNumber         string         `json:"fax_number"`
	FirstName         string         `json:"firstName"`
	LastName          string         `json:"lastName"`
	Age               *int           `json:"age"`
	SpouseFirstName   *string        `json:"spouseFirstName"`
	SpouseLastName    *string        `json:"spouseLastName"`
	RoommatesNames    []string       `json:"roommatesNames"`
	ChildrenNamesAges []ChildNameAge `json:"childrenNamesAges"`

	CurrentPets       []CurrentPet `json:"currentPets"`
	CurrentlyHavePets *string      `json:"currentlyHavePets"`
	PastPets          []PastPet    `json:"pastPets"`
	OwnPetsBefore     *string      `json:"ownPetsBefore"`

	Email              *string `json:"email"`
	Address            *string `json:"address"`
	AddressLine2       *string `json:"addressLine2"`
	City               *string `json:"city"`
	State              *string `json:"state"`
	Zip                *string `json:"zip"`
	PhoneNumber        *string `json:"phoneNumber"`
	CellPhoneNumber    *string `json:"cellPhoneNumber"`
	AdultMembersAgreed *string `json:"adultMembersAgreed"`

	HomeType                     *string  `json:"homeType"`
	HomeOwnership                *string  `json:"homeOwnership"`
	LandlordName                 *string  `json:"landlordName"`
	LandlordPhoneNumber          *string  `json:"landlordPhoneNumber"`
	AllowPets                    *string  `json:"allowPets"`
	BreedRestrictionsWeightLimit *string  `json:"breedRestrictionsWeightLimit"`
	MonthlyFee                   *string  `json:"monthlyFee"`
	Allergies                    *string  `json:"allergies"`
	PrimaryOwner                 *bool    `json:"primaryOwner"`
	YearsAtAddress               *string  `json:"yearsAtAddress"`
	PreviousAddress              *string  `json:"previousAddress"`
	ExpectToMove                 *string  `json:"expectToMove"`
	TravelPlan                   *string  `json:"travelPlan"`
	CatAccess                    []string `json:"catAccess"`
	CatIndoorOutdoor             *string  `json:"catIndoorOutdoor"`

	CatPreferenceBreed       *string `json:"catPreferenceBreed"`
	CatPreferencePhysical    *string `json:"catPreferencePhysical"`
	CatPreferencePersonality *string `json:"catPreferencePersonality"`
	CatPreferenceNotWant     *string `json:"catPreferenceNotWant"`
	WhyInterested            *string `json:"whyInterested"`
	AdoptionReason           *string `json:"adoptionReason"`
	OwnCatBefore             *string `json:"ownCatBefore"`
	OwnKittenBefore          *string `json:"ownKittenBefore"`
	AlreadyHaveVeterinarian  *string `json:"alreadyHaveVeterinarian"`
	CatAllowedHomeArea       *string `json:"catAllowedHomeArea"`
	CatHomeAloneHours        *string `json:"catHomeAloneHours"`
	CatDisciplineType        *string `json:"catDisciplineType"`
	CatEscapeSteps           *string `json:"catEscapeSteps"`

	BredAnimalDescription   *string  `json:"bredAnimalDescription"`
	OwnedDeclawedOrDebarked *string  `json:"ownedDeclawedOrDebarked"`
	MovedWithPet            *string  `json:"movedWithPet"`
	OwnedSpecialNeedsPet    *string  `json:"ownedSpecialNeedsPet"`
	MobilityDevice          *string  `json:"mobilityDevice"`
	SurrenderConditions     []string `json:"surrenderConditions"`
	SurrenderPlan           *string  `json:"surrenderPlan"`
	FoodTypeBrand           *string  `json:"foodTypeBrand"`
	AffordVetCare           *string  `json:"affordVetCare"`
	AffordEmergencyCost     *string  `json:"affordEmergencyCost"`

	AgreementSignature1 *string `json:"agreementSignature1"`
	AgreementSignature2 *string `json:"agreementSignature2"`
	AgreementSignature3 *string `json:"agreementSignature3"`
	SignatureData       *string `json:"signatureData"`
	HomeTourSubmitted   *bool   `json:"homeTourSubmitted"`
}

func adoptionDefaults() AdoptionFields {
	return AdoptionFields{
		RoommatesNames:      []string{""},
		ChildrenNamesAges:   []ChildNameAge{{}},
		CurrentPets:         []CurrentPet{{}},
		PastPets:            []PastPet{{}},
		CatAccess:           []string{},
		SurrenderConditions: []string{},
	}
}

func rentsHome(f *AdoptionFields) bool {
	return f.HomeOwnership != nil && (*f.HomeOwnership == "Rent" || *f.HomeOwnership == "Lease")
}

func isYes(v *string) bool {
	return v != nil && *v == Yes
}

func str[F any](get func(f *F) *string) func(f *F) any {
	return func(f *F) any { return get(f) }
}

// AdoptionSchema is the eight-step cat adoption application.
func AdoptionSchema() *Schema[AdoptionFields] {
	type F = AdoptionFields
	return &Schema[F]{
		Name:       AdoptionForm,
		StorageKey: AdoptionStorageKey,
		Endpoint:   AdoptionEndpoint,
		Defaults:   adoptionDefaults,
		DemoDelay:  1500 * time.Millisecond,
		Steps: []Step[F]{
			{
				Title: "About You",
				Rules: []Rule[F]{
					Required("First Name", func(f *F) any { return f.FirstName }),
					Required("Last Name", func(f *F) any { return f.LastName }),
					Required("Age", func(f *F) any { return f.Age }),
					Required("Email", str(func(f *F) *string { return f.Email })),
					Required("Address", str(func(f *F) *string { return f.Address })),
					Required("City", str(func(f *F) *string { return f.City })),
					Required("State", str(func(f *F) *string { return f.State })),
					Required("Zip Code", str(func(f *F) *string { return f.Zip })),
					Required("Phone Number", str(func(f *F) *string { return f.PhoneNumber })),
					Required("Household Agreement", str(func(f *F) *string { return f.AdultMembersAgreed })),
				},
			},
			{
				Title: "Your Home",
				Rules: []Rule[F]{
					Required("Home Type", str(func(f *F) *string { return f.HomeType })),
					Required("Own or Rent", str(func(f *F) *string { return f.HomeOwnership })),
					Required("Breed Restrictions", str(func(f *F) *string { return f.BreedRestrictionsWeightLimit })),
					Required("Pet Deposit/Fee", str(func(f *F) *string { return f.MonthlyFee })),
					Required("Allergies", str(func(f *F) *string { return f.Allergies })),
					Required("Primary Owner", func(f *F) any { return f.PrimaryOwner }),
					Required("Years at Address", str(func(f *F) *string { return f.YearsAtAddress })),
					Required("Previous Address", str(func(f *F) *string { return f.PreviousAddress })),
					Required("Expect to Move", str(func(f *F) *string { return f.ExpectToMove })),
					Required("Travel Plan", str(func(f *F) *string { return f.TravelPlan })),
					Required("Cat Access", func(f *F) any { return f.CatAccess }),
					Required("Indoor/Outdoor", str(func(f *F) *string { return f.CatIndoorOutdoor })),
					When(rentsHome,
						Required("Landlord Name", str(func(f *F) *string { return f.LandlordName })),
						Required("Landlord Phone", str(func(f *F) *string { return f.LandlordPhoneNumber })),
						Required("Pets Allowed", str(func(f *F) *string { return f.AllowPets })),
					),
				},
			},
			{
				Title: "Cat Preferences",
				Rules: []Rule[F]{
					Required("Preferred Breed", str(func(f *F) *string { return f.CatPreferenceBreed })),
					Required("Physical Preferences", str(func(f *F) *string { return f.CatPreferencePhysical })),
					Required("Personality Preferences", str(func(f *F) *string { return f.CatPreferencePersonality })),
					Required("Traits Not Wanted", str(func(f *F) *string { return f.CatPreferenceNotWant })),
					Required("Why Interested", str(func(f *F) *string { return f.WhyInterested })),
					Required("Adoption Reason", str(func(f *F) *string { return f.AdoptionReason })),
					Required("Owned Cat Before", str(func(f *F) *string { return f.OwnCatBefore })),
					Required("Owned Kitten Before", str(func(f *F) *string { return f.OwnKittenBefore })),
					Required("Veterinarian", str(func(f *F) *string { return f.AlreadyHaveVeterinarian })),
					Required("Allowed Areas", str(func(f *F) *string { return f.CatAllowedHomeArea })),
					Required("Home Alone Hours", str(func(f *F) *string { return f.CatHomeAloneHours })),
					Required("Discipline Type", str(func(f *F) *string { return f.CatDisciplineType })),
					Required("Escape Plan", str(func(f *F) *string { return f.CatEscapeSteps })),
				},
			},
			{
				Title: "Current Pets",
				Rules: []Rule[F]{
					Required("Do you have pets?", str(func(f *F) *string { return f.CurrentlyHavePets })),
					When(func(f *F) bool { return isYes(f.CurrentlyHavePets) },
						Each(func(f *F) []CurrentPet { return f.CurrentPets },
							ItemCheck[CurrentPet]{Label: "Pet %d Name", Value: func(p CurrentPet) any { return p.Name }},
							ItemCheck[CurrentPet]{Label: "Pet %d Breed/Size", Value: func(p CurrentPet) any { return p.SpeciesBreedSize }},
							ItemCheck[CurrentPet]{Label: "Pet %d Age", Value: func(p CurrentPet) any { return p.Age }},
							ItemCheck[CurrentPet]{Label: "Pet %d Likes Dogs", Value: func(p CurrentPet) any { return p.LikesDogs }},
							ItemCheck[CurrentPet]{Label: "Pet %d Source", Value: func(p CurrentPet) any { return p.Source }},
							ItemCheck[CurrentPet]{Label: "Pet %d Spayed/Neutered", Value: func(p CurrentPet) any { return p.SpayedNeutered }},
						),
					),
				},
			},
			{
				Title: "Past Pets",
				Rules: []Rule[F]{
					Required("Have you owned pets?", str(func(f *F) *string { return f.OwnPetsBefore })),
					When(func(f *F) bool { return isYes(f.OwnPetsBefore) },
						Each(func(f *F) []PastPet { return f.PastPets },
							ItemCheck[PastPet]{Label: "Past Pet %d Name", Value: func(p PastPet) any { return p.Name }},
							ItemCheck[PastPet]{Label: "Past Pet %d Breed/Size", Value: func(p PastPet) any { return p.SpeciesBreedSize }},
							ItemCheck[PastPet]{Label: "Past Pet %d Age", Value: func(p PastPet) any { return p.Age }},
							ItemCheck[PastPet]{Label: "Past Pet %d Source", Value: func(p PastPet) any { return p.Source }},
							ItemCheck[PastPet]{Label: "Past Pet %d Spayed/Neutered", Value: func(p PastPet) any { return p.SpayedNeutered }},
							ItemCheck[PastPet]{Label: "Past Pet %d Outcome", Value: func(p PastPet) any { return p.PassedAwayReason }},
						),
					),
				},
			},
			{
				Title: "Care & Commitment",
				Rules: []Rule[F]{
					Required("Bred Animals", str(func(f *F) *string { return f.BredAnimalDescription })),
					Required("Declawed/Debarked", str(func(f *F) *string { return f.OwnedDeclawedOrDebarked })),
					Required("Moved with Pet", str(func(f *F) *string { return f.MovedWithPet })),
					Required("Special Needs Pet", str(func(f *F) *string { return f.OwnedSpecialNeedsPet })),
					Required("Mobility Device", str(func(f *F) *string { return f.MobilityDevice })),
					Required("Food Type", str(func(f *F) *string { return f.FoodTypeBrand })),
					Required("Surrender Conditions", func(f *F) any { return f.SurrenderConditions }),
					Required("Surrender Plan", str(func(f *F) *string { return f.SurrenderPlan })),
					Required("Vet Care", str(func(f *F) *string { return f.AffordVetCare })),
					Required("Emergency Cost", str(func(f *F) *string { return f.AffordEmergencyCost })),
				},
			},
			{
				Title: "Home Tour",
				Rules: []Rule[F]{
					Check(func(_ Env, f *F) []string {
						if f.HomeTourSubmitted == nil {
							return []string{"Home Tour Confirmation"}
						}
						return nil
					}),
				},
				Gate: func(f *F) bool { return f.HomeTourSubmitted != nil && *f.HomeTourSubmitted },
			},
			{
				Title: "Agreement",
				Rules: []Rule[F]{
					Required("Commitment Signature", str(func(f *F) *string { return f.AgreementSignature1 })),
					Required("Homecheck Consent", str(func(f *F) *string { return f.AgreementSignature2 })),
					Required("Final Signature", str(func(f *F) *string { return f.SignatureData })),
				},
			},
		},
		Sanitize:         sanitizeAdoption,
		Payload:          adoptionPayload,
		RejectionMessage: adoptionRejection,
	}
}

func sanitizeAdoption(f *AdoptionFields) {
	f.FirstName = sanitize.Name(f.FirstName)
	f.LastName = sanitize.Name(f.LastName)
	f.SpouseFirstName = sanitize.Ptr(f.SpouseFirstName, sanitize.Name)
	f.SpouseLastName = sanitize.Ptr(f.SpouseLastName, sanitize.Name)
	f.Address = sanitize.Ptr(f.Address, sanitize.Address)
	f.City = sanitize.Ptr(f.City, sanitize.City)
	f.Zip = sanitize.Ptr(f.Zip, sanitize.Zip)
	f.PhoneNumber = sanitize.Ptr(f.PhoneNumber, sanitize.Phone)
	f.CellPhoneNumber = sanitize.Ptr(f.CellPhoneNumber, sanitize.Phone)
	f.LandlordPhoneNumber = sanitize.Ptr(f.LandlordPhoneNumber, sanitize.Phone)
}

// adoptionPayload attaches the selected pet, sends age as a number and joins the cat access
// choices because the backend stores them in one string column.
func adoptionPayload(env Env, f AdoptionFields) (any, error) {
	body, err := toMap(f)
	if err != nil {
		return nil, err
	}
	body["petId"], body["petName"] = nil, nil
	if env.Pet != nil {
		if env.Pet.ID != "" {
			body["petId"] = env.Pet.ID
		}
		if env.Pet.Name != "" {
			body["petName"] = env.Pet.Name
		}
	}
	age := 0
	if f.Age != nil {
		age = *f.Age
	}
	body["age"] = age
	if len(f.CatAccess) > 0 {
		body["catAccess"] = strings.Join(f.CatAccess, ", ")
	} else {
		body["catAccess"] = nil
	}
	if f.CurrentPets == nil {
		body["currentPets"] = []CurrentPet{}
	}
	if f.PastPets == nil {
		body["pastPets"] = []PastPet{}
	}
	return body, nil
}

func adoptionRejection(_ int, body []byte) string {
	msg := bodyMessage(body)
	if msg == "" {
		msg = "Submission failed"
	}
	return "There was an error submitting your application: " + msg
}

type messageBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func bodyMessage(body []byte) string {
	var parsed messageBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(parsed.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(parsed.Message)
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("payload is not an object")
	}
	return out, nil
}
