package domain

import (
	"encoding/json"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/forms/sanitize"
)

const (
	SurrenderForm       = "surrender"
	SurrenderStorageKey = "surrender_form_state"
	SurrenderEndpoint   = "/applications/surrender"
)

const (
	AnimalDog = "dog"
	AnimalCat = "cat"
)

// SurrenderCatDetailsStep only applies to cats.
const SurrenderCatDetailsStep = 4

type HouseholdMember struct {
	Age    string `json:"age"`
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// SurrenderFields are the values of the owner surrender intake form.
type SurrenderFields struct {
	AnimalType string `json:"animalType"`

	FaxNumber               string            `json:"fax_number"`
	FirstName               string            `json:"firstName"`
	LastName                string            `json:"lastName"`
	PhoneNumber             string            `json:"phoneNumber"`
	Email                   string            `json:"email"`
	StreetAddress           string            `json:"streetAddress"`
	City                    string            `json:"city"`
	State                   string            `json:"state"`
	ZipCode                 string            `json:"zipCode"`
	WhenToSurrenderAnimal   string            `json:"whenToSurrenderAnimal"`
	AnimalName              string            `json:"animalName"`
	AnimalSex               string            `json:"animalSex"`
	AnimalAge               string            `json:"animalAge"`
	AnimalOwnershipDuration string            `json:"animalOwnershipDuration"`
	AnimalLocationFound     string            `json:"animalLocationFound"`
	AnimalWhySurrendered    string            `json:"animalWhySurrendered"`
	HouseholdMembers        []HouseholdMember `json:"householdMembers"`
	OtherPetsInHousehold    string            `json:"otherPetsInHousehold"`

	BehaviorTowardsKnownPeople  string `json:"animalsBehaviorTowardsKnownPeople"`
	BehaviorTowardsStrangers    string `json:"animalsBehaviorTowardsStrangers"`
	BehaviorTowardsKnownAnimals string `json:"animalsBehaviorTowardsKnownAnimals"`
	CommentsOnBehavior          string `json:"commentsOnBehavior"`
	ReactionToNewPeople         string `json:"animalsReactionToNewPeople"`

	HouseTrained                 string `json:"animalHouseTrained"`
	SpendMajorityOfTime          string `json:"animalSpendMajorityOfTime"`
	LeftAloneDuration            string `json:"animalLeftAloneDuration"`
	WhenLeftAlone                string `json:"animalWhenLeftAlone"`
	LeftAloneBehaviors           string `json:"animalLeftAloneBehaviors"`
	HowItPlays                   string `json:"animalHowItPlays"`
	ToysItLikes                  string `json:"animalToysItLikes"`
	GamesItLikes                 string `json:"animalGamesItLikes"`
	ScaredOfAnything             string `json:"animalScaredOfAnything"`
	ScaredOfAnythingExplanation  string `json:"animalScaredOfAnythingExplanation"`
	BadHabits                    string `json:"animalBadHabits"`
	AllowedOnFurniture           string `json:"animalAllowedOnFurniture"`
	SleepAtNight                 string `json:"animalSleepAtNight"`
	BehaviorFoodOthers           string `json:"animalBehaviorFoodOthers"`
	BehaviorToysOthers           string `json:"animalBehaviorToysOthers"`
	ProblemsRidingInCar          string `json:"animalProblemsRidingInCar"`
	ProblemsRidingInCarExplained string `json:"animalProblemsRidingInCarExplanation"`
	EscapedBefore                string `json:"animalEscapedBefore"`
	EscapedBeforeExplanation     string `json:"animalEscapedBeforeExplanation"`

	EverAttackedPeople               string `json:"animalEverAttackedPeople"`
	EverAttackedPeopleExplanation    string `json:"animalEverAttackedPeopleExplanation"`
	EverAttackedOtherCats            string `json:"animalEverAttackedOtherCats"`
	EverAttackedOtherCatsExplanation string `json:"animalEverAttackedOtherCatsExplanation"`
	EverAttackedOtherDogs            string `json:"animalEverAttackedOtherDogs"`
	EverAttackedOtherDogsExplanation string `json:"animalEverAttackedOtherDogsExplanation"`

	VeterinarianList              string `json:"animalVeterinarianList"`
	VeterinarianYearlyVisits      string `json:"animalVeterinarianYearlyVisits"`
	SpayedNeutered                string `json:"animalSpayedNeutered"`
	VaccinationHistory            string `json:"animalVaccinationHistory"`
	VaccinationsCurrent           string `json:"animalVaccinationsCurrent"`
	TestedHeartworm               string `json:"animalTestedHeartworm"`
	TestedHeartwormExplanation    string `json:"animalTestedHeartwormExplanation"`
	HeartwormPrevention           string `json:"animalHeartwormPrevention"`
	HeartwormPreventionExplained  string `json:"animalHeartwormPreventionExplanation"`
	Microchipped                  string `json:"animalMicrochipped"`
	MicrochippedExplanation       string `json:"animalMicrochippedExplanation"`
	VetOrGroomerBehavior          string `json:"animalVetOrGroomerBehavior"`
	VetMuzzled                    string `json:"animalVetMuzzled"`
	HealthProblems                string `json:"animalPastOrPresentHealthProblems"`
	HealthProblemsExplanation     string `json:"animalPastOrPresentHealthProblemsExplanation"`
	CurrentMedications            string `json:"animalCurrentMedications"`
	CurrentMedicationsExplanation string `json:"animalCurrentMedicationsExplanation"`

	TypeOfFood            string `json:"animalTypeOfFood"`
	EatingFrequency       string `json:"animalEatingFrequency"`
	AmountOfFood          string `json:"animalAmountOfFood"`
	FoodTreats            string `json:"animalFoodTreats"`
	FoodTreatsExplanation string `json:"animalFoodTreatsExplanation"`
	AdditionalInformation string `json:"additionalInformation"`

	// Uploads are references produced by the upload widget: a string, a list, or null.
	FullBodyPhoto    json.RawMessage `json:"fullBodyPhotoOfAnimal"`
	CloseUpFacePhoto json.RawMessage `json:"closeUpPhotoOfAnimalFace"`
	CopiesOfRecords  json.RawMessage `json:"copiesOfRecords"`
}

func surrenderDefaults() SurrenderFields {
	return SurrenderFields{
		HouseholdMembers: []HouseholdMember{{Gender: "Female", Count: 1}},
	}
}

// SurrenderSchema is the owner surrender intake. Only the first two steps are mandatory; the
// remaining pages are free text the shelter fills in with the owner when missing.
func SurrenderSchema() *Schema[SurrenderFields] {
	type F = SurrenderFields
	isDog := func(f *F) bool { return f.AnimalType == AnimalDog }
	return &Schema[F]{
		Name:       SurrenderForm,
		StorageKey: SurrenderStorageKey,
		Endpoint:   SurrenderEndpoint,
		Defaults:   surrenderDefaults,
		DemoDelay:  time.Second,
		Steps: []Step[F]{
			{
				Title: "Animal Type",
				Rules: []Rule[F]{
					Check(func(_ Env, f *F) []string {
						if f.AnimalType != AnimalDog && f.AnimalType != AnimalCat {
							return []string{"Animal Type (Dog or Cat)"}
						}
						return nil
					}),
				},
			},
			{
				Title: "Owner & Animal",
				Rules: []Rule[F]{
					Required("First Name", func(f *F) any { return f.FirstName }),
					Required("Last Name", func(f *F) any { return f.LastName }),
					Required("Phone Number", func(f *F) any { return f.PhoneNumber }),
					Required("Email", func(f *F) any { return f.Email }),
					Required("Street Address", func(f *F) any { return f.StreetAddress }),
					Required("City", func(f *F) any { return f.City }),
					Required("State", func(f *F) any { return f.State }),
					Required("Zip Code", func(f *F) any { return f.ZipCode }),
					Required("When do you need to surrender your animal", func(f *F) any { return f.WhenToSurrenderAnimal }),
					Required("Animal's Name", func(f *F) any { return f.AnimalName }),
					Required("Age", func(f *F) any { return f.AnimalAge }),
					Required("Sex", func(f *F) any { return f.AnimalSex }),
					Required("How long have you had your animal?", func(f *F) any { return f.AnimalOwnershipDuration }),
					Required("Where did you get your animal?", func(f *F) any { return f.AnimalLocationFound }),
					Required("Why are you surrendering your animal?", func(f *F) any { return f.AnimalWhySurrendered }),
					Required("Other pets in household", func(f *F) any { return f.OtherPetsInHousehold }),
					Check(householdLabels),
				},
			},
			{Title: "Behavior"},
			{Title: "Daily Life"},
			{Title: "Cat Details", Skip: isDog},
			{Title: "Health"},
			{Title: "Diet & Additional"},
			{Title: "Photos & Records"},
		},
		Sanitize:         sanitizeSurrender,
		Payload:          func(_ Env, f F) (any, error) { return f, nil },
		RejectionMessage: surrenderRejection,
	}
}

// householdLabels reports each household problem once however many members share it.
func householdLabels(_ Env, f *SurrenderFields) []string {
	var age, count bool
	for _, m := range f.HouseholdMembers {
		age = age || m.Age == ""
		count = count || m.Count < 1
	}
	var labels []string
	if age {
		labels = append(labels, "Household - Age")
	}
	if count {
		labels = append(labels, "Household - Quantity")
	}
	return labels
}

func sanitizeSurrender(f *SurrenderFields) {
	f.FirstName = sanitize.Name(f.FirstName)
	f.LastName = sanitize.Name(f.LastName)
	f.PhoneNumber = sanitize.Phone(f.PhoneNumber)
	f.StreetAddress = sanitize.Address(f.StreetAddress)
	f.City = sanitize.City(f.City)
	f.ZipCode = sanitize.Zip(f.ZipCode)
}

func surrenderRejection(_ int, body []byte) string {
	if msg := bodyMessage(body); msg != "" {
		return msg
	}
	return "There was an error submitting your application. Please try again."
}
