package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
	"id": "p1",
	"createdAt": "2025-01-01T00:00:00Z",
	"updatedAt": "2025-02-01T00:00:00Z",
	"name": "Biscuit",
	"species": "dog",
	"sex": "male",
	"physical": {"ageGroup": "young", "breed": "Mix", "coatLength": null, "color": "tan", "size": "medium"},
	"behavior": {"energyLevel": "high", "isGoodWithCats": true, "isGoodWithDogs": null, "isGoodWithKids": true,
		"isHouseTrained": true, "personalityTags": ["playful"], "prefersToBeAlone": false},
	"medical": {"spayedOrNeutered": true, "microchip": {"microchipped": true}, "surgeries": [], "vaccinations": {}},
	"descriptions": {"primary": "Loves fetch"},
	"details": {"status": "available", "shelterLocation": "Kennel 4"},
	"returned": {"isReturned": false, "history": []},
	"photos": [{"url": "https://example.org/biscuit.jpg"}],
	"profileSettings": {"isSpotlightFeatured": true, "showAdditionalInformation": false, "showMedicalHistory": true}
}`

func TestProfileKeepsUnmodelledKeysAndNulls(t *testing.T) {
	record := `{
		"id": "p1",
		"updatedAt": "2025-02-01T00:00:00Z",
		"name": "Biscuit",
		"species": "dog",
		"intakeSource": {"kind": "stray", "county": "Lane"},
		"litterName": null,
		"physical": {"breed": "Mix", "dateOfBirth": null, "markings": "white socks"},
		"details": {"status": "hold", "kennelCard": 12}
	}`
	var pet Pet
	require.NoError(t, json.Unmarshal([]byte(record), &pet))
	pet.Name = "Biscuit II"
	pet.Details.Status = StatusAvailable

	payload, err := json.Marshal(pet.Profile)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))

	require.Equal(t, "Biscuit II", out["name"])
	require.Equal(t, map[string]any{"kind": "stray", "county": "Lane"}, out["intakeSource"])
	require.Contains(t, out, "litterName")
	require.Nil(t, out["litterName"])
	require.NotContains(t, out, "updatedAt")

	physical := out["physical"].(map[string]any)
	require.Equal(t, "white socks", physical["markings"])
	require.Contains(t, physical, "dateOfBirth")
	require.Nil(t, physical["dateOfBirth"])

	details := out["details"].(map[string]any)
	require.Equal(t, "available", details["status"])
	require.Equal(t, float64(12), details["kennelCard"])

	full, err := json.Marshal(pet)
	require.NoError(t, err)
	var again Pet
	require.NoError(t, json.Unmarshal(full, &again))
	require.Equal(t, "p1", again.ID)
	require.Equal(t, "2025-02-01T00:00:00Z", again.UpdatedAt)
	require.Equal(t, "Biscuit II", again.Name)
}

func TestProfileDropsClearedKnownFields(t *testing.T) {
	var pet Pet
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Biscuit","litterName":"Spring"}`), &pet))
	pet.LitterName = nil

	payload, err := json.Marshal(pet.Profile)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))
	require.NotContains(t, out, "litterName")
}

func TestProfileOmitsServerManagedFields(t *testing.T) {
	var pet Pet
	require.NoError(t, json.Unmarshal([]byte(sampleRecord), &pet))
	require.Equal(t, "p1", pet.ID)
	require.Equal(t, StatusAvailable, pet.Status())
	require.True(t, pet.Settings.IsSpotlightFeatured)

	payload, err := json.Marshal(pet.Profile)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out))

	for _, key := range []string{"id", "createdAt", "updatedAt"} {
		require.NotContains(t, out, key)
	}
	require.Equal(t, "Biscuit", out["name"])
	medical, ok := out["medical"].(map[string]any)
	require.True(t, ok, "pass-through sections survive")
	require.Equal(t, true, medical["spayedOrNeutered"])
}

func TestValidate(t *testing.T) {
	pet := Pet{ID: " p1 ", Profile: Profile{Name: "Biscuit", Details: Details{Status: StatusHold}}}
	require.NoError(t, pet.Validate())
	require.Equal(t, "p1", pet.ID)

	require.ErrorIs(t, (&Pet{ID: "  ", Profile: Profile{Name: "x"}}).Validate(), ErrEmptyID)
	require.NoError(t, (&Pet{ID: "p"}).Validate(), "an empty name is left for the backend to reject")
	require.NoError(t, (&Pet{ID: "p", Profile: Profile{Details: Details{Status: "sold"}}}).Validate())
}

func TestSpotlight(t *testing.T) {
	var pets []Pet
	for i, featured := range []bool{true, false, true, true, true, true} {
		pets = append(pets, Pet{ID: string(rune('a' + i)), Profile: Profile{Settings: Settings{IsSpotlightFeatured: featured}}})
	}
	got := Spotlight(pets, SpotlightLimit)
	require.Len(t, got, 4)
	require.Equal(t, []string{"a", "c", "d", "e"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
	require.Empty(t, Spotlight(nil, SpotlightLimit))
}
