package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/forms/sanitize"
)

const (
	VolunteerForm       = "volunteer"
	VolunteerStorageKey = "volunteer_form_state"
	VolunteerEndpoint   = "/applications/volunteer"
)

// AdultAge is the age from which volunteers sign without a parent.
const AdultAge = 21

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var birthdayLayouts = []string{"2006-01-02", "01/02/2006", time.RFC3339}

// VolunteerFields are the values of the volunteer application.
type VolunteerFields struct {
	FaxNumber             string   `json:"fax_number"`
	FirstName             string   `json:"firstName"`
	LastName              string   `json:"lastName"`
	Email                 string   `json:"email"`
	Address               string   `json:"address"`
	City                  string   `json:"city"`
	Zip                   string   `json:"zip"`
	PhoneNumber           string   `json:"phoneNumber"`
	Birthday              string   `json:"birthday"`
	Age                   *int     `json:"age"`
	Allergies             *bool    `json:"allergies"`
	EmergencyContactName  string   `json:"emergencyContactName"`
	EmergencyContactPhone string   `json:"emergencyContactPhone"`
	VolunteerExperience   string   `json:"volunteerExperience"`
	InterestReason        string   `json:"interestReason"`
	PositionPreferences   []string `json:"positionPreferences"`
	Availability          []string `json:"availability"`
	NameFull              string   `json:"nameFull"`
	SignatureData         *string  `json:"signatureData"`
	SignatureDate         string   `json:"signatureDate"`
	ParentName            string   `json:"parentName"`
	ParentSignatureData   *string  `json:"parentSignatureData"`
	ParentSignatureDate   string   `json:"parentSignatureDate"`
}

// Minor reports whether the declared age requires a parent's signature.
func (f *VolunteerFields) Minor() bool {
	return f.Age != nil && *f.Age < AdultAge
}

func volunteerDefaults() VolunteerFields {
	return VolunteerFields{
		PositionPreferences: []string{},
		Availability:        []string{},
	}
}

// ParseBirthday accepts the date formats the birthday picker produces.
func ParseBirthday(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range birthdayLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeOn returns the age in whole years of someone born on birth at now.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// VolunteerSchema is the single-page volunteer application.
func VolunteerSchema() *Schema[VolunteerFields] {
	type F = VolunteerFields
	return &Schema[F]{
		Name:       VolunteerForm,
		StorageKey: VolunteerStorageKey,
		Endpoint:   VolunteerEndpoint,
		Defaults:   volunteerDefaults,
		DemoDelay:  time.Second,
		Steps: []Step[F]{
			{
				Title: "Application",
				Rules: []Rule[F]{
					Required("First Name", func(f *F) any { return f.FirstName }),
					Required("Last Name", func(f *F) any { return f.LastName }),
					Required("Email", func(f *F) any { return f.Email }),
					Check(func(_ Env, f *F) []string {
						if f.Email != "" && !emailPattern.MatchString(f.Email) {
							return []string{"Valid Email"}
						}
						return nil
					}),
					Required("Address", func(f *F) any { return f.Address }),
					Required("City", func(f *F) any { return f.City }),
					Required("Zip Code", func(f *F) any { return f.Zip }),
					Required("Phone Number", func(f *F) any { return f.PhoneNumber }),
					Required("Birthday", func(f *F) any { return f.Birthday }),
					Check(underageWithoutAge),
					Required("Emergency Contact Name", func(f *F) any { return f.EmergencyContactName }),
					Required("Emergency Contact Phone", func(f *F) any { return f.EmergencyContactPhone }),
					Required("Interest Reason", func(f *F) any { return f.InterestReason }),
					Required("Position Preferences", func(f *F) any { return f.PositionPreferences }),
					Required("Availability", func(f *F) any { return f.Availability }),
					Required("Agreement Name", func(f *F) any { return f.NameFull }),
					Required("Agreement Date", func(f *F) any { return f.SignatureDate }),
					Required("Signature", func(f *F) any { return f.SignatureData }),
					When((*F).Minor,
						Required("Parent Name", func(f *F) any { return f.ParentName }),
						Required("Parent Date", func(f *F) any { return f.ParentSignatureDate }),
						Required("Parent Signature", func(f *F) any { return f.ParentSignatureData }),
					),
				},
			},
		},
		Sanitize:         sanitizeVolunteer,
		Payload:          volunteerPayload,
		RejectionMessage: volunteerRejection,
		AcceptedError: func(body []byte) (string, bool) {
			var parsed messageBody
			if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error == "" {
				return "", false
			}
			return parsed.Error, true
		},
	}
}

// underageWithoutAge asks for the age when the birthday puts the applicant under 21.
func underageWithoutAge(env Env, f *VolunteerFields) []string {
	if f.Age != nil || f.Birthday == "" {
		return nil
	}
	birth, ok := ParseBirthday(f.Birthday)
	if !ok {
		return nil
	}
	now := env.Now
	if now.IsZero() {
		now = time.Now()
	}
	if AgeOn(birth, now) < AdultAge {
		return []string{"Age"}
	}
	return nil
}

func sanitizeVolunteer(f *VolunteerFields) {
	f.FirstName = sanitize.Name(f.FirstName)
	f.LastName = sanitize.Name(f.LastName)
	f.Address = sanitize.Address(f.Address)
	f.City = sanitize.City(f.City)
	f.Zip = sanitize.Zip(f.Zip)
	f.PhoneNumber = sanitize.Phone(f.PhoneNumber)
	f.EmergencyContactName = sanitize.Name(f.EmergencyContactName)
	f.EmergencyContactPhone = sanitize.Phone(f.EmergencyContactPhone)
	f.ParentName = sanitize.Name(f.ParentName)
}

func volunteerPayload(_ Env, f VolunteerFields) (any, error) {
	body, err := toMap(f)
	if err != nil {
		return nil, err
	}
	if f.Age != nil && *f.Age >= AdultAge {
		delete(body, "parentName")
		delete(body, "parentSignatureData")
		delete(body, "parentSignatureDate")
	}
	return body, nil
}

func volunteerRejection(status int, body []byte) string {
	if status == http.StatusBadRequest || status >= http.StatusInternalServerError {
		return "There was an error on the server. Please try again later."
	}
	var parsed messageBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return fmt.Sprintf("Server Error (%d)", status)
}
