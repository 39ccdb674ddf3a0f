//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shelter-api"
	ConsumerName = "adoptionos-portal"

	StatePetsAvailable = "available pets exist"
	StateStaffAccount  = "staff account sam@shelter.org exists"
	StateAnonymous     = "no session cookie"
	StateAcceptsForms  = "applications are accepted"
)

const (
	StaffEmail    = "sam@shelter.org"
	StaffPassword = "pact-pass"
	StaffToken    = "pact-token"
)

// ExamplePetPayload provides stable test data for pact interactions.
func ExamplePetPayload() map[string]any {
	return map[string]any{
		"id":      "pet-101",
		"name":    "Luna",
		"species": "cat",
		"sex":     "female",
		"details": map[string]any{"status": "available"},
		"profileSettings": map[string]any{
			"isSpotlightFeatured":       true,
			"showAdditionalInformation": false,
			"showMedicalHistory":        false,
		},
	}
}

// ExampleStaffPayload is the user record returned on login.
func ExampleStaffPayload() map[string]any {
	return map[string]any{
		"ID":    7,
		"Name":  "Sam",
		"Email": StaffEmail,
		"Role":  "admin",
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
