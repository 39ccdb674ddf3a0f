package application

import (
	"context"

	"github.com/Apurer/adoptionos/internal/domains/ui/ports"
	"github.com/Apurer/adoptionos/internal/platform/storage"
)

// DemoModeKey is the session key of the demo switch.
const DemoModeKey = "adoption_os_demo_mode"

// Demo is the per-session demo mode switch. While enabled, wizards skip validation and simulate
// submissions.
type Demo struct {
	storage ports.Storage
}

// NewDemo reads and writes the switch through store.
func NewDemo(store ports.Storage) *Demo {
	return &Demo{storage: store}
}

// Enabled reports whether demo mode is on.
func (d *Demo) Enabled(ctx context.Context) bool {
	var value string
	return d.storage.Read(ctx, storage.ScopeSession, DemoModeKey, &value) && value == "true"
}

// Toggle switches demo mode. Turning it off removes the key.
func (d *Demo) Toggle(ctx context.Context, on bool) error {
	if !on {
		d.storage.Remove(ctx, storage.ScopeSession, DemoModeKey)
		return nil
	}
	return d.storage.Write(ctx, storage.ScopeSession, DemoModeKey, "true")
}
