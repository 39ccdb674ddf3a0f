package ports

import "context"

// Navigator owns the current view of one client.
type Navigator interface {
	CurrentPath() string
	Navigate(ctx context.Context, path string)
}

// Notifier surfaces a short message to the user.
type Notifier interface {
	ShowToast(ctx context.Context, message, kind string)
}

// NoopNavigator stays on the public home view and ignores navigation.
var NoopNavigator Navigator = noopNavigator{}

// NoopNotifier drops messages.
var NoopNotifier Notifier = noopNotifier{}

type noopNavigator struct{}

func (noopNavigator) CurrentPath() string                 { return "/" }
func (noopNavigator) Navigate(_ context.Context, _ string) {}

type noopNotifier struct{}

func (noopNotifier) ShowToast(_ context.Context, _, _ string) {}
