package domain

import (
	"errors"
	"strings"
)

// CurrentVersion is the schema version of the persisted admin preferences.
const CurrentVersion = 1

// DefaultView is the admin view shown first.
const DefaultView = "dashboard"

// ErrEmptyView is returned when switching to an unnamed admin view.
var ErrEmptyView = errors.New("view name is required")

// AdminState is the admin layout preference persisted per device.
type AdminState struct {
	IsSidebarOpen bool   `json:"isSidebarOpen"`
	ActiveView    string `json:"activeView"`
	Version       int    `json:"version"`
}

// DefaultAdminState starts with the sidebar closed on the dashboard.
func DefaultAdminState() AdminState {
	return AdminState{ActiveView: DefaultView, Version: CurrentVersion}
}

// NormalizeView trims a view name and rejects empty ones.
func NormalizeView(view string) (string, error) {
	view = strings.TrimSpace(view)
	if view == "" {
		return "", ErrEmptyView
	}
	return view, nil
}

// ToastKind selects the toast style.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// ParseToastKind falls back to success for unknown kinds.
func ParseToastKind(kind string) ToastKind {
	switch k := ToastKind(kind); k {
	case ToastError, ToastInfo:
		return k
	}
	return ToastSuccess
}

// Toast is the transient notice shown to the user.
type Toast struct {
	Show    bool      `json:"show"`
	Message string    `json:"message"`
	Type    ToastKind `json:"type"`
}
