package domain

import "strings"

const (
	LoginPath  = "/login"
	AdminPath  = "/admin"
	HomePath   = "/"
	loginAPI   = "/api/login"
	logoutAPI  = "/api/users/logout"
	adminRoute = "/admin"
)

// SessionExpiredMessage is shown when an admin session stops being accepted by the backend.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// RequiresAuth reports whether a view path is part of the admin area.
func RequiresAuth(path string) bool {
	path = cleanPath(path)
	return path == adminRoute || strings.HasPrefix(path, adminRoute+"/")
}

// IsAuthEndpoint reports whether an API path is the login or logout endpoint, whose 401s are
// answers rather than expiry signals.
func IsAuthEndpoint(path string) bool {
	path = cleanPath(path)
	return strings.HasSuffix(path, loginAPI) || strings.HasSuffix(path, logoutAPI)
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
