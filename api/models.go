package api

import "github.com/jmcleod/adminshell/directory"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the JSON body for POST /session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the signed-in identity.
type UserInfo struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// SessionResponse is returned from the /session endpoints.
type SessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserInfo `json:"user,omitempty"`
	ActivePath    string    `json:"active_path"`
}

// LoginErrorResponse is returned when a login attempt is rejected.
type LoginErrorResponse struct {
	Error   string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
	Loading bool     `json:"loading"`
}

// StatsResponse is returned from GET /dashboard/stats.
type StatsResponse struct {
	TotalUsers     int   `json:"total_users"`
	TotalProjects  int   `json:"total_projects"`
	ActiveProjects int   `json:"active_projects"`
	Revenue        int64 `json:"revenue"`
}

// ListUsersResponse is returned from GET /users.
type ListUsersResponse struct {
	Users []directory.User `json:"users"`
}
