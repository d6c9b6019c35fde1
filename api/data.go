package api

import (
	"errors"
	"net/http"

	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/route"
)

// GetSession reports the client's session and active route.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse(clientFromContext(r.Context())))
}

// CreateSession runs a JSON login attempt through the client's login flow.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	c := clientFromContext(r.Context())
	err := c.Shell.Login.Submit(r.Context(), login.Credentials{Email: req.Email, Password: req.Password})
	a.auditLogin(r, c, req.Email, err)
	if err == nil {
		writeJSON(w, http.StatusOK, sessionResponse(c))
		return
	}

	status := loginStatus(err)
	if status == http.StatusInternalServerError {
		writeInternalError(w, a.logger, "login failed", err)
		return
	}
	st := c.Shell.Login.Status()
	resp := LoginErrorResponse{Error: st.Error, Loading: st.Loading}
	var verr *login.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if resp.Error == "" {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// DeleteSession signs the client out.
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	c := clientFromContext(r.Context())
	c.Shell.Logout()
	a.audit.logClient(AuditLogout, r, c.ID)
	writeJSON(w, http.StatusOK, sessionResponse(c))
}

// DashboardStats returns the dashboard counters.
func (a *API) DashboardStats(w http.ResponseWriter, r *http.Request) {
	if !a.admit(w, r, route.ViewDashboard) {
		return
	}
	s, err := a.directory.Stats(r.Context())
	if err != nil {
		writeInternalError(w, a.logger, "failed to load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalUsers:     s.TotalUsers,
		TotalProjects:  s.TotalProjects,
		ActiveProjects: s.ActiveProjects,
		Revenue:        s.Revenue,
	})
}

// ListUsers returns the user directory.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !a.admit(w, r, route.ViewUsers) {
		return
	}
	users, err := a.directory.Users(r.Context())
	if err != nil {
		writeInternalError(w, a.logger, "failed to load users", err)
		return
	}
	writeJSON(w, http.StatusOK, ListUsersResponse{Users: users})
}

// admit applies the route guard for the page that shows view, without
// moving the client's active route.
func (a *API) admit(w http.ResponseWriter, r *http.Request, view string) bool {
	c := clientFromContext(r.Context())
	p, ok := a.table.PathForView(view)
	if !ok {
		writeError(w, http.StatusNotFound, "view not routed")
		return false
	}
	if d := c.Shell.Router.Check(p); d.Action != route.Allow {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	return true
}

func sessionResponse(c *Client) SessionResponse {
	resp := SessionResponse{ActivePath: c.Shell.Router.Active().Path}
	if id, ok := c.Shell.Sessions.CurrentUser(); ok {
		resp.Authenticated = true
		resp.User = &UserInfo{Email: id.Email, DisplayName: id.DisplayName}
	}
	return resp
}
