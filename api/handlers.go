package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/web"
)

// Page navigates the client's router to the request path. Guard redirects
// become 303 responses to the final path; allowed views are rendered.
func (a *API) Page(w http.ResponseWriter, r *http.Request) {
	c := clientFromContext(r.Context())
	res, err := c.Shell.Router.Navigate(r.URL.Path)
	if err != nil {
		writeInternalError(w, a.logger, "navigation failed", err)
		return
	}
	if res.Path != r.URL.Path {
		http.Redirect(w, r, res.Path, http.StatusSeeOther)
		return
	}
	a.render(w, r, c, res, http.StatusOK)
}

// SubmitLogin runs the login form through the client's login flow.
func (a *API) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	c := clientFromContext(r.Context())
	creds := login.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	err := c.Shell.Login.Submit(r.Context(), creds)
	a.auditLogin(r, c, creds.Email, err)
	if err == nil {
		http.Redirect(w, r, c.Shell.Router.Active().Path, http.StatusSeeOther)
		return
	}
	status := loginStatus(err)
	if status == http.StatusInternalServerError {
		writeInternalError(w, a.logger, "login failed", err)
		return
	}
	a.renderLogin(w, c, status)
}

// Logout signs the client out and sends it to the login view.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	c := clientFromContext(r.Context())
	c.Shell.Logout()
	a.audit.logClient(AuditLogout, r, c.ID)
	http.Redirect(w, r, c.Shell.Router.Active().Path, http.StatusSeeOther)
}

func (a *API) auditLogin(r *http.Request, c *Client, email string, err error) {
	event := AuditLoginSuccess
	switch {
	case err == nil:
	case errors.Is(err, login.ErrValidation):
		event = AuditLoginInvalid
	case errors.Is(err, login.ErrSubmitInProgress):
		event = AuditLoginInProgress
	default:
		event = AuditLoginFailure
	}
	a.audit.logLogin(event, r, c.ID, email, err)
}

func (a *API) render(w http.ResponseWriter, r *http.Request, c *Client, res route.Resolution, status int) {
	switch res.View {
	case route.ViewLogin:
		a.renderLogin(w, c, status)
		// A reload shows a clean form.
		c.Shell.Login.ClearError()
	case route.ViewDashboard:
		stats, err := a.directory.Stats(r.Context())
		if err != nil {
			writeInternalError(w, a.logger, "failed to load dashboard", err)
			return
		}
		page := web.DashboardPage{
			Chrome: a.chrome(c, res, "Dashboard"),
			Cards:  a.renderer.StatCards(stats),
		}
		a.writePage(w, status, func(w io.Writer) error { return a.renderer.Dashboard(w, page) })
	case route.ViewUsers:
		users, err := a.directory.Users(r.Context())
		if err != nil {
			writeInternalError(w, a.logger, "failed to load users", err)
			return
		}
		page := web.UsersPage{
			Chrome: a.chrome(c, res, "Users"),
			Users:  users,
		}
		a.writePage(w, status, func(w io.Writer) error { return a.renderer.Users(w, page) })
	default:
		writeError(w, http.StatusNotFound, "no view for "+res.Path)
	}
}

func (a *API) renderLogin(w http.ResponseWriter, c *Client, status int) {
	st := c.Shell.Login.Status()
	page := web.LoginPage{
		CSRFToken: c.CSRFToken,
		Email:     st.Email,
		Error:     st.Error,
		Loading:   st.Loading,
	}
	a.writePage(w, status, func(w io.Writer) error { return a.renderer.Login(w, page) })
}

// writePage renders into a buffer first so a template failure can still
// become a 500.
func (a *API) writePage(w http.ResponseWriter, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeInternalError(w, a.logger, "failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (a *API) chrome(c *Client, res route.Resolution, title string) web.Chrome {
	var nav []web.NavItem
	for _, item := range []struct{ view, label string }{
		{route.ViewDashboard, "Dashboard"},
		{route.ViewUsers, "Users"},
	} {
		if p, ok := a.table.PathForView(item.view); ok {
			nav = append(nav, web.NavItem{Path: p, Label: item.label, Active: p == res.Path})
		}
	}
	return web.Chrome{
		Title:     title,
		UserName:  c.Shell.UserName(),
		CSRFToken: c.CSRFToken,
		Nav:       nav,
	}
}
