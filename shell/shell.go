// Package shell assembles one client's session, router and login flow.
package shell

import (
	"log/slog"

	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/session"
)

// Shell is the state of one admin shell client. It starts Anonymous on the
// login view.
type Shell struct {
	Sessions *session.Store
	Router   *route.Router
	Login    *login.Flow
}

// New builds a shell over table, authenticating through gw.
func New(table *route.Table, gw login.Gateway, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := session.NewStore()
	router := route.NewRouter(table, store)
	flow := login.NewFlow(gw, store, router, table.DefaultPath(), login.WithLogger(logger))
	return &Shell{Sessions: store, Router: router, Login: flow}
}

// Logout signs the user out; the router moves to the login view before it
// returns.
func (s *Shell) Logout() {
	s.Sessions.Logout()
}

// Close releases the shell's subscriptions.
func (s *Shell) Close() {
	s.Router.Close()
}

// UserName is the name shown in the header.
func (s *Shell) UserName() string {
	if id, ok := s.Sessions.CurrentUser(); ok {
		return login.DisplayName(id, id.Email)
	}
	return login.DefaultDisplayName
}
