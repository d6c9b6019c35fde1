// Package route declares the shell's route table, the guard that admits or
// redirects each navigation, and the router that applies it.
package route

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/jmcleod/adminshell/session"
)

// View names rendered by the shell.
const (
	ViewLogin     = "login"
	ViewDashboard = "dashboard"
	ViewUsers     = "users"
)

// Route is one entry of the table. Index routes never render content; the
// guard sends them to the default protected path.
type Route struct {
	Path      string
	Protected bool
	Index     bool
	View      string
}

// Config names the three distinguished paths of a table.
type Config struct {
	LoginPath   string
	DefaultPath string
	RootPath    string
}

// Table is an ordered, validated set of routes. It is immutable once built.
type Table struct {
	cfg    Config
	routes []Route
	byPath map[string]int
}

// ErrRouteConfiguration is matched by every table validation failure.
var ErrRouteConfiguration = errors.New("invalid route configuration")

// ConfigError describes why a table was rejected.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("route table: %s", e.Reason)
	}
	return fmt.Sprintf("route table: %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrRouteConfiguration
}

// probePath is a path that no table may declare; it is used to check the
// fallback chain for unknown paths.
const probePath = "/\x00undeclared"

// NewTable builds and validates a table. A non-nil error means the table
// must not be used.
func NewTable(cfg Config, routes ...Route) (*Table, error) {
	t := &Table{
		cfg:    Config{LoginPath: Clean(cfg.LoginPath), DefaultPath: Clean(cfg.DefaultPath), RootPath: Clean(cfg.RootPath)},
		routes: make([]Route, 0, len(routes)),
		byPath: make(map[string]int, len(routes)),
	}
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, &ConfigError{Path: r.Path, Reason: "path must be absolute"}
		}
		r.Path = Clean(r.Path)
		if _, dup := t.byPath[r.Path]; dup {
			return nil, &ConfigError{Path: r.Path, Reason: "declared more than once"}
		}
		if r.Index && !r.Protected {
			return nil, &ConfigError{Path: r.Path, Reason: "index route must be protected"}
		}
		if !r.Index && r.View == "" {
			return nil, &ConfigError{Path: r.Path, Reason: "route has no view"}
		}
		t.byPath[r.Path] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTable is NewTable for static declarations; it panics on error.
func MustTable(cfg Config, routes ...Route) *Table {
	t, err := NewTable(cfg, routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable is the admin shell's route declaration.
func DefaultTable() *Table {
	return MustTable(
		Config{LoginPath: "/login", DefaultPath: "/dashboard", RootPath: "/"},
		Route{Path: "/login", View: ViewLogin},
		Route{Path: "/", Protected: true, Index: true},
		Route{Path: "/dashboard", Protected: true, View: ViewDashboard},
		Route{Path: "/users", Protected: true, View: ViewUsers},
	)
}

func (t *Table) validate() error {
	login, ok := t.Lookup(t.cfg.LoginPath)
	switch {
	case !ok:
		return &ConfigError{Path: t.cfg.LoginPath, Reason: "login path is not declared"}
	case login.Protected:
		return &ConfigError{Path: t.cfg.LoginPath, Reason: "login path must not be protected"}
	}
	def, ok := t.Lookup(t.cfg.DefaultPath)
	switch {
	case !ok:
		return &ConfigError{Path: t.cfg.DefaultPath, Reason: "default path is not declared"}
	case !def.Protected:
		return &ConfigError{Path: t.cfg.DefaultPath, Reason: "default path must be protected"}
	case def.Index:
		return &ConfigError{Path: t.cfg.DefaultPath, Reason: "default path must not be an index"}
	}
	if _, ok := t.Lookup(t.cfg.RootPath); !ok {
		return &ConfigError{Path: t.cfg.RootPath, Reason: "root path is not declared"}
	}

	// With the checks above every start settles within two redirects, so
	// resolve cannot report a cycle for a table that reaches this point.
	// The simulation asserts that for both session states.
	authed := session.Session{Authenticated: true, Identity: &session.Identity{}}
	starts := append(t.Paths(), probePath)
	for _, s := range []session.Session{session.Anonymous, authed} {
		for _, p := range starts {
			if _, err := t.resolve(s, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve follows guard decisions from p until one allows.
func (t *Table) resolve(s session.Session, p string) (Decision, error) {
	seen := make(map[string]bool, len(t.routes)+1)
	for {
		d := Decide(s, p, t)
		if d.Action == Allow {
			return d, nil
		}
		if seen[p] {
			return Decision{}, &ConfigError{Path: p, Reason: "redirect cycle"}
		}
		seen[p] = true
		p = d.Path
	}
}

// Lookup finds the route declared for p.
func (t *Table) Lookup(p string) (Route, bool) {
	i, ok := t.byPath[Clean(p)]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Routes returns the table entries in declaration order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Paths returns the declared paths in declaration order.
func (t *Table) Paths() []string {
	out := make([]string, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.Path
	}
	return out
}

// PathForView returns the first route rendering view.
func (t *Table) PathForView(view string) (string, bool) {
	for _, r := range t.routes {
		if r.View == view {
			return r.Path, true
		}
	}
	return "", false
}

func (t *Table) LoginPath() string   { return t.cfg.LoginPath }
func (t *Table) DefaultPath() string { return t.cfg.DefaultPath }
func (t *Table) RootPath() string    { return t.cfg.RootPath }

// Clean normalizes a request path: rooted, no dot segments, no trailing
// slash.
func Clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
