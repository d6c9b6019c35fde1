package route

import (
	"fmt"

	"github.com/jmcleod/adminshell/session"
)

// Action is the kind of a guard decision.
type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the outcome of one guard evaluation. For Allow, Path is the
// admitted path and View its view; for Redirect, Path is the target.
type Decision struct {
	Action Action
	Path   string
	View   string
}

// AllowView admits r.
func AllowView(r Route) Decision {
	return Decision{Action: Allow, Path: r.Path, View: r.View}
}

// RedirectTo sends the navigation to p.
func RedirectTo(p string) Decision {
	return Decision{Action: Redirect, Path: p}
}

// Decide maps a session and a requested path to a decision. It is pure and
// does no I/O.
func Decide(s session.Session, requested string, t *Table) Decision {
	r, ok := t.Lookup(requested)
	switch {
	case !ok:
		return RedirectTo(t.cfg.RootPath)
	case !r.Protected:
		return AllowView(r)
	case !s.Authenticated:
		return RedirectTo(t.cfg.LoginPath)
	case r.Index:
		return RedirectTo(t.cfg.DefaultPath)
	default:
		return AllowView(r)
	}
}
