package route

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmcleod/adminshell/session"
)

// ErrRedirectLoop is returned when a navigation does not settle within the
// table's bound. Validated tables never produce it.
var ErrRedirectLoop = errors.New("redirect loop")

// Resolution is the route mounted by a navigation.
type Resolution struct {
	Requested string
	Path      string
	View      string
	// Redirects lists the intermediate redirect targets, in order.
	Redirects []string
}

// Redirected reports whether the mounted path differs from the requested
// one.
func (r Resolution) Redirected() bool {
	return r.Path != Clean(r.Requested)
}

// Router mounts views for navigation requests, consulting the guard on
// every step, and keeps its active route valid when the session changes.
type Router struct {
	table    *Table
	sessions *session.Store

	mu     sync.Mutex
	active Resolution

	unsubscribe func()
}

// NewRouter returns a router over table reading sessions. The router starts
// on the table's root path.
func NewRouter(table *Table, sessions *session.Store) *Router {
	r := &Router{table: table, sessions: sessions}
	res, _ := r.resolve(sessions.Snapshot(), table.RootPath())
	r.active = res
	r.unsubscribe = sessions.Subscribe(r.sessionChanged)
	return r
}

// Navigate resolves p against the current session and mounts the result.
// The snapshot and the mount happen under one lock, so a session change
// that lands mid-navigation re-evaluates the mounted result rather than
// being overwritten by it.
func (r *Router) Navigate(p string) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.resolve(r.sessions.Snapshot(), p)
	if err != nil {
		return Resolution{}, err
	}
	r.active = res
	return res, nil
}

// Active returns the mounted route.
func (r *Router) Active() Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Table returns the router's route table.
func (r *Router) Table() *Table {
	return r.table
}

// Close detaches the router from its session store.
func (r *Router) Close() {
	r.unsubscribe()
}

// Check evaluates p against the current session without mounting it.
func (r *Router) Check(p string) Decision {
	return Decide(r.sessions.Snapshot(), p, r.table)
}

func (r *Router) sessionChanged(s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.resolve(s, r.active.Path)
	if err != nil {
		return
	}
	r.active = res
}

func (r *Router) resolve(s session.Session, p string) (Resolution, error) {
	res := Resolution{Requested: p}
	cur := Clean(p)
	limit := len(r.table.routes) + 1
	for range limit + 1 {
		d := Decide(s, cur, r.table)
		if d.Action == Allow {
			res.Path = d.Path
			res.View = d.View
			return res, nil
		}
		res.Redirects = append(res.Redirects, d.Path)
		cur = d.Path
	}
	return Resolution{}, fmt.Errorf("navigating to %s: %w", p, ErrRedirectLoop)
}
