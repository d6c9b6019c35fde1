// Package session holds the authentication state of a shell instance.
package session

import "sync"

// Identity describes the signed-in user.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Session is a point-in-time copy of the authentication state.
// Authenticated is true if and only if Identity is non-nil.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"user,omitempty"`
}

// Anonymous is the state every store starts in.
var Anonymous = Session{}

// Observer receives the new session after every state transition.
type Observer func(Session)

// Store owns the Session. All access goes through its methods; callers only
// ever see copies.
//
// Mutations notify observers synchronously, in subscription order, before
// Login or Logout returns. Observers may read the store but must not call
// Login or Logout.
type Store struct {
	mu       sync.RWMutex
	identity *Identity

	// notifyMu serializes a mutation together with its notifications so
	// observers see transitions in the order they happened.
	notifyMu  sync.Mutex
	observers []*subscription
}

type subscription struct {
	fn Observer
}

// NewStore returns a store in the Anonymous state.
func NewStore() *Store {
	return &Store{}
}

// Login commits an authenticated identity. It always succeeds; credential
// checks happen before it is called.
func (s *Store) Login(email, displayName string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.identity = &Identity{Email: email, DisplayName: displayName}
	snap := s.snapshotLocked()
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, snap)
}

// Logout clears the identity. Calling it while Anonymous is a no-op and
// does not notify.
func (s *Store) Logout() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	snap := s.snapshotLocked()
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, snap)
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// CurrentUser returns the signed-in identity, if any.
func (s *Store) CurrentUser() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for future transitions and returns a function that
// removes it. The returned function is safe to call more than once.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	s.mu.Lock()
	s.observers = append(s.observers, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.observers {
				if o == sub {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) snapshotLocked() Session {
	if s.identity == nil {
		return Anonymous
	}
	id := *s.identity
	return Session{Authenticated: true, Identity: &id}
}

func (s *Store) observersLocked() []*subscription {
	return append([]*subscription(nil), s.observers...)
}

func notify(observers []*subscription, snap Session) {
	for _, o := range observers {
		// Each observer gets its own copy of the identity.
		sn := snap
		if snap.Identity != nil {
			id := *snap.Identity
			sn.Identity = &id
		}
		o.fn(sn)
	}
}
