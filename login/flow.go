// Package login drives the login form: validation, a single in-flight
// submission to the auth gateway, and the session commit on success.
package login

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/session"
)

// Gateway verifies credentials. Implementations may block; they are the
// only suspension point of a login attempt.
type Gateway interface {
	Authenticate(ctx context.Context, email, password string) (session.Identity, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, email, password string) (session.Identity, error)

func (f GatewayFunc) Authenticate(ctx context.Context, email, password string) (session.Identity, error) {
	return f(ctx, email, password)
}

// Navigator is the part of the router the flow needs after a successful
// login.
type Navigator interface {
	Navigate(path string) (route.Resolution, error)
}

// State is a step of the per-attempt state machine.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Credentials is one form submission.
type Credentials struct {
	Email    string
	Password string
}

// Status is what the login view renders.
type Status struct {
	State   State
	Loading bool
	Email   string
	Error   string
	// Outcome is the terminal state of the last completed attempt, or
	// StateIdle if none has completed.
	Outcome State
}

// Flow is the login form controller of one shell instance.
type Flow struct {
	gateway    Gateway
	sessions   *session.Store
	nav        Navigator
	redirectTo string
	logger     *slog.Logger

	mu      sync.Mutex
	state   State
	loading bool
	email   string
	errMsg  string
	outcome State
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// NewFlow returns an idle flow that commits to sessions and navigates to
// redirectTo after a successful login.
func NewFlow(gateway Gateway, sessions *session.Store, nav Navigator, redirectTo string, opts ...Option) *Flow {
	f := &Flow{
		gateway:    gateway,
		sessions:   sessions,
		nav:        nav,
		redirectTo: redirectTo,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	return f
}

// Status returns the current form state.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Status{
		State:   f.state,
		Loading: f.loading,
		Email:   f.email,
		Error:   f.errMsg,
		Outcome: f.outcome,
	}
}

// ClearError drops the displayed error, as when the user edits a field.
func (f *Flow) ClearError() {
	f.mu.Lock()
	f.errMsg = ""
	f.mu.Unlock()
}

// Submit runs one login attempt. It returns nil after the session has been
// committed and the navigator moved to the default path.
func (f *Flow) Submit(ctx context.Context, creds Credentials) error {
	if err := f.begin(creds); err != nil {
		return err
	}
	// begin set loading; every path below must clear it.
	var succeeded bool
	defer func() { f.finish(succeeded) }()

	identity, err := f.authenticate(ctx, creds)
	if err != nil {
		f.logger.Info("login rejected", slog.String("email", creds.Email), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	// The gateway's address is canonical when it returns one.
	email := identity.Email
	if email == "" {
		email = creds.Email
	}
	f.sessions.Login(email, DisplayName(identity, email))
	succeeded = true

	if _, err := f.nav.Navigate(f.redirectTo); err != nil {
		// The session is committed; the next navigation will settle.
		f.logger.Warn("post-login navigation failed", slog.Any("error", err))
	}
	return nil
}

func (f *Flow) begin(creds Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loading {
		return ErrSubmitInProgress
	}
	f.email = creds.Email
	f.state = StateValidating

	var missing []string
	if creds.Email == "" {
		missing = append(missing, "email")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		f.errMsg = MessageMissingFields
		f.state = StateIdle
		return &ValidationError{Fields: missing}
	}

	f.state = StateSubmitting
	f.loading = true
	f.errMsg = ""
	return nil
}

func (f *Flow) finish(succeeded bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if succeeded {
		f.outcome = StateSucceeded
		f.errMsg = ""
	} else {
		f.outcome = StateFailed
		f.errMsg = MessageFailed
	}
	f.loading = false
	f.state = StateIdle
}

// authenticate calls the gateway, turning a panic into an error.
func (f *Flow) authenticate(ctx context.Context, creds Credentials) (id session.Identity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return f.gateway.Authenticate(ctx, creds.Email, creds.Password)
}

// DefaultDisplayName is shown when neither the gateway nor the email
// yields a name.
const DefaultDisplayName = "User"

// DisplayName picks the name shown in the header: the gateway's display
// name, else the local part of the email.
func DisplayName(id session.Identity, email string) string {
	if name := strings.TrimSpace(id.DisplayName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return DefaultDisplayName
}
