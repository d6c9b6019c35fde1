// Package api serves the admin shell over HTTP: server-rendered pages
// driven by each client's shell instance, plus a small JSON API.
package api

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/adminshell/directory"
	"github.com/jmcleod/adminshell/internal/util"
	"github.com/jmcleod/adminshell/login"
	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/web"
)

// DefaultIdleTimeout evicts clients that have not been seen for this long.
const DefaultIdleTimeout = 30 * time.Minute

const cookieSecretSize = 32

// API holds the dependencies needed by the HTTP handlers.
type API struct {
	table     *route.Table
	gateway   login.Gateway
	directory *directory.Directory
	renderer  *web.Renderer
	static    http.Handler

	clients      ClientStore
	idleTimeout  time.Duration
	cookieSecret []byte
	tokens       tokenSigner

	maxCreations   int
	creationWindow time.Duration
	creations      *clientCreationLimiter

	logger *slog.Logger
	audit  *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for handlers and audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// WithIdleTimeout sets how long an unused client survives. 0 disables
// eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(a *API) {
		a.idleTimeout = d
	}
}

// WithCookieSecret sets the HMAC key for client cookies. Without it a
// random key is drawn, so cookies do not survive a restart.
func WithCookieSecret(secret []byte) Option {
	return func(a *API) {
		a.cookieSecret = util.CopyBytes(secret)
	}
}

// WithClientCreationLimit caps how many clients one remote address may
// start per window. limit of 0 disables it.
func WithClientCreationLimit(limit int, window time.Duration) Option {
	return func(a *API) {
		a.maxCreations = limit
		a.creationWindow = window
	}
}

// WithClientStore replaces the in-memory client registry.
func WithClientStore(store ClientStore) Option {
	return func(a *API) {
		a.clients = store
	}
}

// New creates a new API instance.
func New(table *route.Table, gateway login.Gateway, dir *directory.Directory, renderer *web.Renderer, opts ...Option) (*API, error) {
	a := &API{
		table:          table,
		gateway:        gateway,
		directory:      dir,
		renderer:       renderer,
		idleTimeout:    DefaultIdleTimeout,
		maxCreations:   DefaultClientCreations,
		creationWindow: DefaultClientWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	a.audit = newAuditLogger(a.logger)
	if a.clients == nil {
		a.clients = NewMemoryClientStore(a.idleTimeout)
	}
	if len(a.cookieSecret) == 0 {
		secret, err := util.RandomBytes(cookieSecretSize)
		if err != nil {
			return nil, fmt.Errorf("generating cookie secret: %w", err)
		}
		a.cookieSecret = secret
	}
	a.tokens = tokenSigner{secret: a.cookieSecret}
	a.creations = newClientCreationLimiter(a.maxCreations, a.creationWindow)

	static, err := web.Static()
	if err != nil {
		return nil, err
	}
	a.static = static
	return a, nil
}

// Router returns a chi.Router with the JSON API routes, to be mounted
// under /api/v1.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Group(func(r chi.Router) {
		r.Use(a.ClientMiddleware, a.CSRFMiddleware)
		r.Get("/session", a.GetSession)
		r.Post("/session", a.CreateSession)
		r.Delete("/session", a.DeleteSession)
		r.Get("/dashboard/stats", a.DashboardStats)
		r.Get("/users", a.ListUsers)
	})

	return r
}

// Handler returns the full shell: static assets, the JSON API under
// /api/v1 and the page routes.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	r.Handle("/static/*", a.static)
	r.Mount("/api/v1", a.Router())

	r.Group(func(r chi.Router) {
		r.Use(a.ClientMiddleware, a.CSRFMiddleware)
		r.Post("/login", a.SubmitLogin)
		r.Post("/logout", a.Logout)
		r.Get("/*", a.Page)
	})

	return r
}

// Close drops every client still registered in the default store.
func (a *API) Close() {
	if m, ok := a.clients.(*MemoryClientStore); ok {
		m.Clear()
	}
}
