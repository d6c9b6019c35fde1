package route

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/adminshell/session"
)

var authed = session.Session{
	Authenticated: true,
	Identity:      &session.Identity{Email: "a@x.com", DisplayName: "A"},
}

func TestDecide(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name    string
		session session.Session
		path    string
		want    Decision
	}{
		{"AnonymousProtected", session.Anonymous, "/dashboard", RedirectTo("/login")},
		{"AuthenticatedProtected", authed, "/dashboard", Decision{Action: Allow, Path: "/dashboard", View: ViewDashboard}},
		{"AuthenticatedUsers", authed, "/users", Decision{Action: Allow, Path: "/users", View: ViewUsers}},
		{"AnonymousLogin", session.Anonymous, "/login", Decision{Action: Allow, Path: "/login", View: ViewLogin}},
		{"AuthenticatedLogin", authed, "/login", Decision{Action: Allow, Path: "/login", View: ViewLogin}},
		{"AnonymousIndex", session.Anonymous, "/", RedirectTo("/login")},
		{"AuthenticatedIndex", authed, "/", RedirectTo("/dashboard")},
		{"AnonymousUnknown", session.Anonymous, "/nope", RedirectTo("/")},
		{"AuthenticatedUnknown", authed, "/nope/deeper", RedirectTo("/")},
		{"TrailingSlash", authed, "/users/", Decision{Action: Allow, Path: "/users", View: ViewUsers}},
		{"DotSegments", authed, "/users/../dashboard", Decision{Action: Allow, Path: "/dashboard", View: ViewDashboard}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.session, tt.path, table))
		})
	}
}

func TestNewTableRejectsBadConfiguration(t *testing.T) {
	cfg := Config{LoginPath: "/login", DefaultPath: "/home", RootPath: "/"}
	login := Route{Path: "/login", View: ViewLogin}
	index := Route{Path: "/", Protected: true, Index: true}
	home := Route{Path: "/home", Protected: true, View: "home"}

	tests := []struct {
		name   string
		cfg    Config
		routes []Route
	}{
		{"RelativePath", cfg, []Route{login, index, home, {Path: "home2", View: "x"}}},
		{"Duplicate", cfg, []Route{login, index, home, home}},
		{"MissingLogin", cfg, []Route{index, home}},
		{"ProtectedLogin", cfg, []Route{{Path: "/login", Protected: true, View: ViewLogin}, index, home}},
		{"MissingDefault", cfg, []Route{login, index}},
		{"UnprotectedDefault", cfg, []Route{login, index, {Path: "/home", View: "home"}}},
		{"IndexDefault", Config{LoginPath: "/login", DefaultPath: "/", RootPath: "/"}, []Route{login, index}},
		{"MissingRoot", cfg, []Route{login, home}},
		{"UnprotectedIndex", cfg, []Route{login, {Path: "/", Index: true}, home}},
		{"MissingView", cfg, []Route{login, index, home, {Path: "/blank", Protected: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cfg, tt.routes...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRouteConfiguration)
			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestMustTablePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustTable(Config{LoginPath: "/login", DefaultPath: "/d", RootPath: "/"})
	})
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, "/login", table.LoginPath())
	assert.Equal(t, "/dashboard", table.DefaultPath())
	assert.Equal(t, "/", table.RootPath())
	assert.Equal(t, []string{"/login", "/", "/dashboard", "/users"}, table.Paths())

	p, ok := table.PathForView(ViewUsers)
	require.True(t, ok)
	assert.Equal(t, "/users", p)
}

func TestRouterNavigate(t *testing.T) {
	store := session.NewStore()
	r := NewRouter(DefaultTable(), store)
	defer r.Close()

	assert.Equal(t, "/login", r.Active().Path, "router starts on the login view when anonymous")

	t.Run("UnknownPathAnonymousEndsAtLogin", func(t *testing.T) {
		res, err := r.Navigate("/does-not-exist")
		require.NoError(t, err)
		assert.Equal(t, "/login", res.Path)
		assert.Equal(t, ViewLogin, res.View)
		assert.Equal(t, []string{"/", "/login"}, res.Redirects)
		assert.True(t, res.Redirected())
	})

	t.Run("ProtectedAnonymous", func(t *testing.T) {
		res, err := r.Navigate("/users")
		require.NoError(t, err)
		assert.Equal(t, "/login", res.Path)
	})

	store.Login("a@x.com", "A")

	t.Run("IndexAuthenticated", func(t *testing.T) {
		res, err := r.Navigate("/")
		require.NoError(t, err)
		assert.Equal(t, "/dashboard", res.Path)
		assert.Equal(t, []string{"/dashboard"}, res.Redirects)
	})

	t.Run("UnknownPathAuthenticatedEndsAtDefault", func(t *testing.T) {
		res, err := r.Navigate("/missing")
		require.NoError(t, err)
		assert.Equal(t, "/dashboard", res.Path)
	})

	t.Run("Direct", func(t *testing.T) {
		res, err := r.Navigate("/users")
		require.NoError(t, err)
		assert.Equal(t, "/users", res.Path)
		assert.False(t, res.Redirected())
		assert.Equal(t, res, r.Active())
	})
}

func TestRouterReevaluatesOnSessionChange(t *testing.T) {
	store := session.NewStore()
	r := NewRouter(DefaultTable(), store)
	defer r.Close()

	store.Login("a@x.com", "A")
	_, err := r.Navigate("/users")
	require.NoError(t, err)

	store.Logout()
	assert.Equal(t, "/login", r.Active().Path, "logout must unmount protected views before returning")
}

func TestRouterNavigateRacingLogout(t *testing.T) {
	store := session.NewStore()
	r := NewRouter(DefaultTable(), store)
	defer r.Close()

	for range 2000 {
		store.Login("a@x.com", "A")
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Navigate("/users")
		}()
		store.Logout()
		wg.Wait()
		require.Equal(t, "/login", r.Active().Path, "an anonymous store never leaves a protected view mounted")
	}
}

func TestValidTablesSettleWithinTwoRedirects(t *testing.T) {
	tables := map[string]*Table{
		"Default": DefaultTable(),
		"RootIsLogin": MustTable(
			Config{LoginPath: "/login", DefaultPath: "/home", RootPath: "/login"},
			Route{Path: "/login", View: ViewLogin},
			Route{Path: "/home", Protected: true, View: ViewDashboard},
		),
		"ProtectedRootView": MustTable(
			Config{LoginPath: "/login", DefaultPath: "/home", RootPath: "/"},
			Route{Path: "/login", View: ViewLogin},
			Route{Path: "/", Protected: true, View: ViewUsers},
			Route{Path: "/home", Protected: true, View: ViewDashboard},
		),
	}
	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			r := &Router{table: table}
			for _, s := range []session.Session{session.Anonymous, authed} {
				for _, p := range append(table.Paths(), "/undeclared") {
					res, err := r.resolve(s, p)
					require.NoError(t, err)
					assert.LessOrEqual(t, len(res.Redirects), 2, "%s authenticated=%v", p, s.Authenticated)
				}
			}
		})
	}
}

func TestRouterCheck(t *testing.T) {
	store := session.NewStore()
	r := NewRouter(DefaultTable(), store)
	defer r.Close()

	assert.Equal(t, RedirectTo("/login"), r.Check("/dashboard"))
	assert.Equal(t, "/login", r.Active().Path, "check does not mount")
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "action(7)", Action(7).String())
}
