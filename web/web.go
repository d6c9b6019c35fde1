// Package web renders the shell's HTML views and serves their static
// assets. Views receive fully resolved data and never touch session state.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jmcleod/adminshell/directory"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NavItem is one sidebar link.
type NavItem struct {
	Path   string
	Label  string
	Active bool
}

// Chrome is the header and sidebar shared by protected views.
type Chrome struct {
	Lang      string
	Title     string
	UserName  string
	CSRFToken string
	Nav       []NavItem
}

// LoginPage is the data for the login view.
type LoginPage struct {
	Lang      string
	CSRFToken string
	Email     string
	Error     string
	Loading   bool
}

// StatCard is one dashboard counter.
type StatCard struct {
	Title string
	Value string
	Tone  string
}

// DashboardPage is the data for the dashboard view.
type DashboardPage struct {
	Chrome
	Cards []StatCard
}

// UsersPage is the data for the user list view.
type UsersPage struct {
	Chrome
	Users []directory.User
}

// Renderer executes the embedded templates.
type Renderer struct {
	lang      language.Tag
	printer   *message.Printer
	login     *template.Template
	dashboard *template.Template
	users     *template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocale sets the language used for number formatting and the lang
// attribute.
func WithLocale(tag language.Tag) Option {
	return func(r *Renderer) {
		r.lang = tag
	}
}

// New parses the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{lang: language.Korean}
	for _, opt := range opts {
		opt(r)
	}
	r.printer = message.NewPrinter(r.lang)

	var err error
	if r.login, err = template.ParseFS(templateFS, "templates/login.html"); err != nil {
		return nil, fmt.Errorf("parsing login template: %w", err)
	}
	if r.dashboard, err = template.ParseFS(templateFS, "templates/layout.html", "templates/dashboard.html"); err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	if r.users, err = template.ParseFS(templateFS, "templates/layout.html", "templates/users.html"); err != nil {
		return nil, fmt.Errorf("parsing users template: %w", err)
	}
	return r, nil
}

// Lang is the BCP 47 tag of the renderer's locale.
func (r *Renderer) Lang() string {
	return r.lang.String()
}

func (r *Renderer) Login(w io.Writer, p LoginPage) error {
	p.Lang = r.Lang()
	return execute(w, r.login, "login", p)
}

func (r *Renderer) Dashboard(w io.Writer, p DashboardPage) error {
	p.Lang = r.Lang()
	return execute(w, r.dashboard, "layout", p)
}

func (r *Renderer) Users(w io.Writer, p UsersPage) error {
	p.Lang = r.Lang()
	return execute(w, r.users, "layout", p)
}

// StatCards lays out the dashboard counters.
func (r *Renderer) StatCards(s directory.Stats) []StatCard {
	return []StatCard{
		{Title: "Total users", Value: r.printer.Sprintf("%d", s.TotalUsers), Tone: "primary"},
		{Title: "Total projects", Value: r.printer.Sprintf("%d", s.TotalProjects), Tone: "success"},
		{Title: "Active projects", Value: r.printer.Sprintf("%d", s.ActiveProjects), Tone: "warning"},
		{Title: "Revenue", Value: r.FormatRevenue(s.Revenue), Tone: "secondary"},
	}
}

// FormatRevenue groups digits for the locale and appends the won sign.
func (r *Renderer) FormatRevenue(amount int64) string {
	base, _ := r.lang.Base()
	if base.String() == "ko" {
		return r.printer.Sprintf("%d원", amount)
	}
	return r.printer.Sprintf("%d KRW", amount)
}

// execute renders into a buffer so a template error never leaves a
// half-written response.
func execute(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns a handler serving the embedded assets under /static/.
func Static() (http.Handler, error) {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("loading embedded web assets: %w", err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(fsys))), nil
}
