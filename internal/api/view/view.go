// Package view renders the portal's HTML pages through echo's Renderer.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// Page names accepted by Render.
const (
	Home          = "home"
	Signup        = "signup"
	Login         = "login"
	Member        = "member"
	Admin         = "admin"
	NotAuthorized = "not_authorized"
	NotFound      = "not_found"
	Message       = "message"
	NoSQL         = "nosql"
)

var pages = []string{Home, Signup, Login, Member, Admin, NotAuthorized, NotFound, Message, NoSQL}

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every template receives. Session is filled from the
// request when left nil.
type Page struct {
	Title    string
	Session  *domain.Session
	Message  string
	RetryURL string
	Users    []*domain.User
}

type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the layout together with each page.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var page Page
	switch d := data.(type) {
	case Page:
		page = d
	case *Page:
		if d != nil {
			page = *d
		}
	case nil:
	default:
		return fmt.Errorf("template %s: unsupported data %T", name, data)
	}
	if page.Session == nil {
		page.Session = session.From(c)
	}

	return t.ExecuteTemplate(w, "layout", page)
}
