// Package site serves the public marketing pages and the HTML views of the
// customer and admin portal. Pages are rendered with html/template from
// embedded templates. Portal pages are gated server-side with
// auth.RequireRole in HTML mode.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/transport"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Accounts is the part of the account service the pages use.
type Accounts interface {
	SignUp(ctx context.Context, in account.SignUpInput) (*api.Profile, error)
	SignIn(ctx context.Context, in account.SignInInput) (*account.SignInResult, error)
	ListProfiles(ctx context.Context, id *auth.Identity) ([]*api.Profile, error)
}

// Sessions writes and clears the session cookie.
type Sessions interface {
	SetCookie(w http.ResponseWriter, token string, expires time.Time)
	ClearCookie(w http.ResponseWriter)
}

// Contact accepts contact form submissions.
type Contact interface {
	Submit(ctx context.Context, form api.ContactForm, remoteAddr string) (*api.ContactMessage, error)
}

// Portal is the read side of the portal service.
type Portal interface {
	Dashboard(ctx context.Context, id *auth.Identity) (*api.Dashboard, error)
	GetProject(ctx context.Context, id *auth.Identity, projectID string) (*api.ProjectDetail, error)
	ListContactMessages(ctx context.Context, id *auth.Identity, opts api.ListOptions) (*api.List[*api.ContactMessage], error)
}

// Deps are the services behind the pages.
type Deps struct {
	Accounts Accounts
	Sessions Sessions
	Contact  Contact
	Portal   Portal
}

// pageNames lists every template under templates/ except the layout.
var pageNames = []string{
	"home", "services", "pricing", "about", "faq", "contact",
	"login", "signup", "portal", "project", "admin",
	"denied", "notfound", "error",
}

// Handler renders the site.
type Handler struct {
	content *Content
	deps    Deps
	pages   map[string]*template.Template
	static  http.Handler
	now     func() time.Time
}

// New parses the templates and returns a site handler.
func New(content *Content, deps Deps) (*Handler, error) {
	if content == nil {
		return nil, errors.New("site content is required")
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFiles,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = t
	}

	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	return &Handler{
		content: content,
		deps:    deps,
		pages:   pages,
		static:  http.StripPrefix("/static/", http.FileServerFS(assets)),
		now:     time.Now,
	}, nil
}

// Register adds the site routes to mux. The catch-all "/" renders the
// not-found page, so API routes must be registered with more specific
// patterns.
func (h *Handler) Register(mux *http.ServeMux) {
	user := auth.RequireRole(api.RoleUser, auth.HTML(http.HandlerFunc(h.denied)))
	admin := auth.RequireRole(api.RoleAdmin, auth.HTML(http.HandlerFunc(h.denied)))

	mux.Handle("GET /static/", h.static)

	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /services", h.staticPage("services", "Services"))
	mux.HandleFunc("GET /pricing", h.staticPage("pricing", "Pricing"))
	mux.HandleFunc("GET /about", h.staticPage("about", "About us"))
	mux.HandleFunc("GET /faq", h.staticPage("faq", "FAQ"))

	mux.HandleFunc("GET /contact", h.contactForm)
	mux.HandleFunc("POST /contact", h.contactSubmit)

	mux.HandleFunc("GET /login", h.loginForm)
	mux.HandleFunc("POST /login", h.loginSubmit)
	mux.HandleFunc("GET /signup", h.signupForm)
	mux.HandleFunc("POST /signup", h.signupSubmit)
	mux.HandleFunc("POST /logout", h.logout)

	mux.Handle("GET /portal", user(http.HandlerFunc(h.portal)))
	mux.Handle("GET /portal/projects/{id}", user(http.HandlerFunc(h.project)))
	mux.Handle("GET /admin", admin(http.HandlerFunc(h.admin)))

	mux.HandleFunc("/", h.notFound)
}

// page is the data every template receives.
type page struct {
	Title    string
	Path     string
	Site     *Content
	Identity *auth.Identity
	Year     int

	Error  string
	Notice string
	Next   string
	Form   map[string]string

	Data any
}

func (h *Handler) newPage(r *http.Request, title string) page {
	return page{
		Title:    title,
		Path:     r.URL.Path,
		Site:     h.content,
		Identity: auth.IdentityFromContext(r.Context()),
		Year:     h.now().Year(),
	}
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := h.pages[name]
	if !ok {
		slog.Error("unknown page template", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		slog.Error("rendering page", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	debug.Log("site", "page rendered", "name", name, "status", status, "bytes", buf.Len())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows the page matching err.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("page handler failed", "path", r.URL.Path, "error", err)
		apiErr = api.NewServerError("something went wrong on our side")
	}

	switch apiErr.Type {
	case api.ErrorTypeNotFound:
		h.notFound(w, r)
		return
	case api.ErrorTypeForbidden:
		h.denied(w, r)
		return
	}

	p := h.newPage(r, "Something went wrong")
	p.Error = apiErr.Message
	h.render(w, transport.HTTPStatusFromError(apiErr), "error", p)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notfound", h.newPage(r, "Page not found"))
}

func (h *Handler) denied(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusForbidden, "denied", h.newPage(r, "Access denied"))
}

// safeNext keeps post-login redirects on this site. Browsers drop tabs and
// newlines from URLs, so any control character is rejected outright.
func safeNext(next string) string {
	const fallback = "/portal"
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return fallback
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil ||
		!strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return next
}

var funcs = template.FuncMap{
	"date": func(t any) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format("2 Jan 2006")
		case *time.Time:
			if v == nil {
				return ""
			}
			return v.Format("2 Jan 2006")
		}
		return ""
	},
	"label": func(s any) string {
		return strings.ReplaceAll(fmt.Sprint(s), "_", " ")
	},
	"bytes": func(n int64) string {
		const unit = 1024
		if n < unit {
			return fmt.Sprintf("%d B", n)
		}
		div, exp := int64(unit), 0
		for m := n / unit; m >= unit; m /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
	},
}
