package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
)

type fakeAccounts struct {
	signInErr error
	signUpErr error
	signedIn  []account.SignInInput
}

func (f *fakeAccounts) SignUp(_ context.Context, in account.SignUpInput) (*api.Profile, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &api.Profile{ID: "usr_new", Email: in.Email, FullName: in.FullName, Role: api.RoleUser}, nil
}

func (f *fakeAccounts) SignIn(_ context.Context, in account.SignInInput) (*account.SignInResult, error) {
	f.signedIn = append(f.signedIn, in)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &account.SignInResult{Token: "token-for-" + in.Email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAccounts) ListProfiles(_ context.Context, _ *auth.Identity) ([]*api.Profile, error) {
	return []*api.Profile{{ID: "usr_1", Email: "kunde@example.dk", FullName: "Karen Kunde", Role: api.RoleUser}}, nil
}

type fakeSessions struct {
	token   string
	cleared bool
}

func (f *fakeSessions) SetCookie(_ http.ResponseWriter, token string, _ time.Time) { f.token = token }
func (f *fakeSessions) ClearCookie(_ http.ResponseWriter)                          { f.cleared = true }

type fakeContact struct {
	err   error
	forms []api.ContactForm
	addrs []string
}

func (f *fakeContact) Submit(_ context.Context, form api.ContactForm, remoteAddr string) (*api.ContactMessage, error) {
	f.forms = append(f.forms, form)
	f.addrs = append(f.addrs, remoteAddr)
	return &api.ContactMessage{ID: "msg_1"}, f.err
}

type fakePortal struct {
	projects []*api.Project
}

func (f *fakePortal) Dashboard(_ context.Context, id *auth.Identity) (*api.Dashboard, error) {
	d := &api.Dashboard{Projects: f.projects}
	if id.IsAdmin() {
		d.Admin = &api.AdminStats{ProjectsByStatus: map[api.ProjectStatus]int{api.ProjectPlanning: len(f.projects)}, Clients: 1}
	}
	return d, nil
}

func (f *fakePortal) GetProject(_ context.Context, _ *auth.Identity, projectID string) (*api.ProjectDetail, error) {
	for _, p := range f.projects {
		if p.ID == projectID {
			return &api.ProjectDetail{
				Project: p,
				Phases: []*api.Phase{
					{ID: "phs_1", Name: "Discovery", Status: api.PhaseCompleted, Percent: 100},
					{ID: "phs_2", Name: "Design", Status: api.PhaseInProgress, Percent: 40},
				},
				Summary: api.PhaseSummary{Total: 2, Completed: 1, InProgress: 1, Percent: 70},
			}, nil
		}
	}
	return nil, api.NewNotFoundError("project not found")
}

func (f *fakePortal) ListContactMessages(_ context.Context, id *auth.Identity, _ api.ListOptions) (*api.List[*api.ContactMessage], error) {
	if !id.IsAdmin() {
		return nil, api.NewForbiddenError("insufficient role")
	}
	return &api.List[*api.ContactMessage]{Object: "list", Data: []*api.ContactMessage{
		{ID: "msg_1", Name: "Lars", Email: "lars@example.dk", Subject: "New website"},
	}}, nil
}

type harness struct {
	accounts *fakeAccounts
	sessions *fakeSessions
	contact  *fakeContact
	portal   *fakePortal
	mux      *http.ServeMux
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	content, err := LoadContent("")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	h := &harness{
		accounts: &fakeAccounts{},
		sessions: &fakeSessions{},
		contact:  &fakeContact{},
		portal: &fakePortal{projects: []*api.Project{
			{ID: "prj_shop", Name: "Nielsen webshop", Status: api.ProjectInProgress, Progress: 70},
		}},
		mux: http.NewServeMux(),
	}
	site, err := New(content, Deps{Accounts: h.accounts, Sessions: h.sessions, Contact: h.contact, Portal: h.portal})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	site.Register(h.mux)
	return h
}

// do serves a request as id (nil for anonymous).
func (h *harness) do(id *auth.Identity, method, target string, form url.Values) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if id != nil {
		r = r.WithContext(auth.SetIdentity(r.Context(), id))
	}
	w := httptest.NewRecorder()
	h.mux.ServeHTTP(w, r)
	return w
}

var (
	customer = &auth.Identity{Subject: "usr_customer", Email: "kunde@example.dk", Role: api.RoleUser, Method: auth.MethodSession}
	staff    = &auth.Identity{Subject: "usr_staff", Email: "staff@nordweb.dk", Role: api.RoleAdmin, Method: auth.MethodSession}
)

func TestMarketingPages(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Websites that work as hard as you do"},
		{"/services", "Hosting and maintenance"},
		{"/pricing", "24.995 kr."},
		{"/about", "Mette Lund"},
		{"/faq", "How long does a website take?"},
		{"/contact", `name="website"`},
		{"/login", `action="/login"`},
		{"/signup", `name="full_name"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := h.do(nil, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
			if !strings.Contains(body, "Nordweb") {
				t.Error("layout missing company name")
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	w := h.do(nil, http.MethodGet, "/no-such-page", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Error("expected not-found page")
	}
}

func TestStaticAssets(t *testing.T) {
	h := newHarness(t)
	w := h.do(nil, http.MethodGet, "/static/site.css", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestPortalPagesRequireSignIn(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/portal", "/portal/projects/prj_shop", "/admin"} {
		w := h.do(nil, http.MethodGet, path, nil)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("%s: status = %d, want 303", path, w.Code)
		}
		want := "/login?next=" + url.QueryEscape(path)
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("%s: Location = %q, want %q", path, loc, want)
		}
	}
}

func TestPortalPages(t *testing.T) {
	h := newHarness(t)

	w := h.do(customer, http.MethodGet, "/portal", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("portal status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "Nielsen webshop") || !strings.Contains(body, "70% complete") {
		t.Error("portal page missing project card")
	}

	w = h.do(customer, http.MethodGet, "/portal/projects/prj_shop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("project status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Discovery", "Design", "1 of 2 phases done"} {
		if !strings.Contains(body, want) {
			t.Errorf("project page missing %q", want)
		}
	}

	w = h.do(customer, http.MethodGet, "/portal/projects/prj_other", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown project status = %d, want 404", w.Code)
	}
}

func TestAdminPage(t *testing.T) {
	h := newHarness(t)

	w := h.do(customer, http.MethodGet, "/admin", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Access denied") {
		t.Error("expected denial page")
	}

	w = h.do(staff, http.MethodGet, "/admin", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Karen Kunde", "New website", "Nielsen webshop"} {
		if !strings.Contains(body, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestLogin(t *testing.T) {
	t.Run("success redirects to next", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(nil, http.MethodPost, "/login", url.Values{
			"email": {"kunde@example.dk"}, "password": {"hemmelig123"}, "next": {"/portal/projects/prj_shop"},
		})
		if w.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/portal/projects/prj_shop" {
			t.Errorf("Location = %q", loc)
		}
		if h.sessions.token != "token-for-kunde@example.dk" {
			t.Errorf("cookie token = %q", h.sessions.token)
		}
		if got := h.accounts.signedIn[0].RemoteAddr; got != "192.0.2.1" {
			t.Errorf("RemoteAddr = %q, want the client host", got)
		}
	})

	for _, next := range []string{"//evil.example/", "/\t/evil.example/", "/\n/evil.example/"} {
		t.Run("offsite next is ignored "+strconv.Quote(next), func(t *testing.T) {
			h := newHarness(t)
			w := h.do(nil, http.MethodPost, "/login", url.Values{
				"email": {"kunde@example.dk"}, "password": {"hemmelig123"}, "next": {next},
			})
			if loc := w.Header().Get("Location"); loc != "/portal" {
				t.Errorf("Location = %q, want /portal", loc)
			}
		})
	}

	t.Run("failure re-renders form", func(t *testing.T) {
		h := newHarness(t)
		h.accounts.signInErr = api.NewUnauthorizedError("invalid email or password")
		w := h.do(nil, http.MethodPost, "/login", url.Values{"email": {"kunde@example.dk"}, "password": {"wrong-pass"}})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "invalid email or password") || !strings.Contains(body, `value="kunde@example.dk"`) {
			t.Error("expected error message and echoed email")
		}
		if h.sessions.token != "" {
			t.Error("no cookie should be set")
		}
	})

	t.Run("signed-in visitor skips the form", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(customer, http.MethodGet, "/login", nil)
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/portal" {
			t.Errorf("got %d %q", w.Code, w.Header().Get("Location"))
		}
	})
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	w := h.do(nil, http.MethodPost, "/signup", url.Values{
		"email": {"ny@example.dk"}, "password": {"hemmelig123"}, "full_name": {"Ny Kunde"},
	})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/portal" {
		t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
	}
	if h.sessions.token != "token-for-ny@example.dk" {
		t.Errorf("cookie token = %q", h.sessions.token)
	}

	h.accounts.signUpErr = api.NewConflictError("email", "an account with this email already exists")
	w = h.do(nil, http.MethodPost, "/signup", url.Values{
		"email": {"ny@example.dk"}, "password": {"hemmelig123"}, "full_name": {"Ny Kunde"},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Error("expected conflict message")
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	w := h.do(customer, http.MethodPost, "/logout", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
	}
	if !h.sessions.cleared {
		t.Error("cookie not cleared")
	}
}

func TestLogoutRequiresPost(t *testing.T) {
	h := newHarness(t)
	w := h.do(customer, http.MethodGet, "/logout", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if h.sessions.cleared {
		t.Error("GET must not clear the session cookie")
	}
}

func TestContactSubmit(t *testing.T) {
	form := url.Values{
		"name": {"Lars Jensen"}, "email": {"lars@example.dk"}, "message": {"We need a new website for the shop."},
	}

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(nil, http.MethodPost, "/contact", form)
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/contact?sent=1" {
			t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
		}
		if len(h.contact.forms) != 1 || h.contact.forms[0].Name != "Lars Jensen" {
			t.Errorf("forms = %+v", h.contact.forms)
		}
		if h.contact.addrs[0] != "192.0.2.1" {
			t.Errorf("remote = %q", h.contact.addrs[0])
		}

		w = h.do(nil, http.MethodGet, "/contact?sent=1", nil)
		if !strings.Contains(w.Body.String(), "Thank you for your message") {
			t.Error("expected confirmation notice")
		}
	})

	t.Run("validation error keeps input", func(t *testing.T) {
		h := newHarness(t)
		h.contact.err = api.NewInvalidRequestError("message", "message must be at least 10 characters")
		w := h.do(nil, http.MethodPost, "/contact", form)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "message must be at least 10 characters") || !strings.Contains(body, `value="Lars Jensen"`) {
			t.Error("expected error and echoed name")
		}
	})

	t.Run("mail failure still confirms", func(t *testing.T) {
		h := newHarness(t)
		h.contact.err = api.NewUpstreamError("message saved but could not be mailed")
		w := h.do(nil, http.MethodPost, "/contact", form)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", w.Code)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		h := newHarness(t)
		h.contact.err = api.NewTooManyRequestsError("too many messages, try again later")
		w := h.do(nil, http.MethodPost, "/contact", form)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", w.Code)
		}
	})
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                   "/portal",
		"/portal/projects/x": "/portal/projects/x",
		"https://evil.dk":    "/portal",
		"//evil.dk":          "/portal",
		`/\evil.dk`:          "/portal",
		"/admin":             "/admin",
		"/\t/evil.dk/":       "/portal",
		"/\n/evil.dk/":       "/portal",
		"/\r\n//evil.dk":     "/portal",
		"/\x7f/evil.dk":      "/portal",
		"portal":             "/portal",
		"/portal?tab=docs":   "/portal?tab=docs",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
