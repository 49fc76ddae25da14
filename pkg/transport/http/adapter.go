package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/portal"
	"github.com/nordweb/portal/pkg/transport"
)

// APIPrefix is the mount point of the JSON API.
const APIPrefix = "/api/v1"

// Accounts is the account service as seen by the API.
type Accounts interface {
	SignUp(ctx context.Context, in account.SignUpInput) (*api.Profile, error)
	SignIn(ctx context.Context, in account.SignInInput) (*account.SignInResult, error)
	Session(ctx context.Context, id *auth.Identity) (*api.Session, error)
	UpdateProfile(ctx context.Context, id *auth.Identity, in api.ProfileInput) (*api.Profile, error)
	ChangePassword(ctx context.Context, id *auth.Identity, oldPassword, newPassword string) error
	ListProfiles(ctx context.Context, id *auth.Identity) ([]*api.Profile, error)
	SetRole(ctx context.Context, actor *auth.Identity, targetID string, role api.Role) (*api.Profile, error)
}

// Portal is the project service as seen by the API.
type Portal interface {
	ListProjects(ctx context.Context, id *auth.Identity, opts api.ListOptions) (*api.List[*api.Project], error)
	GetProject(ctx context.Context, id *auth.Identity, projectID string) (*api.ProjectDetail, error)
	CreateProject(ctx context.Context, id *auth.Identity, in api.ProjectInput) (*api.Project, error)
	UpdateProject(ctx context.Context, id *auth.Identity, projectID string, in api.ProjectInput) (*api.Project, error)
	DeleteProject(ctx context.Context, id *auth.Identity, projectID string) error

	ListPhases(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Phase, error)
	CreatePhase(ctx context.Context, id *auth.Identity, projectID string, in api.PhaseInput) (*api.Phase, error)
	UpdatePhase(ctx context.Context, id *auth.Identity, projectID, phaseID string, in api.PhaseInput) (*api.Phase, error)
	DeletePhase(ctx context.Context, id *auth.Identity, projectID, phaseID string) error

	ListUpdates(ctx context.Context, id *auth.Identity, projectID string, opts api.ListOptions) (*api.List[*api.Update], error)
	PostUpdate(ctx context.Context, id *auth.Identity, projectID string, in portal.UpdateInput) (*api.Update, error)
	ListMetrics(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Metric, error)
	RecordMetric(ctx context.Context, id *auth.Identity, projectID string, in portal.MetricInput) (*api.Metric, error)

	ListDocuments(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Document, error)
	UploadDocument(ctx context.Context, id *auth.Identity, projectID, name, contentType string, r io.Reader) (*api.Document, error)
	OpenDocument(ctx context.Context, id *auth.Identity, projectID, docID string) (*api.Document, io.ReadCloser, error)
	DeleteDocument(ctx context.Context, id *auth.Identity, projectID, docID string) error

	Dashboard(ctx context.Context, id *auth.Identity) (*api.Dashboard, error)
	ListContactMessages(ctx context.Context, id *auth.Identity, opts api.ListOptions) (*api.List[*api.ContactMessage], error)
}

// Contact accepts contact form submissions.
type Contact interface {
	Submit(ctx context.Context, form api.ContactForm, remoteAddr string) (*api.ContactMessage, error)
}

// Sessions writes and clears the browser session cookie.
type Sessions interface {
	SetCookie(w http.ResponseWriter, token string, expires time.Time)
	ClearCookie(w http.ResponseWriter)
}

// Services are the backends of the API. Sessions is optional; without it
// sign-in only returns the token in the body.
type Services struct {
	Accounts Accounts
	Portal   Portal
	Contact  Contact
	Sessions Sessions
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize bounds JSON request bodies.
	MaxBodySize int64

	// MaxUploadSize bounds a multipart document upload, including the
	// multipart framing.
	MaxUploadSize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:   1 << 20,        // 1 MB
		MaxUploadSize: 25<<20 + 1<<20, // 25 MB documents plus framing
	}
}

// Adapter serves the portal JSON API over HTTP.
type Adapter struct {
	svc    Services
	config Config
}

// NewAdapter creates an HTTP adapter for the given services.
func NewAdapter(svc Services, cfg Config) *Adapter {
	def := DefaultConfig()
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = def.MaxUploadSize
	}
	return &Adapter{svc: svc, config: cfg}
}

// Register adds the API routes to mux. Everything else under /api/ answers
// with a JSON 404.
func (a *Adapter) Register(mux *http.ServeMux) {
	user := auth.RequireRole(api.RoleUser, auth.API)
	admin := auth.RequireRole(api.RoleAdmin, auth.API)

	handle := func(pattern string, wrap func(http.Handler) http.Handler, h http.HandlerFunc) {
		if wrap != nil {
			mux.Handle(pattern, wrap(h))
			return
		}
		mux.Handle(pattern, h)
	}

	p := func(method, path string) string { return method + " " + APIPrefix + path }

	handle(p("POST", "/auth/signup"), nil, a.handleSignUp)
	handle(p("POST", "/auth/signin"), nil, a.handleSignIn)
	handle(p("POST", "/auth/signout"), nil, a.handleSignOut)
	handle(p("GET", "/auth/session"), user, a.handleSession)
	handle(p("PATCH", "/auth/profile"), user, a.handleUpdateProfile)
	handle(p("POST", "/auth/password"), user, a.handleChangePassword)

	handle(p("GET", "/projects"), user, a.handleListProjects)
	handle(p("POST", "/projects"), admin, a.handleCreateProject)
	handle(p("GET", "/projects/{id}"), user, a.handleGetProject)
	handle(p("PATCH", "/projects/{id}"), admin, a.handleUpdateProject)
	handle(p("DELETE", "/projects/{id}"), admin, a.handleDeleteProject)

	handle(p("GET", "/projects/{id}/phases"), user, a.handleListPhases)
	handle(p("POST", "/projects/{id}/phases"), admin, a.handleCreatePhase)
	handle(p("PATCH", "/projects/{id}/phases/{phase}"), admin, a.handleUpdatePhase)
	handle(p("DELETE", "/projects/{id}/phases/{phase}"), admin, a.handleDeletePhase)

	handle(p("GET", "/projects/{id}/updates"), user, a.handleListUpdates)
	handle(p("POST", "/projects/{id}/updates"), admin, a.handlePostUpdate)

	handle(p("GET", "/projects/{id}/metrics"), user, a.handleListMetrics)
	handle(p("POST", "/projects/{id}/metrics"), admin, a.handleRecordMetric)

	handle(p("GET", "/projects/{id}/documents"), user, a.handleListDocuments)
	handle(p("POST", "/projects/{id}/documents"), user, a.handleUploadDocument)
	handle(p("GET", "/projects/{id}/documents/{doc}"), user, a.handleOpenDocument)
	handle(p("DELETE", "/projects/{id}/documents/{doc}"), admin, a.handleDeleteDocument)

	handle(p("GET", "/dashboard"), user, a.handleDashboard)

	handle(p("GET", "/admin/users"), admin, a.handleListUsers)
	handle(p("PUT", "/admin/users/{id}/role"), admin, a.handleSetRole)
	handle(p("GET", "/admin/contact"), admin, a.handleListContact)

	handle(p("POST", "/contact"), nil, a.handleContact)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		transport.WriteAPIError(w, api.NewNotFoundError("no route for "+r.Method+" "+r.URL.Path))
	})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func (a *Adapter) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in account.SignUpInput
	if !a.decode(w, r, &in) {
		return
	}
	p, err := a.svc.Accounts.SignUp(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, p)
}

func (a *Adapter) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in account.SignInInput
	if !a.decode(w, r, &in) {
		return
	}
	in.RemoteAddr = transport.ClientAddr(r)

	res, err := a.svc.Accounts.SignIn(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	if a.svc.Sessions != nil {
		a.svc.Sessions.SetCookie(w, res.Token, res.ExpiresAt)
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

// handleSignOut clears the cookie. Tokens are stateless and stay valid
// until they expire.
func (a *Adapter) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if a.svc.Sessions != nil {
		a.svc.Sessions.ClearCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Adapter) handleSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.svc.Accounts.Session(r.Context(), identity(r))
	respond(w, r, http.StatusOK, s, err)
}

func (a *Adapter) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in api.ProfileInput
	if !a.decode(w, r, &in) {
		return
	}
	p, err := a.svc.Accounts.UpdateProfile(r.Context(), identity(r), in)
	respond(w, r, http.StatusOK, p, err)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (a *Adapter) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if !a.decode(w, r, &in) {
		return
	}
	err := a.svc.Accounts.ChangePassword(r.Context(), identity(r), in.OldPassword, in.NewPassword)
	noContent(w, r, err)
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (a *Adapter) handleListProjects(w http.ResponseWriter, r *http.Request) {
	opts, apiErr := parseListOptions(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	list, err := a.svc.Portal.ListProjects(r.Context(), identity(r), opts)
	respond(w, r, http.StatusOK, list, err)
}

func (a *Adapter) handleGetProject(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.Portal.GetProject(r.Context(), identity(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, d, err)
}

func (a *Adapter) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in api.ProjectInput
	if !a.decode(w, r, &in) {
		return
	}
	p, err := a.svc.Portal.CreateProject(r.Context(), identity(r), in)
	respond(w, r, http.StatusCreated, p, err)
}

func (a *Adapter) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in api.ProjectInput
	if !a.decode(w, r, &in) {
		return
	}
	p, err := a.svc.Portal.UpdateProject(r.Context(), identity(r), r.PathValue("id"), in)
	respond(w, r, http.StatusOK, p, err)
}

func (a *Adapter) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.svc.Portal.DeleteProject(r.Context(), identity(r), r.PathValue("id")))
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

func (a *Adapter) handleListPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := a.svc.Portal.ListPhases(r.Context(), identity(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, listOf(phases), err)
}

func (a *Adapter) handleCreatePhase(w http.ResponseWriter, r *http.Request) {
	var in api.PhaseInput
	if !a.decode(w, r, &in) {
		return
	}
	ph, err := a.svc.Portal.CreatePhase(r.Context(), identity(r), r.PathValue("id"), in)
	respond(w, r, http.StatusCreated, ph, err)
}

func (a *Adapter) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	var in api.PhaseInput
	if !a.decode(w, r, &in) {
		return
	}
	ph, err := a.svc.Portal.UpdatePhase(r.Context(), identity(r), r.PathValue("id"), r.PathValue("phase"), in)
	respond(w, r, http.StatusOK, ph, err)
}

func (a *Adapter) handleDeletePhase(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.svc.Portal.DeletePhase(r.Context(), identity(r), r.PathValue("id"), r.PathValue("phase")))
}

// ---------------------------------------------------------------------------
// Updates and metrics
// ---------------------------------------------------------------------------

func (a *Adapter) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	opts, apiErr := parseListOptions(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	list, err := a.svc.Portal.ListUpdates(r.Context(), identity(r), r.PathValue("id"), opts)
	respond(w, r, http.StatusOK, list, err)
}

func (a *Adapter) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	var in portal.UpdateInput
	if !a.decode(w, r, &in) {
		return
	}
	u, err := a.svc.Portal.PostUpdate(r.Context(), identity(r), r.PathValue("id"), in)
	respond(w, r, http.StatusCreated, u, err)
}

func (a *Adapter) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := a.svc.Portal.ListMetrics(r.Context(), identity(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, listOf(metrics), err)
}

func (a *Adapter) handleRecordMetric(w http.ResponseWriter, r *http.Request) {
	var in portal.MetricInput
	if !a.decode(w, r, &in) {
		return
	}
	m, err := a.svc.Portal.RecordMetric(r.Context(), identity(r), r.PathValue("id"), in)
	respond(w, r, http.StatusCreated, m, err)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func (a *Adapter) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := a.svc.Portal.ListDocuments(r.Context(), identity(r), r.PathValue("id"))
	respond(w, r, http.StatusOK, listOf(docs), err)
}

// handleUploadDocument streams the "file" part of a multipart form into the
// portal without buffering it on disk.
func (a *Adapter) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadSize)

	mr, err := r.MultipartReader()
	if err != nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be multipart/form-data"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			transport.WriteAPIError(w, api.NewInvalidRequestError("file", "a \"file\" part is required"))
			return
		}
		if err != nil {
			a.writeUploadError(w, r, err)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		d, err := a.svc.Portal.UploadDocument(r.Context(), identity(r), r.PathValue("id"),
			part.FileName(), partContentType(part.Header.Get("Content-Type")), part)
		part.Close()
		if err != nil {
			a.writeUploadError(w, r, err)
			return
		}
		transport.WriteJSON(w, http.StatusCreated, d)
		return
	}
}

func (a *Adapter) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("file", fmt.Sprintf("upload too large (max %d bytes)", a.config.MaxUploadSize)),
			http.StatusRequestEntityTooLarge,
		)
		return
	}
	transport.WriteError(w, r, err)
}

// partContentType drops the generic type browsers send for unknown files so
// the portal can guess from the file name.
func partContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

func (a *Adapter) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	d, rc, err := a.svc.Portal.OpenDocument(r.Context(), identity(r), r.PathValue("id"), r.PathValue("doc"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

func (a *Adapter) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	noContent(w, r, a.svc.Portal.DeleteDocument(r.Context(), identity(r), r.PathValue("id"), r.PathValue("doc")))
}

// ---------------------------------------------------------------------------
// Dashboard, admin and contact
// ---------------------------------------------------------------------------

func (a *Adapter) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.Portal.Dashboard(r.Context(), identity(r))
	respond(w, r, http.StatusOK, d, err)
}

func (a *Adapter) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.svc.Accounts.ListProfiles(r.Context(), identity(r))
	respond(w, r, http.StatusOK, listOf(profiles), err)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (a *Adapter) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var in setRoleRequest
	if !a.decode(w, r, &in) {
		return
	}
	role, err := api.ParseRole(in.Role)
	if err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("role", err.Error()))
		return
	}
	p, err := a.svc.Accounts.SetRole(r.Context(), identity(r), r.PathValue("id"), role)
	respond(w, r, http.StatusOK, p, err)
}

func (a *Adapter) handleListContact(w http.ResponseWriter, r *http.Request) {
	opts, apiErr := parseListOptions(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}
	list, err := a.svc.Portal.ListContactMessages(r.Context(), identity(r), opts)
	respond(w, r, http.StatusOK, list, err)
}

type contactResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func (a *Adapter) handleContact(w http.ResponseWriter, r *http.Request) {
	var form api.ContactForm
	if !a.decode(w, r, &form) {
		return
	}
	msg, err := a.svc.Contact.Submit(r.Context(), form, transport.ClientAddr(r))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	resp := contactResponse{Status: "received"}
	if msg != nil {
		resp.ID = msg.ID
	}
	transport.WriteJSON(w, http.StatusAccepted, resp)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// decode reads a JSON body into v and writes the error response when that
// fails.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if apiErr, status := transport.DecodeJSON(w, r, a.config.MaxBodySize, v); apiErr != nil {
		transport.WriteErrorResponse(w, apiErr, status)
		return false
	}
	return true
}

func identity(r *http.Request) *auth.Identity {
	return auth.IdentityFromContext(r.Context())
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, status, v)
}

func noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listOf wraps an unpaginated slice in the list envelope.
func listOf[T any](items []T) *api.List[T] {
	if items == nil {
		items = []T{}
	}
	return &api.List[T]{Object: "list", Data: items}
}

// parseListOptions extracts pagination parameters from query string.
func parseListOptions(r *http.Request) (api.ListOptions, *api.APIError) {
	q := r.URL.Query()
	opts := api.ListOptions{
		After:  q.Get("after"),
		Before: q.Get("before"),
		Order:  q.Get("order"),
	}

	if opts.After != "" && opts.Before != "" {
		return opts, api.NewInvalidRequestError("after", "cannot use both 'after' and 'before' cursors")
	}

	if opts.Order != "" && opts.Order != "asc" && opts.Order != "desc" {
		return opts, api.NewInvalidRequestError("order", "order must be 'asc' or 'desc'")
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return opts, api.NewInvalidRequestError("limit", "limit must be a positive integer")
		}
		opts.Limit = limit
	}

	return opts, nil
}
