package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nordweb/portal/pkg/account"
	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/transport"
)

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", h.newPage(r, h.content.Company.Tagline))
}

func (h *Handler) staticPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, http.StatusOK, name, h.newPage(r, title))
	}
}

// ---------------------------------------------------------------------------
// Contact
// ---------------------------------------------------------------------------

const contactSent = "Thank you for your message. We will get back to you within one working day."

func (h *Handler) contactForm(w http.ResponseWriter, r *http.Request) {
	p := h.newPage(r, "Contact")
	if r.URL.Query().Get("sent") == "1" {
		p.Notice = contactSent
	}
	h.render(w, http.StatusOK, "contact", p)
}

func (h *Handler) contactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, api.NewInvalidRequestError("", "invalid form"))
		return
	}

	form := api.ContactForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Company: r.PostFormValue("company"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
		Website: r.PostFormValue("website"),
	}

	_, err := h.deps.Contact.Submit(r.Context(), form, transport.ClientAddr(r))
	if err == nil {
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		h.renderError(w, r, err)
		return
	}

	// The message is stored even when the mail provider fails, so the
	// visitor is not asked to send it again.
	if apiErr.Type == api.ErrorTypeUpstream {
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}

	p := h.newPage(r, "Contact")
	p.Error = apiErr.Message
	p.Form = map[string]string{
		"name":    form.Name,
		"email":   form.Email,
		"phone":   form.Phone,
		"company": form.Company,
		"subject": form.Subject,
		"message": form.Message,
	}
	h.render(w, transport.HTTPStatusFromError(apiErr), "contact", p)
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if auth.IdentityFromContext(r.Context()) != nil {
		http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
		return
	}
	p := h.newPage(r, "Sign in")
	p.Next = next
	h.render(w, http.StatusOK, "login", p)
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, api.NewInvalidRequestError("", "invalid form"))
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	next := r.PostFormValue("next")

	res, err := h.deps.Accounts.SignIn(r.Context(), account.SignInInput{
		Email:      email,
		Password:   r.PostFormValue("password"),
		RemoteAddr: transport.ClientAddr(r),
	})
	if err != nil {
		h.formError(w, r, "login", "Sign in", err, next, map[string]string{"email": email})
		return
	}

	h.deps.Sessions.SetCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (h *Handler) signupForm(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/portal", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "signup", h.newPage(r, "Create account"))
}

func (h *Handler) signupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, api.NewInvalidRequestError("", "invalid form"))
		return
	}
	in := account.SignUpInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
		Company:  r.PostFormValue("company"),
	}
	echo := map[string]string{"email": in.Email, "full_name": in.FullName, "company": in.Company}

	if _, err := h.deps.Accounts.SignUp(r.Context(), in); err != nil {
		h.formError(w, r, "signup", "Create account", err, "", echo)
		return
	}

	res, err := h.deps.Accounts.SignIn(r.Context(), account.SignInInput{
		Email:      in.Email,
		Password:   in.Password,
		RemoteAddr: transport.ClientAddr(r),
	})
	if err != nil {
		h.formError(w, r, "login", "Sign in", err, "", map[string]string{"email": in.Email})
		return
	}
	h.deps.Sessions.SetCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/portal", http.StatusSeeOther)
}

// logout clears the cookie. Tokens are stateless, so a copied token stays
// valid until it expires.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.deps.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formError re-renders a form with the error message and the submitted
// values.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, name, title string, err error, next string, form map[string]string) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		h.renderError(w, r, err)
		return
	}
	p := h.newPage(r, title)
	p.Error = apiErr.Message
	p.Next = next
	p.Form = form
	h.render(w, transport.HTTPStatusFromError(apiErr), name, p)
}

// ---------------------------------------------------------------------------
// Portal
// ---------------------------------------------------------------------------

func (h *Handler) portal(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	d, err := h.deps.Portal.Dashboard(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	p := h.newPage(r, "Your projects")
	p.Data = d
	h.render(w, http.StatusOK, "portal", p)
}

func (h *Handler) project(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	d, err := h.deps.Portal.GetProject(r.Context(), id, r.PathValue("id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	p := h.newPage(r, d.Project.Name)
	p.Data = d
	h.render(w, http.StatusOK, "project", p)
}

// adminView is the data of the admin page.
type adminView struct {
	Dashboard *api.Dashboard
	Profiles  []*api.Profile
	Messages  []*api.ContactMessage
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := auth.IdentityFromContext(ctx)

	d, err := h.deps.Portal.Dashboard(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	profiles, err := h.deps.Accounts.ListProfiles(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	messages, err := h.deps.Portal.ListContactMessages(ctx, id, api.ListOptions{Limit: 20})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	p := h.newPage(r, "Admin")
	p.Data = adminView{Dashboard: d, Profiles: profiles, Messages: messages.Data}
	h.render(w, http.StatusOK, "admin", p)
}
