package api

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	MaxProjectName   = 120
	MinProjectName   = 2
	MaxPhaseName     = 120
	MaxUpdateTitle   = 200
	MaxUpdateBody    = 10000
	MaxMetricName    = 80
	MaxMetricUnit    = 20
	MaxDocumentName  = 255
	MinPasswordBytes = 8
	MaxPasswordBytes = 72 // bcrypt ignores anything past 72 bytes
	MinFullName      = 2
	MaxFullName      = 100
	MaxCompany       = 100
	MaxSubject       = 150
	MinMessage       = 10
	MaxMessage       = 5000
)

var phonePattern = regexp.MustCompile(`^[0-9+ ]{8,20}$`)

// checkLength validates the rune length of a trimmed string.
func checkLength(param, value string, min, max int) *APIError {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		if min == 1 {
			return NewInvalidRequestError(param, param+" is required")
		}
		return NewInvalidRequestError(param, fmt.Sprintf("%s must be at least %d characters", param, min))
	}
	if max > 0 && n > max {
		return NewInvalidRequestError(param, fmt.Sprintf("%s must be at most %d characters", param, max))
	}
	return nil
}

// ValidEmail reports whether s is a bare e-mail address (no display name).
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateSignUp checks the fields of a new account.
func ValidateSignUp(email, password, fullName string) *APIError {
	if !ValidEmail(email) {
		return NewInvalidRequestError("email", "a valid email address is required")
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	return checkLength("full_name", fullName, MinFullName, MaxFullName)
}

// ValidatePassword enforces the password length window.
func ValidatePassword(password string) *APIError {
	if len(password) < MinPasswordBytes {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordBytes))
	}
	if len(password) > MaxPasswordBytes {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// ValidatePhone accepts 8 to 20 digits, spaces and plus signs. An empty
// phone is valid because the field is optional everywhere.
func ValidatePhone(phone string) *APIError {
	phone = strings.TrimSpace(phone)
	if phone == "" || phonePattern.MatchString(phone) {
		return nil
	}
	return NewInvalidRequestError("phone", "phone must be 8 to 20 digits, spaces or +")
}

// ProfileInput carries the self-service profile fields. Nil pointers keep
// the stored value.
type ProfileInput struct {
	FullName *string `json:"full_name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// ApplyProfileInput copies the set fields of in onto p and validates the
// result.
func ApplyProfileInput(p *Profile, in ProfileInput) *APIError {
	if in.FullName != nil {
		p.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Company != nil {
		p.Company = strings.TrimSpace(*in.Company)
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := checkLength("full_name", p.FullName, MinFullName, MaxFullName); err != nil {
		return err
	}
	if err := checkLength("company", p.Company, 0, MaxCompany); err != nil {
		return err
	}
	return ValidatePhone(p.Phone)
}

// ValidateContactForm checks a contact form submission. The honeypot field
// is not inspected here.
func ValidateContactForm(f *ContactForm) *APIError {
	if err := checkLength("name", f.Name, MinFullName, MaxFullName); err != nil {
		return err
	}
	if !ValidEmail(f.Email) {
		return NewInvalidRequestError("email", "a valid email address is required")
	}
	if err := ValidatePhone(f.Phone); err != nil {
		return err
	}
	if err := checkLength("company", f.Company, 0, MaxCompany); err != nil {
		return err
	}
	if err := checkLength("subject", f.Subject, 0, MaxSubject); err != nil {
		return err
	}
	return checkLength("message", f.Message, MinMessage, MaxMessage)
}

// ApplyProjectInput copies the set fields of in onto p.
func ApplyProjectInput(p *Project, in ProjectInput) {
	if in.ClientID != nil {
		p.ClientID = *in.ClientID
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Website != nil {
		p.Website = strings.TrimSpace(*in.Website)
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.TargetDate != nil {
		p.TargetDate = in.TargetDate
	}
}

// ValidateProject checks a fully populated project.
func ValidateProject(p *Project) *APIError {
	if !ValidateID(PrefixProfile, p.ClientID) {
		return NewInvalidRequestError("client_id", "client_id must reference a profile")
	}
	if err := checkLength("name", p.Name, MinProjectName, MaxProjectName); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return NewInvalidRequestError("status", fmt.Sprintf("unknown project status %q", p.Status))
	}
	if p.Website != "" && !strings.HasPrefix(p.Website, "http://") && !strings.HasPrefix(p.Website, "https://") {
		return NewInvalidRequestError("website", "website must be an http(s) URL")
	}
	if p.StartDate != nil && p.TargetDate != nil && p.TargetDate.Before(*p.StartDate) {
		return NewInvalidRequestError("target_date", "target_date must not be before start_date")
	}
	return nil
}

// ApplyPhaseInput copies the set fields of in onto ph. When only the percent
// changes, the status follows it: 100 is completed, anything above zero is
// in progress.
func ApplyPhaseInput(ph *Phase, in PhaseInput) {
	if in.Name != nil {
		ph.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		ph.Description = strings.TrimSpace(*in.Description)
	}
	if in.Position != nil {
		ph.Position = *in.Position
	}
	if in.Percent != nil {
		ph.Percent = *in.Percent
	}
	if in.Status != nil {
		ph.Status = *in.Status
	} else if in.Percent != nil {
		switch {
		case ph.Percent == 100:
			ph.Status = PhaseCompleted
		case ph.Percent > 0:
			ph.Status = PhaseInProgress
		case ph.Status == PhaseCompleted:
			ph.Status = PhasePending
		}
	}
	if ph.Status == "" {
		ph.Status = PhasePending
	}
}

// ValidatePhase checks a fully populated phase.
func ValidatePhase(ph *Phase) *APIError {
	if err := checkLength("name", ph.Name, 1, MaxPhaseName); err != nil {
		return err
	}
	if ph.Percent < 0 || ph.Percent > 100 {
		return NewInvalidRequestError("percent", "percent must be between 0 and 100")
	}
	if !ph.Status.Valid() {
		return NewInvalidRequestError("status", fmt.Sprintf("unknown phase status %q", ph.Status))
	}
	if ph.Status == PhaseCompleted && ph.Percent != 100 {
		return NewInvalidRequestError("percent", "a completed phase must be at 100 percent")
	}
	if ph.Position < 0 {
		return NewInvalidRequestError("position", "position must not be negative")
	}
	return nil
}

// ValidateUpdate checks a project update before it is posted.
func ValidateUpdate(u *Update) *APIError {
	if err := checkLength("title", u.Title, 1, MaxUpdateTitle); err != nil {
		return err
	}
	if utf8.RuneCountInString(u.Body) > MaxUpdateBody {
		return NewInvalidRequestError("body", fmt.Sprintf("body must be at most %d characters", MaxUpdateBody))
	}
	if u.Kind == "" {
		u.Kind = UpdateNote
	}
	if !u.Kind.Valid() {
		return NewInvalidRequestError("kind", fmt.Sprintf("unknown update kind %q", u.Kind))
	}
	return nil
}

// ValidateMetric checks a metric reading.
func ValidateMetric(m *Metric) *APIError {
	if err := checkLength("name", m.Name, 1, MaxMetricName); err != nil {
		return err
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return NewInvalidRequestError("value", "value must be a finite number")
	}
	if utf8.RuneCountInString(m.Unit) > MaxMetricUnit {
		return NewInvalidRequestError("unit", fmt.Sprintf("unit must be at most %d characters", MaxMetricUnit))
	}
	return nil
}

// ValidateDocumentName rejects empty names, overlong names and names that
// could be read as a path.
func ValidateDocumentName(name string) *APIError {
	if err := checkLength("name", name, 1, MaxDocumentName); err != nil {
		return err
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return NewInvalidRequestError("name", "name must not contain path separators")
	}
	return nil
}
