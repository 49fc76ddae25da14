package api

import (
	"math"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"kunde@nordweb.dk", true},
		{"first.last+tag@example.co.uk", true},
		{"", false},
		{"no-at-sign", false},
		{"user@localhost", false},
		{"Jens <jens@example.dk>", false},
		{"two@@example.dk", false},
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateSignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		fullName  string
		wantParam string
	}{
		{"valid", "mette@example.dk", "hemmelig123", "Mette Jensen", ""},
		{"bad email", "mette", "hemmelig123", "Mette Jensen", "email"},
		{"short password", "mette@example.dk", "kort", "Mette Jensen", "password"},
		{"long password", "mette@example.dk", strings.Repeat("x", 73), "Mette Jensen", "password"},
		{"short name", "mette@example.dk", "hemmelig123", "M", "full_name"},
		{"danish letters count as runes", "soeren@example.dk", "hemmelig123", "Øb", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignUp(tt.email, tt.password, tt.fullName)
			if tt.wantParam == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on %s", tt.wantParam)
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
		})
	}
}

func TestValidateProject(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-24 * time.Hour)

	base := func() *Project {
		return &Project{
			ClientID: "usr_abcdefghijklmnopqrstuvwx",
			Name:     "Webshop relaunch",
			Status:   ProjectPlanning,
		}
	}

	tests := []struct {
		name      string
		modify    func(*Project)
		wantParam string
	}{
		{"valid", func(p *Project) {}, ""},
		{"missing client", func(p *Project) { p.ClientID = "" }, "client_id"},
		{"short name", func(p *Project) { p.Name = "x" }, "name"},
		{"long name", func(p *Project) { p.Name = strings.Repeat("a", MaxProjectName+1) }, "name"},
		{"bad status", func(p *Project) { p.Status = "archived" }, "status"},
		{"bad website", func(p *Project) { p.Website = "ftp://example.dk" }, "website"},
		{"https website", func(p *Project) { p.Website = "https://example.dk" }, ""},
		{"target before start", func(p *Project) { p.StartDate = &start; p.TargetDate = &before }, "target_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.modify(p)
			err := ValidateProject(p)
			if tt.wantParam == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Param != tt.wantParam {
				t.Errorf("error = %v, want param %q", err, tt.wantParam)
			}
		})
	}
}

func TestApplyProjectInputLeavesUnsetFields(t *testing.T) {
	p := &Project{Name: "Old", Description: "keep me", Status: ProjectPlanning}
	status := ProjectInProgress
	ApplyProjectInput(p, ProjectInput{Name: strPtr("  New  "), Status: &status})

	if p.Name != "New" {
		t.Errorf("Name = %q, want trimmed %q", p.Name, "New")
	}
	if p.Description != "keep me" {
		t.Errorf("Description = %q, want untouched", p.Description)
	}
	if p.Status != ProjectInProgress {
		t.Errorf("Status = %q, want in_progress", p.Status)
	}
}

func TestApplyPhaseInputStatusFollowsPercent(t *testing.T) {
	tests := []struct {
		name       string
		start      Phase
		in         PhaseInput
		wantStatus PhaseStatus
	}{
		{"new phase defaults to pending", Phase{}, PhaseInput{Name: strPtr("Design")}, PhasePending},
		{"percent 100 completes", Phase{Status: PhaseInProgress}, PhaseInput{Percent: intPtr(100)}, PhaseCompleted},
		{"percent above zero starts", Phase{Status: PhasePending}, PhaseInput{Percent: intPtr(40)}, PhaseInProgress},
		{"lowering completed reopens", Phase{Status: PhaseCompleted, Percent: 100}, PhaseInput{Percent: intPtr(80)}, PhaseInProgress},
		{"reset to zero", Phase{Status: PhaseCompleted, Percent: 100}, PhaseInput{Percent: intPtr(0)}, PhasePending},
		{"explicit status wins", Phase{}, PhaseInput{Percent: intPtr(100), Status: func() *PhaseStatus { s := PhaseInProgress; return &s }()}, PhaseInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph := tt.start
			ApplyPhaseInput(&ph, tt.in)
			if ph.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", ph.Status, tt.wantStatus)
			}
		})
	}
}

func TestValidatePhase(t *testing.T) {
	tests := []struct {
		name      string
		phase     Phase
		wantParam string
	}{
		{"valid", Phase{Name: "Design", Status: PhaseInProgress, Percent: 50}, ""},
		{"missing name", Phase{Status: PhasePending}, "name"},
		{"negative percent", Phase{Name: "x", Status: PhasePending, Percent: -1}, "percent"},
		{"percent over 100", Phase{Name: "x", Status: PhaseInProgress, Percent: 101}, "percent"},
		{"completed below 100", Phase{Name: "x", Status: PhaseCompleted, Percent: 90}, "percent"},
		{"unknown status", Phase{Name: "x", Status: "blocked"}, "status"},
		{"negative position", Phase{Name: "x", Status: PhasePending, Position: -2}, "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhase(&tt.phase)
			if tt.wantParam == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Param != tt.wantParam {
				t.Errorf("error = %v, want param %q", err, tt.wantParam)
			}
		})
	}
}

func TestValidateUpdateDefaultsKind(t *testing.T) {
	u := &Update{Title: "Design approved"}
	if err := ValidateUpdate(u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Kind != UpdateNote {
		t.Errorf("Kind = %q, want %q", u.Kind, UpdateNote)
	}

	if err := ValidateUpdate(&Update{Title: "x", Kind: "gossip"}); err == nil || err.Param != "kind" {
		t.Errorf("error = %v, want kind error", err)
	}
	if err := ValidateUpdate(&Update{Title: "  "}); err == nil || err.Param != "title" {
		t.Errorf("error = %v, want title error", err)
	}
}

func TestValidateMetric(t *testing.T) {
	if err := ValidateMetric(&Metric{Name: "lighthouse_performance", Value: 97, Unit: "score"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateMetric(&Metric{Name: "x", Value: math.NaN()}); err == nil || err.Param != "value" {
		t.Errorf("NaN: error = %v, want value error", err)
	}
	if err := ValidateMetric(&Metric{Name: "x", Value: math.Inf(1)}); err == nil || err.Param != "value" {
		t.Errorf("Inf: error = %v, want value error", err)
	}
	if err := ValidateMetric(&Metric{Name: "x", Unit: strings.Repeat("u", 21)}); err == nil || err.Param != "unit" {
		t.Errorf("unit: error = %v, want unit error", err)
	}
}

func TestValidateDocumentName(t *testing.T) {
	valid := []string{"kontrakt.pdf", "Design v2 (final).fig", "tilbud-æøå.docx"}
	for _, n := range valid {
		if err := ValidateDocumentName(n); err != nil {
			t.Errorf("ValidateDocumentName(%q) = %v, want nil", n, err)
		}
	}

	invalid := []string{"", "..", "../etc/passwd", `dir\file.txt`, "a/b"}
	for _, n := range invalid {
		if err := ValidateDocumentName(n); err == nil {
			t.Errorf("ValidateDocumentName(%q) = nil, want error", n)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	for _, p := range []string{"", "+45 12 34 56 78", "12345678"} {
		if err := ValidatePhone(p); err != nil {
			t.Errorf("ValidatePhone(%q) = %v, want nil", p, err)
		}
	}
	for _, p := range []string{"1234", "+45-1234-5678", "call me maybe", strings.Repeat("1", 21)} {
		if err := ValidatePhone(p); err == nil {
			t.Errorf("ValidatePhone(%q) = nil, want error", p)
		}
	}
}

func TestApplyProfileInput(t *testing.T) {
	p := &Profile{FullName: "Mette Holm", Company: "Holm ApS"}

	if err := ApplyProfileInput(p, ProfileInput{Phone: strPtr(" 20 30 40 50 ")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Phone != "20 30 40 50" || p.FullName != "Mette Holm" || p.Company != "Holm ApS" {
		t.Errorf("profile = %+v", p)
	}

	if err := ApplyProfileInput(p, ProfileInput{FullName: strPtr("M")}); err == nil || err.Param != "full_name" {
		t.Errorf("short name: error = %v, want full_name error", err)
	}
}

func TestValidateContactForm(t *testing.T) {
	valid := ContactForm{
		Name:    "Lars Berg",
		Email:   "lars@example.dk",
		Message: "We need a new webshop before summer.",
	}

	tests := []struct {
		name      string
		mutate    func(f *ContactForm)
		wantParam string
	}{
		{"valid", func(f *ContactForm) {}, ""},
		{"short name", func(f *ContactForm) { f.Name = "L" }, "name"},
		{"bad email", func(f *ContactForm) { f.Email = "lars" }, "email"},
		{"bad phone", func(f *ContactForm) { f.Phone = "abc" }, "phone"},
		{"long subject", func(f *ContactForm) { f.Subject = strings.Repeat("s", MaxSubject+1) }, "subject"},
		{"short message", func(f *ContactForm) { f.Message = "hej" }, "message"},
		{"long message", func(f *ContactForm) { f.Message = strings.Repeat("m", MaxMessage+1) }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := ValidateContactForm(&f)
			if tt.wantParam == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Param != tt.wantParam {
				t.Errorf("error = %v, want param %q", err, tt.wantParam)
			}
		})
	}
}
