package api

import (
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

// Role is the access tier stored on every profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// rank orders roles so that a higher tier includes every lower one.
func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleOwner:
		return 3
	}
	return 0
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// IsAdmin is true for admins and owners.
func (r Role) IsAdmin() bool {
	return r.rank() >= RoleAdmin.rank()
}

// IsOwner is true only for owners.
func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// AtLeast reports whether r grants at least the access of min.
// Unknown roles never satisfy any minimum.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.rank() >= min.rank()
}

// ParseRole converts a string to a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

// Profile is the account record of a portal user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials pairs a profile with its password hash. It never leaves
// the server.
type Credentials struct {
	Profile      Profile
	PasswordHash []byte
}

// Session is the view of the current caller returned by the session endpoint.
type Session struct {
	Profile *Profile `json:"profile"`
	IsAdmin bool     `json:"is_admin"`
	IsOwner bool     `json:"is_owner"`
}

// NewSession derives the role predicates from the profile.
func NewSession(p *Profile) *Session {
	return &Session{
		Profile: p,
		IsAdmin: p.Role.IsAdmin(),
		IsOwner: p.Role.IsOwner(),
	}
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectReview     ProjectStatus = "review"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectReview, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project is a customer engagement.
type Project struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Website     string        `json:"website,omitempty"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	TargetDate  *time.Time    `json:"target_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Progress is derived from the phases and never persisted.
	Progress int `json:"progress"`
}

// ProjectInput carries the writable fields for create and update. Nil
// pointers leave the stored value untouched on update.
type ProjectInput struct {
	ClientID    *string        `json:"client_id,omitempty"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Website     *string        `json:"website,omitempty"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	TargetDate  *time.Time     `json:"target_date,omitempty"`
}

// ProjectDetail is a project together with everything the detail view shows.
type ProjectDetail struct {
	Project       *Project     `json:"project"`
	Phases        []*Phase     `json:"phases"`
	Summary       PhaseSummary `json:"summary"`
	LatestMetrics []*Metric    `json:"latest_metrics"`
	Updates       []*Update    `json:"updates"`
	Documents     []*Document  `json:"documents"`
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

// PhaseStatus is the state of a single milestone.
type PhaseStatus string

const (
	PhasePending    PhaseStatus = "pending"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
)

// Valid reports whether s is a known phase status.
func (s PhaseStatus) Valid() bool {
	switch s {
	case PhasePending, PhaseInProgress, PhaseCompleted:
		return true
	}
	return false
}

// Phase is a named milestone within a project.
type Phase struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Position    int         `json:"position"`
	Status      PhaseStatus `json:"status"`
	Percent     int         `json:"percent"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PhaseInput carries the writable phase fields.
type PhaseInput struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Position    *int         `json:"position,omitempty"`
	Status      *PhaseStatus `json:"status,omitempty"`
	Percent     *int         `json:"percent,omitempty"`
}

// PhaseSummary counts phases by status alongside the averaged progress.
type PhaseSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Percent    int `json:"percent"`
}

// ---------------------------------------------------------------------------
// Updates, metrics, documents
// ---------------------------------------------------------------------------

// UpdateKind classifies a project update.
type UpdateKind string

const (
	UpdateNote        UpdateKind = "note"
	UpdateMilestone   UpdateKind = "milestone"
	UpdateDeliverable UpdateKind = "deliverable"
)

// Valid reports whether k is a known update kind.
func (k UpdateKind) Valid() bool {
	switch k {
	case UpdateNote, UpdateMilestone, UpdateDeliverable:
		return true
	}
	return false
}

// Update is a progress note posted to a project.
type Update struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	AuthorID  string     `json:"author_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Kind      UpdateKind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
}

// Metric is a single measurement recorded against a project, such as a
// performance score or monthly visitors.
type Metric struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Document is the metadata of a file attached to a project. The content
// lives in the blob store under StorageKey.
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UploaderID  string    `json:"uploader_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Contact
// ---------------------------------------------------------------------------

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Company    string    `json:"company,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Message    string    `json:"message"`
	RemoteAddr string    `json:"-"`
	Delivered  bool      `json:"delivered"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContactForm is the raw form as submitted by a visitor. Website is a
// honeypot that humans never see.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

// Dashboard is the landing view of the portal.
type Dashboard struct {
	Projects      []*Project  `json:"projects"`
	RecentUpdates []*Update   `json:"recent_updates"`
	Admin         *AdminStats `json:"admin,omitempty"`
}

// AdminStats is only populated for admins and owners.
type AdminStats struct {
	ProjectsByStatus map[ProjectStatus]int `json:"projects_by_status"`
	Clients          int                   `json:"clients"`
	UndeliveredMail  int                   `json:"undelivered_contact_messages"`
	ContactMessages  int                   `json:"contact_messages"`
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

// ListOptions controls cursor pagination and ordering for list operations.
type ListOptions struct {
	After  string // Cursor: return items after this ID.
	Before string // Cursor: return items before this ID.
	Limit  int    // Maximum number of items to return (default 20, max 100).
	Order  string // Sort order: "asc" or "desc" (default "desc").
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// EffectiveLimit clamps the requested limit to the allowed range.
func (o ListOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	}
	return o.Limit
}

// List is a page of results.
type List[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
}

// Paginate applies cursor pagination to items that are already sorted.
// id extracts the cursor key of an element.
func Paginate[T any](items []T, opts ListOptions, id func(T) string) *List[T] {
	if opts.After != "" {
		idx := indexOf(items, opts.After, id)
		if idx >= 0 {
			items = items[idx+1:]
		} else {
			items = nil
		}
	} else if opts.Before != "" {
		idx := indexOf(items, opts.Before, id)
		if idx > 0 {
			items = items[:idx]
		} else {
			items = nil
		}
	}

	limit := opts.EffectiveLimit()
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	result := &List[T]{
		Object:  "list",
		Data:    items,
		HasMore: hasMore,
	}
	if len(items) > 0 {
		result.FirstID = id(items[0])
		result.LastID = id(items[len(items)-1])
	}
	if result.Data == nil {
		result.Data = []T{}
	}
	return result
}

func indexOf[T any](items []T, target string, id func(T) string) int {
	for i, it := range items {
		if id(it) == target {
			return i
		}
	}
	return -1
}
