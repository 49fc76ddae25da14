package api

import (
	"encoding/json"
	"testing"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role    Role
		isAdmin bool
		isOwner bool
	}{
		{RoleUser, false, false},
		{RoleAdmin, true, false},
		{RoleOwner, true, true},
		{Role("guest"), false, false},
		{Role(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.IsAdmin(); got != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.isAdmin)
			}
			if got := tt.role.IsOwner(); got != tt.isOwner {
				t.Errorf("IsOwner() = %v, want %v", got, tt.isOwner)
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleOwner, false},
		{RoleOwner, RoleAdmin, true},
		{Role("root"), RoleUser, false},
	}

	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	if err != nil {
		t.Fatalf("ParseRole error: %v", err)
	}
	if r != RoleAdmin {
		t.Errorf("ParseRole = %q, want %q", r, RoleAdmin)
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(&Profile{ID: "usr_x", Role: RoleAdmin})
	if !s.IsAdmin || s.IsOwner {
		t.Errorf("session predicates = admin:%v owner:%v, want admin:true owner:false", s.IsAdmin, s.IsOwner)
	}
}

func TestDocumentStorageKeyNotSerialized(t *testing.T) {
	data, err := json.Marshal(Document{ID: "doc_1", StorageKey: "projects/secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["storage_key"]; ok {
		t.Error("storage key must not be part of the JSON representation")
	}
	if _, ok := m["StorageKey"]; ok {
		t.Error("storage key must not be part of the JSON representation")
	}
}

func TestPaginate(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	id := func(s string) string { return s }

	tests := []struct {
		name    string
		opts    ListOptions
		want    []string
		hasMore bool
	}{
		{"all", ListOptions{}, []string{"a", "b", "c", "d", "e"}, false},
		{"limit", ListOptions{Limit: 2}, []string{"a", "b"}, true},
		{"after", ListOptions{After: "b"}, []string{"c", "d", "e"}, false},
		{"after unknown", ListOptions{After: "zz"}, []string{}, false},
		{"before", ListOptions{Before: "c"}, []string{"a", "b"}, false},
		{"before first", ListOptions{Before: "a"}, []string{}, false},
		{"after with limit", ListOptions{After: "a", Limit: 3}, []string{"b", "c", "d"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(ids, tt.opts, id)
			if got.Object != "list" {
				t.Errorf("Object = %q, want list", got.Object)
			}
			if len(got.Data) != len(tt.want) {
				t.Fatalf("Data = %v, want %v", got.Data, tt.want)
			}
			for i := range tt.want {
				if got.Data[i] != tt.want[i] {
					t.Errorf("Data[%d] = %q, want %q", i, got.Data[i], tt.want[i])
				}
			}
			if got.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", got.HasMore, tt.hasMore)
			}
			if len(tt.want) > 0 {
				if got.FirstID != tt.want[0] || got.LastID != tt.want[len(tt.want)-1] {
					t.Errorf("cursors = %q..%q, want %q..%q", got.FirstID, got.LastID, tt.want[0], tt.want[len(tt.want)-1])
				}
			}
		})
	}
}

func TestEffectiveLimit(t *testing.T) {
	if got := (ListOptions{}).EffectiveLimit(); got != DefaultListLimit {
		t.Errorf("zero limit = %d, want %d", got, DefaultListLimit)
	}
	if got := (ListOptions{Limit: 500}).EffectiveLimit(); got != MaxListLimit {
		t.Errorf("large limit = %d, want %d", got, MaxListLimit)
	}
	if got := (ListOptions{Limit: 7}).EffectiveLimit(); got != 7 {
		t.Errorf("limit = %d, want 7", got)
	}
}
