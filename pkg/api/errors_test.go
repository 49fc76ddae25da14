package api

import (
	"encoding/json"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	err := NewInvalidRequestError("name", "name is required")
	want := "invalid_request: name is required (param: name)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NewNotFoundError("project not found")
	want = "not_found: project not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want ErrorType
	}{
		{"invalid", NewInvalidRequestError("x", "bad"), ErrorTypeInvalidRequest},
		{"unauthorized", NewUnauthorizedError("who"), ErrorTypeUnauthorized},
		{"forbidden", NewForbiddenError("no"), ErrorTypeForbidden},
		{"not found", NewNotFoundError("gone"), ErrorTypeNotFound},
		{"conflict", NewConflictError("email", "taken"), ErrorTypeConflict},
		{"server", NewServerError("boom"), ErrorTypeServerError},
		{"upstream", NewUpstreamError("mail down"), ErrorTypeUpstream},
		{"rate", NewTooManyRequestsError("slow down"), ErrorTypeTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.want {
				t.Errorf("Type = %q, want %q", tt.err.Type, tt.want)
			}
		})
	}
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: NewConflictError("email", "email already registered")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"error":{"type":"conflict","param":"email","message":"email already registered"}}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}
