package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/nordweb/portal/pkg/api"
)

// mockAuthn is a test authenticator with configurable behavior.
type mockAuthn struct {
	result AuthResult
	calls  int
}

func (m *mockAuthn) Authenticate(_ context.Context, _ *http.Request) AuthResult {
	m.calls++
	return m.result
}

func TestAuthChain_FirstYesStops(t *testing.T) {
	second := &mockAuthn{result: AuthResult{Decision: No, Err: ErrUnauthenticated}}
	chain := &AuthChain{
		Authenticators: []Authenticator{
			&mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: "usr_alice"}}},
			second,
		},
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Yes {
		t.Errorf("Decision = %s, want yes", result.Decision)
	}
	if result.Identity.Subject != "usr_alice" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "usr_alice")
	}
	if second.calls != 0 {
		t.Errorf("second authenticator called %d times, want 0", second.calls)
	}
}

func TestAuthChain_FirstNoStops(t *testing.T) {
	chain := &AuthChain{
		Authenticators: []Authenticator{
			&mockAuthn{result: AuthResult{Decision: No, Err: ErrUnauthenticated}},
			&mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: "usr_bob"}}},
		},
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != No {
		t.Errorf("Decision = %s, want no", result.Decision)
	}
}

func TestAuthChain_AllAbstain(t *testing.T) {
	chain := &AuthChain{
		Authenticators: []Authenticator{
			&mockAuthn{result: AuthResult{Decision: Abstain}},
			&mockAuthn{result: AuthResult{Decision: Abstain}},
		},
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Abstain {
		t.Errorf("Decision = %s, want abstain", result.Decision)
	}
	if result.Identity != nil {
		t.Errorf("Identity = %+v, want nil", result.Identity)
	}
}

func TestAuthChain_Empty(t *testing.T) {
	chain := &AuthChain{}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Abstain {
		t.Errorf("Decision = %s, want abstain (empty chain)", result.Decision)
	}
}

func TestAuthChain_AbstainThenYes(t *testing.T) {
	chain := &AuthChain{
		Authenticators: []Authenticator{
			&mockAuthn{result: AuthResult{Decision: Abstain}},
			&mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: "ci-metrics"}}},
		},
	}

	r, _ := http.NewRequest("GET", "/", nil)
	result := chain.Authenticate(context.Background(), r)

	if result.Decision != Yes {
		t.Errorf("Decision = %s, want yes", result.Decision)
	}
	if result.Identity.Subject != "ci-metrics" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "ci-metrics")
	}
}

func TestIdentity_RolePredicates(t *testing.T) {
	tests := []struct {
		name      string
		id        *Identity
		wantAdmin bool
		wantOwner bool
	}{
		{"nil", nil, false, false},
		{"user", &Identity{Role: api.RoleUser}, false, false},
		{"admin", &Identity{Role: api.RoleAdmin}, true, false},
		{"owner", &Identity{Role: api.RoleOwner}, true, true},
		{"unknown role", &Identity{Role: "root"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.IsAdmin(); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.wantAdmin)
			}
			if got := tt.id.IsOwner(); got != tt.wantOwner {
				t.Errorf("IsOwner() = %v, want %v", got, tt.wantOwner)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if IdentityFromContext(ctx) != nil {
		t.Error("expected nil identity from empty context")
	}

	id := &Identity{Subject: "usr_alice"}
	ctx = SetIdentity(ctx, id)
	got := IdentityFromContext(ctx)
	if got == nil || got.Subject != "usr_alice" {
		t.Errorf("got %v, want usr_alice", got)
	}
}
