package storage

import (
	"context"
	"testing"
)

func TestSetGetClientScope(t *testing.T) {
	ctx := context.Background()

	if got := GetClientScope(ctx); got != "" {
		t.Errorf("GetClientScope(empty ctx) = %q, want %q", got, "")
	}

	ctx = SetClientScope(ctx, "usr_a")
	if got := GetClientScope(ctx); got != "usr_a" {
		t.Errorf("GetClientScope = %q, want %q", got, "usr_a")
	}

	ctx = SetClientScope(ctx, "usr_b")
	if got := GetClientScope(ctx); got != "usr_b" {
		t.Errorf("GetClientScope = %q, want %q", got, "usr_b")
	}
}

func TestGetClientScope_NoCollision(t *testing.T) {
	ctx := context.WithValue(context.Background(), "client", "wrong")
	if got := GetClientScope(ctx); got != "" {
		t.Errorf("GetClientScope should not match string key, got %q", got)
	}
}
