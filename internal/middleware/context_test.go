package middleware

import (
	"context"
	"testing"
)

func TestUserIDFromContext_Found(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), 42, "alice")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestUserIDFromContext_NotFound(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	if err == nil {
		t.Fatal("expected error for context without user ID")
	}
}

func TestUserIDFromContext_ZeroIDIsInvalid(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), 0, "alice")

	_, err := UserIDFromContext(ctx)
	if err == nil {
		t.Fatal("expected error for zero user ID")
	}
}

func TestUsernameFromContext_Found(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), 42, "alice")

	username, err := UsernameFromContext(ctx)
	if err != nil {
		t.Fatalf("UsernameFromContext() error = %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want %q", username, "alice")
	}
}

func TestUsernameFromContext_NotFound(t *testing.T) {
	_, err := UsernameFromContext(context.Background())
	if err == nil {
		t.Fatal("expected error for context without username")
	}
}
