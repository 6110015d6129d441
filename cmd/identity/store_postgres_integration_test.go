package identity

import (
	"context"
	"testing"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/store/pgtest"
)

// Integration tests are opt-in and require MINISOCIAL_TEST_DATABASE_URL.

func TestPostgresStore_CreateUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	s, err := NewPostgresStore(pgtest.Open(t))
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	u, err := s.CreateUser(ctx, CreateUserInput{Username: "al", Email: "a@x.com", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create user 1: %v", err)
	}

	_, err = s.CreateUser(ctx, CreateUserInput{Username: "al2", Email: "A@X.COM", PasswordHash: "h2"})
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	exists, err := s.EmailExists(ctx, " a@x.com ")
	if err != nil || !exists {
		t.Fatalf("EmailExists=%v err=%v", exists, err)
	}

	ua, err := s.GetUserAuthByEmail(ctx, "A@x.com")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if ua.User.ID != u.ID || ua.PasswordHash != "h1" {
		t.Fatalf("unexpected auth row: %+v", ua)
	}
}

func TestPostgresStore_GetUserByID(t *testing.T) {
	t.Parallel()

	s, err := NewPostgresStore(pgtest.Open(t))
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	u, err := s.CreateUser(ctx, CreateUserInput{Username: "bo", Email: "b@x.com", PasswordHash: "h", Now: now})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.ID != u.ID || got.Username != "bo" || got.Email != "b@x.com" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := s.GetUserByID(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
