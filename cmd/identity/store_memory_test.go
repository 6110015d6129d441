package identity

import (
	"context"
	"testing"
	"time"

	"minisocial/cmd/internal/apperr"
)

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u, err := s.CreateUser(ctx, CreateUserInput{
		Username:     " al ",
		Email:        "A@X.com",
		PasswordHash: "$argon2id$stub",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Username != "al" || u.Email != "A@X.com" || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", u)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil || got != u {
		t.Fatalf("GetUserByID=%+v err=%v", got, err)
	}

	ua, err := s.GetUserAuthByEmail(ctx, "a@x.COM")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	if ua.User.ID != u.ID || ua.PasswordHash != "$argon2id$stub" {
		t.Fatalf("unexpected auth: %+v", ua)
	}

	exists, err := s.EmailExists(ctx, "a@x.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists=%v err=%v", exists, err)
	}
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	in := CreateUserInput{Username: "al", Email: "a@x.com", PasswordHash: "h"}
	if _, err := s.CreateUser(ctx, in); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	in.Email = "A@x.com"
	_, err := s.CreateUser(ctx, in)
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperr.Message(err) != "Email already registered" {
		t.Fatalf("message=%q", apperr.Message(err))
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetUserByID(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetUserAuthByEmail(ctx, "nobody@x.com"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	exists, err := s.EmailExists(ctx, "nobody@x.com")
	if err != nil || exists {
		t.Fatalf("EmailExists=%v err=%v", exists, err)
	}
}

func TestMemoryStore_ValidatesInput(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	cases := []CreateUserInput{
		{Email: "a@x.com", PasswordHash: "h"},
		{Username: "al", PasswordHash: "h"},
		{Username: "al", Email: "a@x.com"},
	}
	for _, in := range cases {
		if _, err := s.CreateUser(context.Background(), in); apperr.Status(err) != 400 {
			t.Fatalf("CreateUser(%+v) err=%v, want validation", in, err)
		}
	}
}
