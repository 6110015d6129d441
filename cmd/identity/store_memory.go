package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/ids"
)

// MemoryStore is the dev fallback used when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]UserAuth
	byEmail map[string]string // email_norm -> id
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]UserAuth),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if err := validateCreate(op, in); err != nil {
		return User{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.New(now)
	if err != nil {
		return User{}, apperr.Storage(op, err)
	}

	norm := NormalizeEmail(in.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[norm]; taken {
		return User{}, apperr.Conflict(op, "Email already registered")
	}

	u := User{
		ID:        id,
		Username:  CleanUsername(in.Username),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: now,
	}
	s.byID[id] = UserAuth{User: u, PasswordHash: in.PasswordHash}
	s.byEmail[norm] = id
	return u, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ua, ok := s.byID[id]
	if !ok {
		return User{}, apperr.NotFound("identity.GetUserByID", "User not found")
	}
	return ua.User, nil
}

func (s *MemoryStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return UserAuth{}, apperr.NotFound("identity.GetUserAuthByEmail", "User not found")
	}
	return s.byID[id], nil
}

func (s *MemoryStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byEmail[NormalizeEmail(email)]
	return ok, nil
}

func validateCreate(op string, in CreateUserInput) error {
	switch {
	case CleanUsername(in.Username) == "":
		return apperr.Validation(op, "username is required")
	case NormalizeEmail(in.Email) == "":
		return apperr.Validation(op, "email is required")
	case in.PasswordHash == "":
		return apperr.Validation(op, "password hash is required")
	}
	return nil
}
