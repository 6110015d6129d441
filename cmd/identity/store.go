package identity

import (
	"context"
	"time"
)

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAuth is a User plus its stored password digest. It must never be
// serialized to clients.
type UserAuth struct {
	User         User
	PasswordHash string `json:"-"`
}

// CreateUserInput describes a signup. PasswordHash is already hashed.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Now          time.Time
}

// Store is the identity persistence boundary.
//
// Lookups return an apperr NotFound error when the user is absent, never a nil User.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
