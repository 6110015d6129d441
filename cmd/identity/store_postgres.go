package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/ids"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
// The pool is owned by the caller; this store never closes it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

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

	u := User{
		ID:        id,
		Username:  CleanUsername(in.Username),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: now,
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, email_norm, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		u.ID, u.Username, u.Email, NormalizeEmail(u.Email), in.PasswordHash, now,
	).Scan(&u.CreatedAt)
	if err != nil {
		if pgIsUniqueViolation(err, "uq_users_email_norm") {
			return User{}, apperr.Conflict(op, "Email already registered")
		}
		return User{}, apperr.Storage(op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(op, "User not found")
		}
		return User{}, apperr.Storage(op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	var ua UserAuth
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at, password_hash
		   FROM users
		  WHERE email_norm = $1`,
		NormalizeEmail(email),
	).Scan(&ua.User.ID, &ua.User.Username, &ua.User.Email, &ua.User.CreatedAt, &ua.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserAuth{}, apperr.NotFound(op, "User not found")
		}
		return UserAuth{}, apperr.Storage(op, err)
	}
	return ua, nil
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email_norm = $1)`,
		NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, apperr.Storage("identity.EmailExists", err)
	}
	return exists, nil
}

// pgIsUniqueViolation matches 23505 on the named constraint, or on any
// constraint when name is empty.
func pgIsUniqueViolation(err error, name string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return name == "" || strings.EqualFold(pgErr.ConstraintName, name)
}
