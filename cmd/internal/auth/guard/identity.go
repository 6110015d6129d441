package guard

import (
	"context"
	"time"

	"minisocial/cmd/identity"
)

// Identity is the authenticated caller for the lifetime of one request.
type Identity struct {
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the Identity attached by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// Resolver maps a verified user id to an Identity.
type Resolver interface {
	ResolveIdentity(ctx context.Context, userID string) (Identity, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, userID string) (Identity, error)

func (f ResolverFunc) ResolveIdentity(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

type userGetter interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

// UserResolver resolves identities from the user store. A deleted user
// surfaces as the store's NotFound error.
func UserResolver(users userGetter) Resolver {
	return ResolverFunc(func(ctx context.Context, userID string) (Identity, error) {
		u, err := users.GetUserByID(ctx, userID)
		if err != nil {
			return Identity{}, err
		}
		return Identity{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		}, nil
	})
}
