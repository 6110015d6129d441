package guard

import (
	"context"
	"strings"

	"minisocial/cmd/internal/apperr"
)

// OwnerLookup returns the owner id of a resource, or an apperr NotFound
// error when the resource does not exist.
type OwnerLookup func(ctx context.Context, resourceID string) (ownerID string, err error)

// Target names the resource an action applies to.
type Target struct {
	Kind  string // "post", "comment"
	ID    string
	Owner OwnerLookup
}

// Authorize allows action on t only when caller owns it.
//
//   - resource absent: NotFound ("Post not found")
//   - owner differs: Forbidden ("You are not authorized to delete this post")
//   - lookup failure: Storage
func Authorize(ctx context.Context, caller Identity, action string, t Target) error {
	const op = "guard.Authorize"

	owner, err := t.Owner(ctx, t.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound(op, capitalize(t.Kind)+" not found")
		}
		return apperr.Storage(op, err)
	}
	if caller.UserID == "" || owner != caller.UserID {
		return apperr.Forbidden(op, "You are not authorized to "+action+" this "+t.Kind)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return "Resource"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
