package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusAndMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", Validation("op", "Comment text is required"), http.StatusBadRequest, "Comment text is required"},
		{"conflict", Conflict("op", "Email already registered"), http.StatusBadRequest, "Email already registered"},
		{"unauthorized", Unauthorized("op", "Token expired"), http.StatusUnauthorized, "Token expired"},
		{"forbidden", Forbidden("op", "nope"), http.StatusForbidden, "nope"},
		{"not found", NotFound("op", "Post not found"), http.StatusNotFound, "Post not found"},
		{"not found no msg", NotFound("op", ""), http.StatusNotFound, "Not Found"},
		{"storage", Storage("op", errors.New("connection refused")), http.StatusInternalServerError, "Internal server error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		{"wrapped", fmt.Errorf("svc: %w", NotFound("op", "User not found")), http.StatusNotFound, "User not found"},
	}

	for _, tc := range cases {
		if got := Status(tc.err); got != tc.wantStatus {
			t.Fatalf("%s: Status=%d want %d", tc.name, got, tc.wantStatus)
		}
		if got := Message(tc.err); got != tc.wantMsg {
			t.Fatalf("%s: Message=%q want %q", tc.name, got, tc.wantMsg)
		}
	}
}

func TestStorage_UnwrapsCause(t *testing.T) {
	t.Parallel()

	err := Storage("social.CreatePost", context.DeadlineExceeded)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage kind")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to unwrap")
	}
	if Op(err) != "social.CreatePost" {
		t.Fatalf("Op=%q", Op(err))
	}
}

func TestWithMessage(t *testing.T) {
	t.Parallel()

	err := WithMessage(NotFound("guard.Authorize", "resource not found"), "Comment not found")
	if Message(err) != "Comment not found" || !IsNotFound(err) {
		t.Fatalf("unexpected: %v", err)
	}

	plain := errors.New("x")
	if WithMessage(plain, "y") != plain {
		t.Fatalf("non-OpError must pass through")
	}
}
