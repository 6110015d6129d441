package social

import (
	"context"
	"testing"
	"time"

	"minisocial/cmd/identity"
	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/store/pgtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests are opt-in and require MINISOCIAL_TEST_DATABASE_URL.

func TestPostgresStore_PostLifecycle(t *testing.T) {
	t.Parallel()

	pool := pgtest.Open(t)
	users, err := identity.NewPostgresStore(pool)
	require.NoError(t, err)
	s, err := NewPostgresStore(pool)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	alice, err := users.CreateUser(ctx, identity.CreateUserInput{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, identity.CreateUserInput{Username: "bob", Email: "b@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	text := "hello"
	p, err := s.CreatePost(ctx, NewPost{UserID: alice.ID, Text: &text, Now: now})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Nil(t, p.ImageURL)

	liked, err := s.ToggleLike(ctx, p.ID, bob.ID, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = s.CreateComment(ctx, NewComment{PostID: p.ID, UserID: bob.ID, Comment: "first", Now: now.Add(2 * time.Second)})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, NewComment{PostID: p.ID, UserID: alice.ID, Comment: "second", Now: now.Add(3 * time.Second)})
	require.NoError(t, err)

	v, err := s.GetPost(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)
	assert.Equal(t, 2, v.CommentCount)
	assert.True(t, v.IsLikedByUser)

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Comment)

	posts, total, err := s.ListPosts(ctx, ListQuery{ViewerID: alice.ID, AuthorID: alice.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].IsLikedByUser)

	owner, err := s.PostOwner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, owner)

	liked, err = s.ToggleLike(ctx, p.ID, bob.ID, now.Add(4*time.Second))
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	assert.True(t, apperr.IsNotFound(s.DeletePost(ctx, p.ID)))

	comments, err = s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = s.ToggleLike(ctx, p.ID, bob.ID, now)
	assert.True(t, apperr.IsNotFound(err))

	_, err = s.CreateComment(ctx, NewComment{PostID: p.ID, UserID: bob.ID, Comment: "late", Now: now})
	assert.True(t, apperr.IsNotFound(err))
}
