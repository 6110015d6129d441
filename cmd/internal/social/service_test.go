package social

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"minisocial/cmd/identity"
	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/auth/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// stepClock advances one second per call so ordering is deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	svc   *Service
	pub   *recordingPublisher
	alice guard.Identity
	bob   guard.Identity
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	users := identity.NewMemoryStore()
	mk := func(name, email string) guard.Identity {
		u, err := users.CreateUser(context.Background(), identity.CreateUserInput{
			Username: name, Email: email, PasswordHash: "x",
		})
		require.NoError(t, err)
		return guard.Identity{UserID: u.ID, Username: u.Username, Email: u.Email}
	}

	pub := &recordingPublisher{}
	return fixture{
		svc:   NewService(NewMemoryStore(users), WithPublisher(pub), WithClock(stepClock())),
		pub:   pub,
		alice: mk("alice", "alice@example.com"),
		bob:   mk("bob", "bob@example.com"),
	}
}

func strp(s string) *string { return &s }

func TestCreatePost_RequiresTextOrImage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []CreatePostInput{
		{},
		{Text: strp("   ")},
		{Text: strp(""), ImageURL: strp(" ")},
	} {
		_, err := f.svc.CreatePost(ctx, f.alice, in)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
		assert.Equal(t, "Post must contain either text or image", apperr.Message(err))
	}

	p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{ImageURL: strp("https://img.example/x.png")})
	require.NoError(t, err)
	assert.Nil(t, p.Text)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, f.alice.UserID, p.UserID)
	assert.Equal(t, "alice", p.User.Username)

	assert.Equal(t, []EventType{EventPostCreated}, f.pub.types())
}

func TestListPosts_PaginatesNewestFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	var created []string
	for i := 0; i < 5; i++ {
		p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("post")})
		require.NoError(t, err)
		created = append(created, p.ID)
	}

	page, err := f.svc.ListPosts(ctx, f.bob, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, created[4], page.Posts[0].ID)
	assert.Equal(t, created[3], page.Posts[1].ID)

	last, err := f.svc.ListPosts(ctx, f.bob, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Posts, 1)
	assert.Equal(t, created[0], last.Posts[0].ID)

	beyond, err := f.svc.ListPosts(ctx, f.bob, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.NotNil(t, beyond.Posts)
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	cases := []struct{ page, limit, wantPage, wantLimit int }{
		{0, 0, 1, DefaultPageLimit},
		{-3, -1, 1, DefaultPageLimit},
		{2, 500, 2, MaxPageLimit},
		{4, 25, 4, 25},
	}
	for _, tc := range cases {
		p, l := NormalizePage(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantLimit, l)
	}
}

func TestDeletePost_OnlyOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.bob, CreatePostInput{Text: strp("mine")})
	require.NoError(t, err)

	err = f.svc.DeletePost(ctx, f.alice, p.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	assert.Equal(t, "You are not authorized to delete this post", apperr.Message(err))

	_, err = f.svc.GetPost(ctx, f.alice, p.ID)
	require.NoError(t, err, "post must survive a forbidden delete")

	require.NoError(t, f.svc.DeletePost(ctx, f.bob, p.ID))

	_, err = f.svc.GetPost(ctx, f.bob, p.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	err = f.svc.DeletePost(ctx, f.bob, p.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Equal(t, "Post not found", apperr.Message(err))

	assert.Equal(t, []EventType{EventPostCreated, EventPostDeleted}, f.pub.types())
}

func TestToggleLike(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("hi")})
	require.NoError(t, err)

	liked, err := f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	v, err := f.svc.GetPost(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.LikeCount)
	assert.True(t, v.IsLikedByUser)
	require.Len(t, v.Likes, 1)
	assert.Equal(t, "bob", v.Likes[0].User.Username)

	other, err := f.svc.GetPost(ctx, f.alice, p.ID)
	require.NoError(t, err)
	assert.False(t, other.IsLikedByUser)

	liked, err = f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	likes, err := f.svc.ListLikes(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	_, err = f.svc.ToggleLike(ctx, f.bob, "missing")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Equal(t, "Post not found", apperr.Message(err))

	assert.Equal(t, []EventType{EventPostCreated, EventPostLiked, EventPostUnliked}, f.pub.types())
}

func TestListLikes_NewestFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("hi")})
	require.NoError(t, err)

	_, err = f.svc.ToggleLike(ctx, f.alice, p.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)

	likes, err := f.svc.ListLikes(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, f.bob.UserID, likes[0].UserID)
	assert.Equal(t, f.alice.UserID, likes[1].UserID)
}

func TestComments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("hi")})
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.bob, "missing", "  ")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err), "blank text is checked before the post")
	assert.Equal(t, "Comment text is required", apperr.Message(err))

	_, err = f.svc.AddComment(ctx, f.bob, "missing", "hello")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	first, err := f.svc.AddComment(ctx, f.bob, p.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Comment)
	second, err := f.svc.AddComment(ctx, f.alice, p.ID, "second")
	require.NoError(t, err)

	comments, err := f.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)

	err = f.svc.DeleteComment(ctx, f.alice, first.ID)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
	assert.Equal(t, "You are not authorized to delete this comment", apperr.Message(err))

	require.NoError(t, f.svc.DeleteComment(ctx, f.bob, first.ID))

	err = f.svc.DeleteComment(ctx, f.bob, first.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
	assert.Equal(t, "Comment not found", apperr.Message(err))

	v, err := f.svc.GetPost(ctx, f.alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.CommentCount)
}

func TestDeletePost_CascadesLikesAndComments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("hi")})
	require.NoError(t, err)
	_, err = f.svc.ToggleLike(ctx, f.bob, p.ID)
	require.NoError(t, err)
	c, err := f.svc.AddComment(ctx, f.bob, p.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, f.alice, p.ID))

	_, err = f.svc.ListLikes(ctx, p.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	err = f.svc.DeleteComment(ctx, f.bob, c.ID)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestListUserPosts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, f.alice, CreatePostInput{Text: strp("a1")})
	require.NoError(t, err)
	b1, err := f.svc.CreatePost(ctx, f.bob, CreatePostInput{Text: strp("b1")})
	require.NoError(t, err)

	posts, err := f.svc.ListUserPosts(ctx, f.alice, f.bob.UserID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, b1.ID, posts[0].ID)

	none, err := f.svc.ListUserPosts(ctx, f.alice, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
