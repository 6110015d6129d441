package social

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/auth/guard"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Service applies validation, ownership and event fan-out on top of a Store.
type Service struct {
	store Store
	pub   Publisher
	log   *slog.Logger
	now   func() time.Time
}

type ServiceOption func(*Service)

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		pub:   nopPublisher{},
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreatePostInput is the raw request. Blank fields count as absent.
type CreatePostInput struct {
	Text     *string
	ImageURL *string
}

func (s *Service) CreatePost(ctx context.Context, caller guard.Identity, in CreatePostInput) (Post, error) {
	const op = "social.CreatePost"

	text := nonBlank(in.Text)
	image := nonBlank(in.ImageURL)
	if text == nil && image == nil {
		return Post{}, apperr.Validation(op, "Post must contain either text or image")
	}

	p, err := s.store.CreatePost(ctx, NewPost{
		UserID:   caller.UserID,
		Text:     text,
		ImageURL: image,
		Now:      s.now(),
	})
	if err != nil {
		return Post{}, err
	}

	s.pub.Publish(Event{Type: EventPostCreated, PostID: p.ID, UserID: p.UserID, At: p.CreatedAt, Post: &p})
	return p, nil
}

// NormalizePage clamps page to >= 1 and limit to [1..MaxPageLimit],
// substituting defaults for non-positive values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func (s *Service) ListPosts(ctx context.Context, caller guard.Identity, page, limit int) (Page, error) {
	page, limit = NormalizePage(page, limit)

	posts, total, err := s.store.ListPosts(ctx, ListQuery{
		ViewerID: caller.UserID,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return Page{}, err
	}
	if posts == nil {
		posts = []PostView{}
	}

	return Page{
		Posts:      posts,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// GetPost returns one post with its likes (newest first) and comments
// (oldest first).
func (s *Service) GetPost(ctx context.Context, caller guard.Identity, id string) (PostDetail, error) {
	v, err := s.store.GetPost(ctx, id, caller.UserID)
	if err != nil {
		return PostDetail{}, err
	}
	d := PostDetail{PostView: v}
	if d.Likes, err = s.store.ListLikes(ctx, id); err != nil {
		return PostDetail{}, err
	}
	if d.Comments, err = s.store.ListComments(ctx, id); err != nil {
		return PostDetail{}, err
	}
	if d.Likes == nil {
		d.Likes = []Like{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	return d, nil
}

func (s *Service) DeletePost(ctx context.Context, caller guard.Identity, id string) error {
	err := guard.Authorize(ctx, caller, "delete", guard.Target{Kind: "post", ID: id, Owner: s.store.PostOwner})
	if err != nil {
		s.logDenied(ctx, "post", id, caller, err)
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}

	s.pub.Publish(Event{Type: EventPostDeleted, PostID: id, UserID: caller.UserID, At: s.now()})
	return nil
}

// ToggleLike flips the caller's like on a post and reports the new state.
func (s *Service) ToggleLike(ctx context.Context, caller guard.Identity, postID string) (bool, error) {
	now := s.now()
	liked, err := s.store.ToggleLike(ctx, postID, caller.UserID, now)
	if err != nil {
		return false, err
	}

	typ := EventPostUnliked
	if liked {
		typ = EventPostLiked
	}
	s.pub.Publish(Event{Type: typ, PostID: postID, UserID: caller.UserID, At: now})
	return liked, nil
}

// ListLikes is newest first. A missing post is NotFound.
func (s *Service) ListLikes(ctx context.Context, postID string) ([]Like, error) {
	if _, err := s.store.PostOwner(ctx, postID); err != nil {
		return nil, err
	}
	likes, err := s.store.ListLikes(ctx, postID)
	if likes == nil && err == nil {
		likes = []Like{}
	}
	return likes, err
}

// AddComment rejects blank text before looking at the post.
func (s *Service) AddComment(ctx context.Context, caller guard.Identity, postID, text string) (Comment, error) {
	const op = "social.AddComment"

	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, apperr.Validation(op, "Comment text is required")
	}

	c, err := s.store.CreateComment(ctx, NewComment{
		PostID:  postID,
		UserID:  caller.UserID,
		Comment: text,
		Now:     s.now(),
	})
	if err != nil {
		return Comment{}, err
	}

	s.pub.Publish(Event{Type: EventCommentCreated, PostID: c.PostID, CommentID: c.ID, UserID: c.UserID, At: c.CreatedAt, Comment: &c})
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if _, err := s.store.PostOwner(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, postID)
	if comments == nil && err == nil {
		comments = []Comment{}
	}
	return comments, err
}

func (s *Service) DeleteComment(ctx context.Context, caller guard.Identity, id string) error {
	err := guard.Authorize(ctx, caller, "delete", guard.Target{Kind: "comment", ID: id, Owner: s.store.CommentOwner})
	if err != nil {
		s.logDenied(ctx, "comment", id, caller, err)
		return err
	}
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}

	s.pub.Publish(Event{Type: EventCommentDeleted, CommentID: id, UserID: caller.UserID, At: s.now()})
	return nil
}

// ListUserPosts returns every post by userID, newest first. It does not check
// that the user exists; callers that need 404 look the user up first.
func (s *Service) ListUserPosts(ctx context.Context, caller guard.Identity, userID string) ([]PostView, error) {
	posts, _, err := s.store.ListPosts(ctx, ListQuery{ViewerID: caller.UserID, AuthorID: userID})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []PostView{}
	}
	return posts, nil
}

func (s *Service) logDenied(ctx context.Context, kind, id string, caller guard.Identity, err error) {
	if !apperr.IsForbidden(err) {
		return
	}
	s.log.LogAttrs(ctx, slog.LevelWarn, "social.delete.denied",
		slog.String("kind", kind),
		slog.String("id", id),
		slog.String("user_id", caller.UserID),
	)
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
