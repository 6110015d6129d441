package social

import (
	"context"
	"sort"
	"sync"
	"time"

	"minisocial/cmd/identity"
	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/ids"
)

// UserDirectory resolves author summaries for the memory store.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

type likeKey struct{ postID, userID string }

// MemoryStore is the dev fallback used when no database is configured.
// Deleting a post cascades to its likes and comments, as the schema does.
type MemoryStore struct {
	users UserDirectory

	mu       sync.Mutex
	posts    map[string]Post
	likes    map[likeKey]Like
	comments map[string]Comment
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(users UserDirectory) *MemoryStore {
	return &MemoryStore{
		users:    users,
		posts:    make(map[string]Post),
		likes:    make(map[likeKey]Like),
		comments: make(map[string]Comment),
	}
}

func (s *MemoryStore) summary(ctx context.Context, userID string) (UserSummary, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return UserSummary{}, err
	}
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, in NewPost) (Post, error) {
	const op = "social.CreatePost"

	if in.Text == nil && in.ImageURL == nil {
		return Post{}, apperr.Validation(op, "Post must contain either text or image")
	}
	author, err := s.summary(ctx, in.UserID)
	if err != nil {
		return Post{}, err
	}
	id, err := ids.New(in.Now)
	if err != nil {
		return Post{}, apperr.Storage(op, err)
	}

	p := Post{
		ID:        id,
		UserID:    in.UserID,
		Text:      in.Text,
		ImageURL:  in.ImageURL,
		CreatedAt: in.Now,
		User:      author,
	}

	s.mu.Lock()
	s.posts[id] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id, viewerID string) (PostView, error) {
	if err := ctx.Err(); err != nil {
		return PostView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return PostView{}, apperr.NotFound("social.GetPost", "Post not found")
	}
	return s.viewLocked(p, viewerID), nil
}

func (s *MemoryStore) ListPosts(ctx context.Context, q ListQuery) ([]PostView, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		if q.AuthorID != "" && p.UserID != q.AuthorID {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	lo := min(max(q.Offset, 0), total)
	hi := total
	if q.Limit > 0 {
		hi = min(lo+q.Limit, total)
	}

	out := make([]PostView, 0, hi-lo)
	for _, p := range matched[lo:hi] {
		out = append(out, s.viewLocked(p, q.ViewerID))
	}
	return out, total, nil
}

func (s *MemoryStore) viewLocked(p Post, viewerID string) PostView {
	v := PostView{Post: p}
	for k := range s.likes {
		if k.postID != p.ID {
			continue
		}
		v.LikeCount++
		if k.userID == viewerID {
			v.IsLikedByUser = true
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			v.CommentCount++
		}
	}
	return v
}

func (s *MemoryStore) PostOwner(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return "", apperr.NotFound("social.PostOwner", "Post not found")
	}
	return p.UserID, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return apperr.NotFound("social.DeletePost", "Post not found")
	}
	delete(s.posts, id)
	for k := range s.likes {
		if k.postID == id {
			delete(s.likes, k)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postID, userID string, now time.Time) (bool, error) {
	const op = "social.ToggleLike"

	author, err := s.summary(ctx, userID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return false, apperr.NotFound(op, "Post not found")
	}

	k := likeKey{postID: postID, userID: userID}
	if _, ok := s.likes[k]; ok {
		delete(s.likes, k)
		return false, nil
	}

	id, err := ids.New(now)
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	s.likes[k] = Like{
		ID:        id,
		PostID:    postID,
		UserID:    userID,
		CreatedAt: now,
		User:      author,
	}
	return true, nil
}

func (s *MemoryStore) ListLikes(ctx context.Context, postID string) ([]Like, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]Like, 0)
	for k, l := range s.likes {
		if k.postID == postID {
			out = append(out, l)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, in NewComment) (Comment, error) {
	const op = "social.CreateComment"

	author, err := s.summary(ctx, in.UserID)
	if err != nil {
		return Comment{}, err
	}
	id, err := ids.New(in.Now)
	if err != nil {
		return Comment{}, apperr.Storage(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[in.PostID]; !ok {
		return Comment{}, apperr.NotFound(op, "Post not found")
	}
	c := Comment{
		ID:        id,
		PostID:    in.PostID,
		UserID:    in.UserID,
		Comment:   in.Comment,
		CreatedAt: in.Now,
		User:      author,
	}
	s.comments[id] = c
	return c, nil
}

func (s *MemoryStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := make([]Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CommentOwner(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return "", apperr.NotFound("social.CommentOwner", "Comment not found")
	}
	return c.UserID, nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return apperr.NotFound("social.DeleteComment", "Comment not found")
	}
	delete(s.comments, id)
	return nil
}
