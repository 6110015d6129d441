package social

import (
	"context"
	"time"
)

type NewPost struct {
	UserID   string
	Text     *string
	ImageURL *string
	Now      time.Time
}

type NewComment struct {
	PostID  string
	UserID  string
	Comment string
	Now     time.Time
}

// ListQuery selects posts newest first. AuthorID filters by owner when set;
// Limit 0 means no limit.
type ListQuery struct {
	ViewerID string
	AuthorID string
	Offset   int
	Limit    int
}

// Store is the social persistence boundary.
//
// Point lookups return an apperr NotFound error for absent rows. Owner lookups
// exist for the ownership guard and return only the owner id.
type Store interface {
	CreatePost(ctx context.Context, in NewPost) (Post, error)
	GetPost(ctx context.Context, id, viewerID string) (PostView, error)
	ListPosts(ctx context.Context, q ListQuery) (posts []PostView, total int, err error)
	PostOwner(ctx context.Context, id string) (string, error)
	DeletePost(ctx context.Context, id string) error

	// ToggleLike removes the caller's like if present, otherwise adds one.
	ToggleLike(ctx context.Context, postID, userID string, now time.Time) (liked bool, err error)
	// ListLikes is newest first.
	ListLikes(ctx context.Context, postID string) ([]Like, error)

	CreateComment(ctx context.Context, in NewComment) (Comment, error)
	// ListComments is oldest first.
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	CommentOwner(ctx context.Context, id string) (string, error)
	DeleteComment(ctx context.Context, id string) error
}
