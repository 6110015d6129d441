package social

import "time"

// UserSummary is the author block embedded in posts, likes and comments.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Post holds text, an image URL, or both.
type Post struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Text      *string     `json:"text"`
	ImageURL  *string     `json:"image_url"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// PostView is a Post as seen by one viewer.
type PostView struct {
	Post
	LikeCount     int  `json:"like_count"`
	CommentCount  int  `json:"comment_count"`
	IsLikedByUser bool `json:"is_liked_by_user"`
}

// PostDetail is a single-post read. Likes and Comments are never nil.
type PostDetail struct {
	PostView
	Likes    []Like    `json:"likes"`
	Comments []Comment `json:"comments"`
}

type Like struct {
	ID        string      `json:"id"`
	PostID    string      `json:"post_id"`
	UserID    string      `json:"user_id"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

type Comment struct {
	ID        string      `json:"id"`
	PostID    string      `json:"post_id"`
	UserID    string      `json:"user_id"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// Page is one page of the global feed.
type Page struct {
	Posts      []PostView
	Page       int
	Limit      int
	Total      int
	TotalPages int
}
