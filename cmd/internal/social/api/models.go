package socialapi

import (
	"minisocial/cmd/identity"
	"minisocial/cmd/internal/social"
)

type createPostRequest struct {
	Text     *string `json:"text"`
	ImageURL *string `json:"image_url"`
}

type createCommentRequest struct {
	Comment string `json:"comment"`
}

type userResponse struct {
	User identity.User `json:"user"`
}

type postCreatedResponse struct {
	Message string      `json:"message"`
	Post    social.Post `json:"post"`
}

type postResponse struct {
	Post social.PostDetail `json:"post"`
}

type postsResponse struct {
	Posts []social.PostView `json:"posts"`
	Count int               `json:"count"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type pageResponse struct {
	Posts      []social.PostView `json:"posts"`
	Pagination pagination        `json:"pagination"`
}

type likeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

type likesResponse struct {
	Likes []social.Like `json:"likes"`
	Count int           `json:"count"`
}

type commentCreatedResponse struct {
	Message string         `json:"message"`
	Comment social.Comment `json:"comment"`
}

type commentsResponse struct {
	Comments []social.Comment `json:"comments"`
	Count    int              `json:"count"`
}
