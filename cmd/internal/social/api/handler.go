package socialapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"minisocial/cmd/identity"
	"minisocial/cmd/internal/auth/guard"
	"minisocial/cmd/internal/httpx"
	"minisocial/cmd/internal/social"
)

// UserDirectory looks up public user profiles.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

// Handler wires HTTP routes to the social service.
type Handler struct {
	log          *slog.Logger
	svc          *social.Service
	users        UserDirectory
	maxBodyBytes int64
}

func NewHandler(log *slog.Logger, svc *social.Service, users UserDirectory, maxBodyBytes int64) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("socialapi: nil service")
	}
	if users == nil {
		return nil, errors.New("socialapi: nil user directory")
	}
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = httpx.DefaultMaxBodyBytes
	}
	return &Handler{log: log, svc: svc, users: users, maxBodyBytes: maxBodyBytes}, nil
}

// Register wires routes onto mux, each wrapped by mw.
func (h *Handler) Register(mux *http.ServeMux, mw *guard.Middleware) {
	if h == nil || mux == nil || mw == nil {
		return
	}

	mux.Handle("GET /api/users/me", mw.RequireFunc(h.handleMe))
	mux.Handle("GET /api/users/{id}", mw.RequireFunc(h.handleGetUser))
	mux.Handle("GET /api/users/{id}/posts", mw.RequireFunc(h.handleUserPosts))

	mux.Handle("POST /api/posts", mw.RequireFunc(h.handleCreatePost))
	mux.Handle("GET /api/posts", mw.RequireFunc(h.handleListPosts))
	mux.Handle("GET /api/posts/{id}", mw.RequireFunc(h.handleGetPost))
	mux.Handle("DELETE /api/posts/{id}", mw.RequireFunc(h.handleDeletePost))

	mux.Handle("POST /api/posts/{id}/like", mw.RequireFunc(h.handleToggleLike))
	mux.Handle("GET /api/posts/{id}/likes", mw.RequireFunc(h.handleListLikes))

	mux.Handle("POST /api/posts/{id}/comment", mw.RequireFunc(h.handleCreateComment))
	mux.Handle("GET /api/posts/{id}/comments", mw.RequireFunc(h.handleListComments))
	mux.Handle("DELETE /api/posts/comments/{commentId}", mw.RequireFunc(h.handleDeleteComment))
}

// caller is set by the middleware on every registered route.
func caller(r *http.Request) guard.Identity {
	id, _ := guard.FromContext(r.Context())
	return id
}

// ---- users ----

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: identity.User{
		ID:        id.UserID,
		Username:  id.Username,
		Email:     id.Email,
		CreatedAt: id.CreatedAt,
	}})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *Handler) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	if _, err := h.users.GetUserByID(ctx, userID); err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	posts, err := h.svc.ListUserPosts(ctx, caller(r), userID)
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, postsResponse{Posts: posts, Count: len(posts)})
}

// ---- posts ----

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := httpx.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.svc.CreatePost(r.Context(), caller(r), social.CreatePostInput{Text: req.Text, ImageURL: req.ImageURL})
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, postCreatedResponse{Message: "Post created successfully", Post: p})
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok1 := queryPositiveInt(q.Get("page"))
	limit, ok2 := queryPositiveInt(q.Get("limit"))
	if !ok1 || !ok2 {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	res, err := h.svc.ListPosts(r.Context(), caller(r), page, limit)
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{
		Posts: res.Posts,
		Pagination: pagination{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

// queryPositiveInt parses an optional query value. Absent yields 0.
func queryPositiveInt(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetPost(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, postResponse{Post: v})
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), caller(r), r.PathValue("id")); err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Post deleted successfully")
}

// ---- likes ----

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.svc.ToggleLike(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	if liked {
		httpx.WriteJSON(w, http.StatusCreated, likeResponse{Message: "Post liked successfully", Liked: true})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, likeResponse{Message: "Post unliked successfully", Liked: false})
}

func (h *Handler) handleListLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.svc.ListLikes(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, likesResponse{Likes: likes, Count: len(likes)})
}

// ---- comments ----

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := httpx.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.svc.AddComment(r.Context(), caller(r), r.PathValue("id"), req.Comment)
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, commentCreatedResponse{Message: "Comment created successfully", Comment: c})
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, commentsResponse{Comments: comments, Count: len(comments)})
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteComment(r.Context(), caller(r), r.PathValue("commentId")); err != nil {
		httpx.WriteAppError(w, h.log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Comment deleted successfully")
}
