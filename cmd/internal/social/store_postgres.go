package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minisocial/cmd/internal/apperr"
	"minisocial/cmd/internal/ids"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
// The pool is owned by the caller; this store never closes it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("social: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const postViewColumns = `
	p.id, p.user_id, p.text, p.image_url, p.created_at,
	u.id, u.username, u.email,
	(SELECT count(*) FROM likes l WHERE l.post_id = p.id),
	(SELECT count(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1)`

func scanPostView(row pgx.Row) (PostView, error) {
	var v PostView
	err := row.Scan(
		&v.ID, &v.UserID, &v.Text, &v.ImageURL, &v.CreatedAt,
		&v.User.ID, &v.User.Username, &v.User.Email,
		&v.LikeCount, &v.CommentCount, &v.IsLikedByUser,
	)
	return v, err
}

func (s *PostgresStore) CreatePost(ctx context.Context, in NewPost) (Post, error) {
	const op = "social.CreatePost"

	if in.Text == nil && in.ImageURL == nil {
		return Post{}, apperr.Validation(op, "Post must contain either text or image")
	}
	id, err := ids.New(in.Now)
	if err != nil {
		return Post{}, apperr.Storage(op, err)
	}

	var p Post
	err = s.pool.QueryRow(ctx,
		`WITH ins AS (
		     INSERT INTO posts (id, user_id, text, image_url, created_at)
		     VALUES ($1, $2, $3, $4, $5)
		     RETURNING id, user_id, text, image_url, created_at
		 )
		 SELECT ins.id, ins.user_id, ins.text, ins.image_url, ins.created_at,
		        u.id, u.username, u.email
		   FROM ins JOIN users u ON u.id = ins.user_id`,
		id, in.UserID, in.Text, in.ImageURL, in.Now,
	).Scan(&p.ID, &p.UserID, &p.Text, &p.ImageURL, &p.CreatedAt, &p.User.ID, &p.User.Username, &p.User.Email)
	if err != nil {
		if pgIsForeignKeyViolation(err) {
			return Post{}, apperr.NotFound(op, "User not found")
		}
		return Post{}, apperr.Storage(op, err)
	}
	return p, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id, viewerID string) (PostView, error) {
	const op = "social.GetPost"

	v, err := scanPostView(s.pool.QueryRow(ctx,
		`SELECT `+postViewColumns+`
		   FROM posts p JOIN users u ON u.id = p.user_id
		  WHERE p.id = $2`,
		viewerID, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostView{}, apperr.NotFound(op, "Post not found")
		}
		return PostView{}, apperr.Storage(op, err)
	}
	return v, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, q ListQuery) ([]PostView, int, error) {
	const op = "social.ListPosts"

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM posts WHERE ($1::text = '' OR user_id = $1)`,
		q.AuthorID,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Storage(op, err)
	}

	// A NULL limit means no limit.
	var limit any
	if q.Limit > 0 {
		limit = q.Limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+postViewColumns+`
		   FROM posts p JOIN users u ON u.id = p.user_id
		  WHERE ($2::text = '' OR p.user_id = $2)
		  ORDER BY p.created_at DESC, p.id DESC
		 OFFSET $3 LIMIT $4`,
		q.ViewerID, q.AuthorID, max(q.Offset, 0), limit,
	)
	if err != nil {
		return nil, 0, apperr.Storage(op, err)
	}
	defer rows.Close()

	out := make([]PostView, 0)
	for rows.Next() {
		v, err := scanPostView(rows)
		if err != nil {
			return nil, 0, apperr.Storage(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage(op, err)
	}
	return out, total, nil
}

func (s *PostgresStore) PostOwner(ctx context.Context, id string) (string, error) {
	return s.owner(ctx, "social.PostOwner", `SELECT user_id FROM posts WHERE id = $1`, id, "Post not found")
}

func (s *PostgresStore) CommentOwner(ctx context.Context, id string) (string, error) {
	return s.owner(ctx, "social.CommentOwner", `SELECT user_id FROM comments WHERE id = $1`, id, "Comment not found")
}

func (s *PostgresStore) owner(ctx context.Context, op, query, id, notFound string) (string, error) {
	var owner string
	if err := s.pool.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(op, notFound)
		}
		return "", apperr.Storage(op, err)
	}
	return owner, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "social.DeletePost", `DELETE FROM posts WHERE id = $1`, id, "Post not found")
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "social.DeleteComment", `DELETE FROM comments WHERE id = $1`, id, "Comment not found")
}

func (s *PostgresStore) deleteByID(ctx context.Context, op, query, id, notFound string) error {
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(op, notFound)
	}
	return nil
}

// ToggleLike runs delete-or-insert in one transaction. A concurrent toggle
// that inserts first makes this call a no-op that still reports liked.
func (s *PostgresStore) ToggleLike(ctx context.Context, postID, userID string, now time.Time) (liked bool, err error) {
	const op = "social.ToggleLike"

	id, err := ids.New(now)
	if err != nil {
		return false, apperr.Storage(op, err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var exists bool
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return false, apperr.Storage(op, err)
	}
	if !exists {
		err = apperr.NotFound(op, "Post not found")
		return false, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO likes (id, post_id, user_id, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT ON CONSTRAINT uq_likes_post_user DO NOTHING`,
			id, postID, userID, now,
		)
		if err != nil {
			if pgIsForeignKeyViolation(err) {
				err = apperr.NotFound(op, "Post not found")
				return false, err
			}
			return false, apperr.Storage(op, err)
		}
		liked = true
	}

	if err = tx.Commit(ctx); err != nil {
		return false, apperr.Storage(op, err)
	}
	return liked, nil
}

func (s *PostgresStore) ListLikes(ctx context.Context, postID string) ([]Like, error) {
	const op = "social.ListLikes"

	rows, err := s.pool.Query(ctx,
		`SELECT l.id, l.post_id, l.user_id, l.created_at, u.id, u.username, u.email
		   FROM likes l JOIN users u ON u.id = l.user_id
		  WHERE l.post_id = $1
		  ORDER BY l.created_at DESC, l.id DESC`,
		postID,
	)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	out := make([]Like, 0)
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.ID, &l.PostID, &l.UserID, &l.CreatedAt, &l.User.ID, &l.User.Username, &l.User.Email); err != nil {
			return nil, apperr.Storage(op, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}

func (s *PostgresStore) CreateComment(ctx context.Context, in NewComment) (Comment, error) {
	const op = "social.CreateComment"

	id, err := ids.New(in.Now)
	if err != nil {
		return Comment{}, apperr.Storage(op, err)
	}

	var c Comment
	err = s.pool.QueryRow(ctx,
		`WITH ins AS (
		     INSERT INTO comments (id, post_id, user_id, comment, created_at)
		     VALUES ($1, $2, $3, $4, $5)
		     RETURNING id, post_id, user_id, comment, created_at
		 )
		 SELECT ins.id, ins.post_id, ins.user_id, ins.comment, ins.created_at,
		        u.id, u.username, u.email
		   FROM ins JOIN users u ON u.id = ins.user_id`,
		id, in.PostID, in.UserID, in.Comment, in.Now,
	).Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &c.CreatedAt, &c.User.ID, &c.User.Username, &c.User.Email)
	if err != nil {
		if pgIsForeignKeyViolation(err) {
			return Comment{}, apperr.NotFound(op, "Post not found")
		}
		if pgIsCheckViolation(err) {
			return Comment{}, apperr.Validation(op, "Comment text is required")
		}
		return Comment{}, apperr.Storage(op, err)
	}
	return c, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	const op = "social.ListComments"

	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at, u.id, u.username, u.email
		   FROM comments c JOIN users u ON u.id = c.user_id
		  WHERE c.post_id = $1
		  ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	out := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &c.CreatedAt, &c.User.ID, &c.User.Username, &c.User.Email); err != nil {
			return nil, apperr.Storage(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}

func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func pgIsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
