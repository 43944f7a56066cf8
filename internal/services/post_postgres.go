package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostgresPostStore normalizes comments into their own table keyed by post
// id. ON DELETE CASCADE keeps "deleting a post deletes its comments", and
// the comments.seq column preserves insertion order.
type PostgresPostStore struct {
	db *sql.DB
}

func NewPostgresPostStore(db *sql.DB) *PostgresPostStore {
	return &PostgresPostStore{db: db}
}

const postColumns = `id, title, content, author, image_url, created_at, likes`

func (s *PostgresPostStore) Insert(ctx context.Context, post *models.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID.Hex(), post.Title, post.Content, post.Author, post.ImageURL, post.CreatedAt, post.Likes,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *PostgresPostStore) List(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID.Hex()
	}
	comments, err := s.commentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if c, ok := comments[ids[i]]; ok {
			posts[i].Comments = c
		}
	}
	return posts, nil
}

func (s *PostgresPostStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id.Hex())
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.commentsFor(ctx, []string{id.Hex()})
	if err != nil {
		return nil, err
	}
	if c, ok := comments[id.Hex()]; ok {
		post.Comments = c
	}
	return post, nil
}

func (s *PostgresPostStore) IncrementLikes(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("like post %s: %w", id.Hex(), err)
	}
	return requireAffected(result, ErrPostNotFound)
}

func (s *PostgresPostStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author, content, created_at)
		SELECT $1, $2, $3, $4, $5 WHERE EXISTS (SELECT 1 FROM posts WHERE id = $2)`,
		comment.ID, id.Hex(), comment.Author, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("comment on post %s: %w", id.Hex(), err)
	}
	return requireAffected(result, ErrPostNotFound)
}

func (s *PostgresPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id.Hex())
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id.Hex(), err)
	}
	return requireAffected(result, ErrPostNotFound)
}

func (s *PostgresPostStore) DeleteComment(ctx context.Context, id primitive.ObjectID, commentID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = $1 AND id = $2`, id.Hex(), commentID)
	if err != nil {
		return fmt.Errorf("delete comment %s on post %s: %w", commentID, id.Hex(), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment %s on post %s: %w", commentID, id.Hex(), err)
	}
	if n > 0 {
		return nil
	}

	// Nothing removed: tell a missing post apart from a missing comment.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id.Hex()).Scan(&exists); err != nil {
		return fmt.Errorf("check post %s: %w", id.Hex(), err)
	}
	if !exists {
		return ErrPostNotFound
	}
	return ErrCommentNotFound
}

// commentsFor loads the comments of the given posts, grouped by post id in
// insertion order.
func (s *PostgresPostStore) commentsFor(ctx context.Context, postIDs []string) (map[string][]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, id, author, content, created_at FROM comments
		WHERE post_id = ANY($1) ORDER BY seq`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Comment)
	for rows.Next() {
		var postID string
		var c models.Comment
		if err := rows.Scan(&postID, &c.ID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out[postID] = append(out[postID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		hexID string
		post  models.Post
	)
	err := row.Scan(&hexID, &post.Title, &post.Content, &post.Author, &post.ImageURL, &post.CreatedAt, &post.Likes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, fmt.Errorf("stored post id %q: %w", hexID, err)
	}
	post.ID = id
	post.Comments = []models.Comment{}
	return &post, nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
