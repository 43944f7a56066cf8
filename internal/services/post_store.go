package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID           = errors.New("invalid post ID")
	ErrMissingFields       = errors.New("missing required fields")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found or already deleted")
	ErrImagesNotConfigured = errors.New("API key is not configured")
	ErrUpstream            = errors.New("upstream request failed")
)

// PostStore is the data-access contract for diary posts. Every method is a
// single atomic operation on one post; implementations must not perform
// client-side read-modify-write on likes or comments.
//
// Methods that address an existing post return ErrPostNotFound when no post
// has the given id. DeleteComment returns ErrCommentNotFound when the post
// exists but holds no comment with commentID.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID) error
	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteComment(ctx context.Context, id primitive.ObjectID, commentID string) error
}
