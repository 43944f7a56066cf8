package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePostInput is the body of a create-post request. ImageURL is not
// validated server-side.
type CreatePostInput struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// CommentInput is the body of an add-comment request.
type CommentInput struct {
	Author  string `json:"author" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// PostService applies the diary rules on top of a PostStore: identifier
// parsing, presence checks, id and timestamp assignment and the admin gate.
type PostService struct {
	store    PostStore
	admin    *AdminGate
	validate *validator.Validate

	now          func() time.Time
	newCommentID func() string
}

func NewPostService(store PostStore, admin *AdminGate) *PostService {
	return &PostService{
		store:        store,
		admin:        admin,
		validate:     validator.New(),
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newCommentID: uuid.NewString,
	}
}

// ParsePostID converts a path identifier into an ObjectID.
func ParsePostID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	for i := range posts {
		if posts[i].Comments == nil {
			posts[i].Comments = []models.Comment{}
		}
	}
	return posts, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		ImageURL:  in.ImageURL,
		CreatedAt: s.now(),
		Likes:     0,
		Comments:  []models.Comment{},
	}
	if err := s.store.Insert(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := ParsePostID(id)
	if err != nil {
		return nil, err
	}
	post, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return post, nil
}

// LikePost adds exactly one like. There is no per-caller tracking.
func (s *PostService) LikePost(ctx context.Context, id string) error {
	oid, err := ParsePostID(id)
	if err != nil {
		return err
	}
	return s.store.IncrementLikes(ctx, oid)
}

func (s *PostService) AddComment(ctx context.Context, id string, in CommentInput) (*models.Comment, error) {
	oid, err := ParsePostID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	comment := models.Comment{
		ID:        s.newCommentID(),
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendComment(ctx, oid, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeletePost removes a post and, with it, all of its comments. The secret
// is checked before anything else so a wrong secret never reaches the store.
func (s *PostService) DeletePost(ctx context.Context, id, password string) error {
	if !s.admin.Verify(password) {
		return ErrUnauthorized
	}
	oid, err := ParsePostID(id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, oid)
}

func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, password string) error {
	if !s.admin.Verify(password) {
		return ErrUnauthorized
	}
	oid, err := ParsePostID(postID)
	if err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, oid, commentID)
}
