package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostsCollection is the single collection holding post documents.
const PostsCollection = "posts"

// MongoPostStore keeps each post as one document with its comments embedded.
type MongoPostStore struct {
	col *mongo.Collection
}

func NewMongoPostStore(db *mongo.Database) *MongoPostStore {
	return &MongoPostStore{col: db.Collection(PostsCollection)}
}

// EnsureIndexes creates the createdAt index used by List.
// Called on startup from main after Mongo has connected.
func (s *MongoPostStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_created_at"),
	})
	return err
}

func (s *MongoPostStore) Insert(ctx context.Context, post *models.Post) error {
	if _, err := s.col.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *MongoPostStore) List(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (s *MongoPostStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post %s: %w", id.Hex(), err)
	}
	return &post, nil
}

func (s *MongoPostStore) IncrementLikes(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes": 1}})
	if err != nil {
		return fmt.Errorf("like post %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoPostStore) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	result, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return fmt.Errorf("comment on post %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoPostStore) DeleteComment(ctx context.Context, id primitive.ObjectID, commentID string) error {
	result, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	)
	if err != nil {
		return fmt.Errorf("delete comment %s on post %s: %w", commentID, id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}
