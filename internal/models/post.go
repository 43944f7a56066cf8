package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a diary entry. Comments are embedded and kept in insertion order.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Author    string             `bson:"author" json:"author"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Likes     int64              `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
}

// Comment is a reply owned by exactly one Post. Its ID is a UUID string,
// unique within the owning post's comment list.
type Comment struct {
	ID        string    `bson:"_id" json:"_id"`
	Author    string    `bson:"author" json:"author"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
