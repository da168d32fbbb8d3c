package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment belongs to exactly one post and is immutable once written.
type Comment struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Content   string             `json:"content"   bson:"content"`
	AuthorID  string             `json:"-"         bson:"author"`
	Author    *Author            `json:"author"    bson:"-"`
	PostID    primitive.ObjectID `json:"post"      bson:"post"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateCommentRequest is the JSON body for POST /api/posts/{slug}/comments.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
