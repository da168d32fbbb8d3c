package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author is the public view of a user attached to posts and comments.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Post is a single blog post stored in MongoDB.
type Post struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Title     string             `json:"title"     bson:"title"`
	Content   string             `json:"content"   bson:"content"`
	Excerpt   string             `json:"excerpt"   bson:"excerpt"`
	Category  string             `json:"category"  bson:"category"`
	Tags      []string           `json:"tags"      bson:"tags"`
	Slug      string             `json:"slug"      bson:"slug"`
	AuthorID  string             `json:"-"         bson:"author"`
	Author    *Author            `json:"author"    bson:"-"` // resolved on read
	Published bool               `json:"published" bson:"published"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreatePostRequest is the JSON body for POST /api/posts.
type CreatePostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// UpdatePostRequest is the JSON body for PUT /api/posts/{slug}.
// Nil fields are left untouched.
type UpdatePostRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Excerpt  *string   `json:"excerpt"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

// PostFilter narrows the published post listing. Zero values match everything.
type PostFilter struct {
	Category string
	Tags     []string
	Search   string
}

// Pagination is the metadata returned next to a page of posts.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}
