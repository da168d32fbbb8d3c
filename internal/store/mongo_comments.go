package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/blog-app/backend/internal/models"
)

// CommentStore handles comment persistence in MongoDB.
type CommentStore struct {
	col *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{col: db.Collection(commentsCollection)}
}

func (s *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := s.col.Find(ctx, bson.M{"post": postID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("mongo find comments: %w", err)
	}
	defer cur.Close(ctx)

	var items []models.Comment
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("mongo decode comments: %w", err)
	}
	return items, nil
}

func (s *CommentStore) Insert(ctx context.Context, c *models.Comment) error {
	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("mongo insert comment: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// DeleteByPost removes every comment of postID and reports how many went.
func (s *CommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"post": postID})
	if err != nil {
		return 0, fmt.Errorf("mongo delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
