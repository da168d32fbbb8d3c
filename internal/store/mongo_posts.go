package store

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/models"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// PostStore handles post CRUD in MongoDB.
type PostStore struct {
	col *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{col: db.Collection(postsCollection)}
}

// publishedFilter builds the listing query. User input is matched literally.
func publishedFilter(f models.PostFilter) bson.M {
	q := bson.M{"published": true}
	if f.Category != "" {
		q["category"] = bson.M{"$regex": regexp.QuoteMeta(f.Category), "$options": "i"}
	}
	if len(f.Tags) > 0 {
		q["tags"] = bson.M{"$in": f.Tags}
	}
	if f.Search != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		q["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"content": rx},
			bson.M{"excerpt": rx},
		}
	}
	return q
}

func (s *PostStore) ListPublished(ctx context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, int64, error) {
	filter := publishedFilter(f)
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo count posts: %w", err)
	}
	if skip >= total {
		return nil, total, nil
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(limit)
	items, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.find(ctx, bson.M{"author": authorID}, options.Find().SetSort(newestFirst))
}

func (s *PostStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find posts: %w", err)
	}
	defer cur.Close(ctx)

	var items []models.Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("mongo decode posts: %w", err)
	}
	return items, nil
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo count slug: %w", err)
	}
	return n > 0, nil
}

func (s *PostStore) Insert(ctx context.Context, p *models.Post) error {
	res, err := s.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return common.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("mongo insert post: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	update := bson.M{"$set": bson.M{
		"title":     p.Title,
		"content":   p.Content,
		"excerpt":   p.Excerpt,
		"category":  p.Category,
		"tags":      p.Tags,
		"updatedAt": p.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Post
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update, opts).Decode(&out); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
