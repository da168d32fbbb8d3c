package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/models"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	Insert(ctx context.Context, c *models.Comment) error
}

// PostLookup resolves the parent post of a comment thread.
type PostLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
}

// AuthorResolver looks up the public identity of users by id.
type AuthorResolver interface {
	ResolveAuthors(ctx context.Context, ids []string) (map[string]models.Author, error)
}

type Service struct {
	store   CommentStore
	posts   PostLookup
	authors AuthorResolver
	now     func() time.Time
}

func NewService(store CommentStore, posts PostLookup, authors AuthorResolver) *Service {
	return &Service{store: store, posts: posts, authors: authors, now: time.Now}
}

// ListForPost returns the comments of the post at slug, newest first.
func (s *Service) ListForPost(ctx context.Context, slug string) ([]models.Comment, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create adds a comment by callerID to the post at slug.
func (s *Service) Create(ctx context.Context, slug, callerID, content string) (*models.Comment, error) {
	post, err := s.Thread(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	return s.Reply(ctx, post, callerID, content)
}

// Thread resolves the post callerID wants to comment on.
func (s *Service) Thread(ctx context.Context, slug, callerID string) (*models.Post, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}
	return s.posts.GetBySlug(ctx, slug)
}

// Reply stores a comment on post, as returned by Thread.
func (s *Service) Reply(ctx context.Context, post *models.Post, callerID, content string) (*models.Comment, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.Invalid("Comment content is required")
	}

	now := s.now().UTC()
	c := &models.Comment{
		Content:   content,
		AuthorID:  callerID,
		PostID:    post.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	items := []models.Comment{*c}
	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *Service) attachAuthors(ctx context.Context, items []models.Comment) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, c := range items {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.authors.ResolveAuthors(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve authors: %w", err)
	}
	for i := range items {
		if a, ok := authors[items[i].AuthorID]; ok {
			items[i].Author = &a
		}
	}
	return nil
}
