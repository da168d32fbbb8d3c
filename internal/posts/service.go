package posts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/models"
)

const (
	maxTitleLen      = 100
	maxExcerptLen    = 300
	maxInsertRetries = 5
)

// PostStore defines the interface for post persistence.
type PostStore interface {
	ListPublished(ctx context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Insert returns common.ErrDuplicateKey when the slug is already taken.
	Insert(ctx context.Context, p *models.Post) error
	// Update persists the mutable fields of p and returns the stored post.
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentPurger removes the comments of a deleted post.
type CommentPurger interface {
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
}

// AuthorResolver looks up the public identity of users by id.
type AuthorResolver interface {
	ResolveAuthors(ctx context.Context, ids []string) (map[string]models.Author, error)
}

// Service implements the post operations on top of a PostStore.
type Service struct {
	store    PostStore
	comments CommentPurger
	authors  AuthorResolver
	log      logging.Logger
	maxLimit int
	now      func() time.Time
}

func NewService(store PostStore, comments CommentPurger, authors AuthorResolver, log logging.Logger, maxLimit int) *Service {
	return &Service{
		store:    store,
		comments: comments,
		authors:  authors,
		log:      log.With("component", "posts"),
		maxLimit: maxLimit,
		now:      time.Now,
	}
}

// ListPublished returns one page of published posts matching f, newest first.
func (s *Service) ListPublished(ctx context.Context, f models.PostFilter, page, limit int) ([]models.Post, models.Pagination, error) {
	page, limit = normalizePage(page, limit, s.maxLimit)
	skip := int64(math.MaxInt64)
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		skip = int64(page-1) * int64(limit)
	}

	items, total, err := s.store.ListPublished(ctx, f, skip, int64(limit))
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list posts: %w", err)
	}
	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, models.Pagination{}, err
	}
	return items, Paginate(page, limit, total), nil
}

// GetBySlug returns the post with the exact slug, published or not.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthor(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByAuthor returns every post of authorID, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	if authorID == "" {
		return nil, common.ErrUnauthorized
	}
	items, err := s.store.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	if err := s.attachAuthors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create validates req, derives the slug and excerpt and stores a new post
// owned by authorID.
func (s *Service) Create(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error) {
	if authorID == "" {
		return nil, common.ErrUnauthorized
	}

	title := strings.TrimSpace(req.Title)
	category := strings.TrimSpace(req.Category)
	if title == "" || strings.TrimSpace(req.Content) == "" || category == "" {
		return nil, common.Invalid("Title, content, and category are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, common.Invalid(fmt.Sprintf("Title cannot be more than %d characters", maxTitleLen))
	}
	excerpt := req.Excerpt
	if excerpt == "" {
		excerpt = deriveExcerpt(req.Content)
	} else if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return nil, common.Invalid(fmt.Sprintf("Excerpt cannot be more than %d characters", maxExcerptLen))
	}

	now := s.now().UTC()
	p := &models.Post{
		Title:     title,
		Content:   req.Content,
		Excerpt:   excerpt,
		Category:  category,
		Tags:      normalizeTags(req.Tags),
		AuthorID:  authorID,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	base := Slugify(title)
	for attempt := 1; attempt <= maxInsertRetries; attempt++ {
		slug, err := s.uniqueSlug(ctx, base)
		if err != nil {
			return nil, err
		}
		p.Slug = slug

		err = s.store.Insert(ctx, p)
		if err == nil {
			if err := s.attachAuthor(ctx, p); err != nil {
				return nil, err
			}
			return p, nil
		}
		if !errors.Is(err, common.ErrDuplicateKey) {
			return nil, fmt.Errorf("insert post: %w", err)
		}
		s.log.Warn(ctx, "slug taken concurrently, retrying", "slug", slug, "attempt", attempt)
	}
	// not ErrDuplicateKey: exhausting retries is a server error
	return nil, fmt.Errorf("insert post: slug %q still taken after %d attempts", base, maxInsertRetries)
}

// uniqueSlug returns base, or base-n for the smallest unused n >= 1.
func (s *Service) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		exists, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// Update applies the provided fields of req to the post at slug. Only the
// author may update; the slug never changes.
func (s *Service) Update(ctx context.Context, slug, callerID string, req models.UpdatePostRequest) (*models.Post, error) {
	p, err := s.Owned(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, p, req)
}

// Apply validates req against p, a post already returned by Owned, and
// persists the result.
func (s *Service) Apply(ctx context.Context, p *models.Post, req models.UpdatePostRequest) (*models.Post, error) {
	if req.Title != nil {
		if t := strings.TrimSpace(*req.Title); t != "" {
			if utf8.RuneCountInString(t) > maxTitleLen {
				return nil, common.Invalid(fmt.Sprintf("Title cannot be more than %d characters", maxTitleLen))
			}
			p.Title = t
		}
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		p.Content = *req.Content
	}
	if req.Excerpt != nil && *req.Excerpt != "" {
		if utf8.RuneCountInString(*req.Excerpt) > maxExcerptLen {
			return nil, common.Invalid(fmt.Sprintf("Excerpt cannot be more than %d characters", maxExcerptLen))
		}
		p.Excerpt = *req.Excerpt
	}
	if req.Category != nil {
		if c := strings.TrimSpace(*req.Category); c != "" {
			p.Category = c
		}
	}
	if req.Tags != nil {
		p.Tags = normalizeTags(*req.Tags)
	}
	p.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if err := s.attachAuthor(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the post at slug and then its comments. Only the author may
// delete. The two steps are not atomic; a failed comment purge is logged.
func (s *Service) Delete(ctx context.Context, slug, callerID string) error {
	p, err := s.Owned(ctx, slug, callerID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	n, err := s.comments.DeleteByPost(ctx, p.ID)
	if err != nil {
		s.log.Warn(ctx, "orphaned comments after post delete", "slug", slug, "err", err)
		return nil
	}
	s.log.Info(ctx, "post deleted", "slug", slug, "comments_removed", n)
	return nil
}

// Owned loads the post at slug and checks that callerID is its author.
func (s *Service) Owned(ctx context.Context, slug, callerID string) (*models.Post, error) {
	if callerID == "" {
		return nil, common.ErrUnauthorized
	}
	p, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != callerID {
		return nil, common.ErrForbidden
	}
	return p, nil
}

func (s *Service) attachAuthor(ctx context.Context, p *models.Post) error {
	items := []models.Post{*p}
	if err := s.attachAuthors(ctx, items); err != nil {
		return err
	}
	p.Author = items[0].Author
	return nil
}

func (s *Service) attachAuthors(ctx context.Context, items []models.Post) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.AuthorID)
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

// deriveExcerpt returns the first maxExcerptLen characters of content
// followed by "...".
func deriveExcerpt(content string) string {
	r := []rune(content)
	if len(r) > maxExcerptLen {
		r = r[:maxExcerptLen]
	}
	return string(r) + "..."
}

// normalizeTags trims tags and drops empty ones. The result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
