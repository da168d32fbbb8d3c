package posts

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/models"
)

// memStore is an in-memory PostStore with the same matching rules as the
// Mongo query.
type memStore struct {
	mu    sync.Mutex
	posts []models.Post

	// beforeInsert runs ahead of every Insert; a non-nil error aborts it.
	beforeInsert func(s *memStore, p *models.Post) error
	updateErr    error
	lastSkip     int64
}

func (s *memStore) ListPublished(_ context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSkip = skip
	if skip < 0 {
		return nil, 0, errors.New("negative skip")
	}

	var matched []models.Post
	for _, p := range s.posts {
		if p.Published && matches(p, f) {
			matched = append(matched, p)
		}
	}
	sortNewest(matched)
	total := int64(len(matched))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func matches(p models.Post, f models.PostFilter) bool {
	contains := func(s, sub string) bool { return strings.Contains(strings.ToLower(s), strings.ToLower(sub)) }
	if f.Category != "" && !contains(p.Category, f.Category) {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, have := range p.Tags {
				if want == have {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" && !contains(p.Title, f.Search) && !contains(p.Content, f.Search) && !contains(p.Excerpt, f.Search) {
		return false
	}
	return true
}

func sortNewest(ps []models.Post) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
}

func (s *memStore) ListByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	sortNewest(out)
	return out, nil
}

func (s *memStore) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *memStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (s *memStore) Insert(_ context.Context, p *models.Post) error {
	if s.beforeInsert != nil {
		if err := s.beforeInsert(s, p); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return common.ErrDuplicateKey
		}
	}
	p.ID = primitive.NewObjectID()
	s.posts = append(s.posts, *p)
	return nil
}

// put stores p directly, bypassing the service.
func (s *memStore) put(p models.Post) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.posts = append(s.posts, p)
	return p
}

func (s *memStore) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == p.ID {
			cur := &s.posts[i]
			cur.Title, cur.Content, cur.Excerpt = p.Title, p.Content, p.Excerpt
			cur.Category, cur.Tags, cur.UpdatedAt = p.Category, p.Tags, p.UpdatedAt
			cp := *cur
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakePurger struct {
	purged []primitive.ObjectID
	err    error
}

func (f *fakePurger) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.purged = append(f.purged, postID)
	return 2, nil
}

type fakeAuthors struct {
	authors map[string]models.Author
	err     error
}

func (f *fakeAuthors) ResolveAuthors(_ context.Context, ids []string) (map[string]models.Author, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.Author)
	for _, id := range ids {
		if a, ok := f.authors[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

var testAuthors = map[string]models.Author{
	"alice": {ID: "alice", Name: "Alice", Email: "alice@example.com"},
	"bob":   {ID: "bob", Name: "Bob", Email: "bob@example.com"},
}

type testEnv struct {
	svc     *Service
	store   *memStore
	purger  *fakePurger
	authors *fakeAuthors
}

// newTestEnv wires a Service whose clock advances one second per call so
// creation order is strict.
func newTestEnv(maxLimit int) *testEnv {
	env := &testEnv{
		store:   &memStore{},
		purger:  &fakePurger{},
		authors: &fakeAuthors{authors: testAuthors},
	}
	env.svc = NewService(env.store, env.purger, env.authors, logging.Nop(), maxLimit)

	var mu sync.Mutex
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t0 = t0.Add(time.Second)
		return t0
	}
	return env
}
