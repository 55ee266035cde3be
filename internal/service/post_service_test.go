package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardstore/internal/entity"
)

type fakePostStore struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]*entity.Post)}
}

func (s *fakePostStore) Create(ctx context.Context, post *entity.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *fakePostStore) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *post
	return &cp, nil
}

func (s *fakePostStore) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.Slug == slug && post.Published {
			cp := *post
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakePostStore) LatestPublished(ctx context.Context) (*entity.Post, error) {
	published, _ := s.ListPublished(ctx)
	if len(published) == 0 {
		return nil, sql.ErrNoRows
	}
	return published[0], nil
}

func (s *fakePostStore) ListPublished(ctx context.Context) ([]*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Post
	for _, post := range s.posts {
		if post.Published {
			cp := *post
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedAt == nil || out[j].PublishedAt == nil {
			return out[i].ID < out[j].ID
		}
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})
	return out, nil
}

func (s *fakePostStore) ListAll(ctx context.Context, limit int) ([]*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Post
	for _, post := range s.posts {
		cp := *post
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakePostStore) Update(ctx context.Context, post *entity.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *fakePostStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

func str(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

func TestCreatePostRequiresCoreFields(t *testing.T) {
	svc := NewPostService(newFakePostStore())

	_, err := svc.Create(context.Background(), PostInput{Title: str("Hello")})
	assert.Error(t, err)

	post, err := svc.Create(context.Background(), PostInput{
		Title:       str(" Hello "),
		Slug:        str("hello"),
		ContentHTML: str("<p>hi</p>"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)
}

func TestUpdatePostPublishToggle(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(newFakePostStore())

	post, err := svc.Create(ctx, PostInput{Title: str("Hello"), Slug: str("hello"), ContentHTML: str("<p>hi</p>")})
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, post.ID, PostInput{Published: boolp(true)})
	assert.NoError(t, err)
	assert.True(t, updated.Published)
	assert.NotNil(t, updated.PublishedAt)

	// Fields not present in the patch stay put.
	assert.Equal(t, "Hello", updated.Title)

	unpublished, err := svc.Update(ctx, post.ID, PostInput{Published: boolp(false)})
	assert.NoError(t, err)
	assert.Nil(t, unpublished.PublishedAt)
}

func TestUpdateMissingPost(t *testing.T) {
	svc := NewPostService(newFakePostStore())

	_, err := svc.Update(context.Background(), "missing", PostInput{Title: str("x")})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestLatestReturnsNilWithoutPublishedPosts(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(newFakePostStore())

	post, err := svc.Latest(ctx)
	assert.NoError(t, err)
	assert.Nil(t, post)

	created, err := svc.Create(ctx, PostInput{Title: str("Hello"), Slug: str("hello"), ContentHTML: str("<p>hi</p>")})
	assert.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, PostInput{Published: boolp(true)})
	assert.NoError(t, err)

	post, err = svc.Latest(ctx)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
}

func TestGetBySlugOnlyFindsPublished(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(newFakePostStore())

	created, err := svc.Create(ctx, PostInput{Title: str("Hello"), Slug: str("hello"), ContentHTML: str("<p>hi</p>")})
	assert.NoError(t, err)

	_, err = svc.GetBySlug(ctx, "hello")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.Update(ctx, created.ID, PostInput{Published: boolp(true)})
	assert.NoError(t, err)

	post, err := svc.GetBySlug(ctx, "hello")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
}
