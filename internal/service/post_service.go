package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardstore/internal/entity"
)

type PostService struct {
	posts PostStore
}

func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts}
}

// PostInput carries the editable fields; nil pointers mean "leave unchanged"
// on update.
type PostInput struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Excerpt     *string `json:"excerpt"`
	CoverImage  *string `json:"cover_image"`
	ContentHTML *string `json:"content_html"`
	Published   *bool   `json:"published"`
}

func (s *PostService) Create(ctx context.Context, in PostInput) (*entity.Post, error) {
	post := &entity.Post{ID: uuid.New().String()}
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		post.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.CoverImage != nil {
		post.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.ContentHTML != nil {
		post.ContentHTML = strings.TrimSpace(*in.ContentHTML)
	}
	if post.Title == "" || post.Slug == "" || post.ContentHTML == "" {
		return nil, errors.New("title, slug and content_html are required")
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id string, in PostInput) (*entity.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		post.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.CoverImage != nil {
		post.CoverImage = strings.TrimSpace(*in.CoverImage)
	}
	if in.ContentHTML != nil {
		post.ContentHTML = strings.TrimSpace(*in.ContentHTML)
	}
	if in.Published != nil {
		post.Published = *in.Published
		if post.Published {
			now := time.Now()
			post.PublishedAt = &now
		} else {
			post.PublishedAt = nil
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

func (s *PostService) Get(ctx context.Context, id string) (*entity.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// Latest returns the newest published post, or nil when there is none.
func (s *PostService) Latest(ctx context.Context) (*entity.Post, error) {
	post, err := s.posts.LatestPublished(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return post, err
}

func (s *PostService) ListPublished(ctx context.Context) ([]*entity.Post, error) {
	return s.posts.ListPublished(ctx)
}

func (s *PostService) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return s.posts.ListAll(ctx, 200)
}
