package repository

import (
	"context"
	"database/sql"

	"cardstore/internal/entity"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db}
}

const postColumns = `id, slug, title, COALESCE(excerpt, ''), COALESCE(cover_image, ''), content_html, published, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*entity.Post, error) {
	post := &entity.Post{}
	err := row.Scan(&post.ID, &post.Slug, &post.Title, &post.Excerpt, &post.CoverImage,
		&post.ContentHTML, &post.Published, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post *entity.Post) error {
	query := `INSERT INTO posts (id, slug, title, excerpt, cover_image, content_html, published) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, post.ID, post.Slug, post.Title,
		nullable(post.Excerpt), nullable(post.CoverImage), post.ContentHTML, post.Published)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = TRUE`, slug))
}

func (r *PostRepository) LatestPublished(ctx context.Context) (*entity.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE published = TRUE ORDER BY published_at DESC, created_at DESC LIMIT 1`
	return scanPost(r.db.QueryRowContext(ctx, query))
}

func (r *PostRepository) ListPublished(ctx context.Context) ([]*entity.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE published = TRUE ORDER BY published_at DESC, created_at DESC`
	return r.list(ctx, query)
}

// ListAll returns every post, drafts included, for the admin panel.
func (r *PostRepository) ListAll(ctx context.Context, limit int) ([]*entity.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY updated_at DESC LIMIT ?`
	return r.list(ctx, query, limit)
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*entity.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, post *entity.Post) error {
	query := `UPDATE posts SET slug = ?, title = ?, excerpt = ?, cover_image = ?, content_html = ?, published = ?, published_at = ? WHERE id = ?`
	var publishedAt sql.NullTime
	if post.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *post.PublishedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, post.Slug, post.Title,
		nullable(post.Excerpt), nullable(post.CoverImage), post.ContentHTML,
		post.Published, publishedAt, post.ID)
	return err
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}
