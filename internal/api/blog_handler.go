package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type BlogHandler struct {
	postService *service.PostService
}

func NewBlogHandler(postService *service.PostService) *BlogHandler {
	return &BlogHandler{postService: postService}
}

// LatestPost returns the newest published post --> GET /blog/latest
func (h *BlogHandler) LatestPost(c echo.Context) error {
	post, err := h.postService.Latest(c.Request().Context())
	if err != nil {
		// The storefront degrades gracefully without a latest post.
		return c.JSON(200, map[string]any{"post": nil})
	}
	return c.JSON(200, map[string]any{"post": post})
}

// ListPosts returns all published posts --> GET /blog/posts
func (h *BlogHandler) ListPosts(c echo.Context) error {
	posts, err := h.postService.ListPublished(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"posts": posts})
}

// GetPost returns one published post --> GET /blog/posts/:slug
func (h *BlogHandler) GetPost(c echo.Context) error {
	post, err := h.postService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"post": post})
}
