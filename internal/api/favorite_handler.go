package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
}

func NewFavoriteHandler(favoriteService *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// ListFavorites returns the caller's favorited card ids --> GET /favorites
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	cardIDs, err := h.favoriteService.List(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"card_ids": cardIDs})
}

// ToggleFavorite flips a favorite --> POST /favorites
func (h *FavoriteHandler) ToggleFavorite(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	var body struct {
		CardID string `json:"card_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.CardID == "" {
		return c.JSON(400, map[string]string{"error": "Missing card_id"})
	}

	favorited, err := h.favoriteService.Toggle(c.Request().Context(), uid, body.CardID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"favorited": favorited, "card_id": body.CardID})
}
