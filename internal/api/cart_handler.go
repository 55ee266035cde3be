package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart lists the caller's cart --> GET /cart
func (h *CartHandler) GetCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	items, err := h.cartService.Items(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"items": items})
}

// UpsertCart sets a line's quantity --> POST /cart
func (h *CartHandler) UpsertCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	var body struct {
		CardID string `json:"card_id"`
		Qty    int    `json:"qty"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.CardID == "" {
		return c.JSON(400, map[string]string{"error": "Missing card_id"})
	}

	item, err := h.cartService.Upsert(c.Request().Context(), uid, body.CardID, body.Qty)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "item": item})
}

// DeleteCartItem removes a line --> DELETE /cart/:cardId
func (h *CartHandler) DeleteCartItem(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	if err := h.cartService.Delete(c.Request().Context(), uid, c.Param("cardId")); err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true})
}
