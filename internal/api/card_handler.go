package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type CardHandler struct {
	cardService *service.CardService
}

func NewCardHandler(cardService *service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// ListCards returns the catalog --> GET /cards?sport=basketball
func (h *CardHandler) ListCards(c echo.Context) error {
	cards, err := h.cardService.ListCards(c.Request().Context(), c.QueryParam("sport"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, map[string]any{"cards": cards})
}

// GetCard returns one card --> GET /cards/:id
func (h *CardHandler) GetCard(c echo.Context) error {
	card, err := h.cardService.GetCard(c.Request().Context(), c.Param("id"))
	if err != nil {
		var notFound *service.CardNotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"card": card})
}
