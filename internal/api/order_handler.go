package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/entity"
	"cardstore/internal/service"
)

type OrderHandler struct {
	checkoutService *service.CheckoutService
}

func NewOrderHandler(checkoutService *service.CheckoutService) *OrderHandler {
	return &OrderHandler{checkoutService: checkoutService}
}

// CreateOrder runs checkout for the caller's cart --> POST /orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	var body struct {
		Shipping entity.ShippingAddress `json:"shipping"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.checkoutService.CreateOrder(c.Request().Context(), uid, body.Shipping)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(200, map[string]any{"ok": true, "order_id": order.ID, "order": order})
}

// ListOrders returns the caller's orders --> GET /orders
func (h *OrderHandler) ListOrders(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	orders, err := h.checkoutService.Orders(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"orders": orders})
}
