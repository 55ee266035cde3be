package api

import (
	"github.com/labstack/echo/v4"

	"cardstore/internal/entity"
	"cardstore/internal/service"
)

// AdminHandler groups the operator endpoints: fulfillment, catalog import and
// blog management. All routes sit behind the AdminSecret middleware.
type AdminHandler struct {
	fulfillmentService *service.FulfillmentService
	cardService        *service.CardService
	postService        *service.PostService
}

func NewAdminHandler(fulfillmentService *service.FulfillmentService, cardService *service.CardService, postService *service.PostService) *AdminHandler {
	return &AdminHandler{
		fulfillmentService: fulfillmentService,
		cardService:        cardService,
		postService:        postService,
	}
}

// ListOrders returns recent orders across all customers --> GET /admin/orders
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.fulfillmentService.AllOrders(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"orders": orders})
}

// ShipOrder attaches tracking info --> POST /admin/orders/ship
func (h *AdminHandler) ShipOrder(c echo.Context) error {
	var body struct {
		OrderID         string `json:"order_id"`
		TrackingCarrier string `json:"tracking_carrier"`
		TrackingCode    string `json:"tracking_code"`
		TrackingURL     string `json:"tracking_url"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.OrderID == "" {
		return c.JSON(400, map[string]string{"error": "Missing order_id"})
	}

	order, err := h.fulfillmentService.Ship(c.Request().Context(), body.OrderID, body.TrackingCarrier, body.TrackingCode, body.TrackingURL)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "order": order})
}

// DeliverOrder marks an order delivered --> POST /admin/orders/deliver
func (h *AdminHandler) DeliverOrder(c echo.Context) error {
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.OrderID == "" {
		return c.JSON(400, map[string]string{"error": "Missing order_id"})
	}

	order, err := h.fulfillmentService.Deliver(c.Request().Context(), body.OrderID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "order": order})
}

// ImportCards bulk-upserts catalog rows --> POST /admin/cards/import
func (h *AdminHandler) ImportCards(c echo.Context) error {
	var body struct {
		Cards []entity.Card `json:"cards"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if len(body.Cards) == 0 {
		return c.JSON(400, map[string]string{"error": "Missing cards"})
	}

	imported, err := h.cardService.Import(c.Request().Context(), body.Cards)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "imported": imported})
}

// ListPosts returns every post, drafts included --> GET /admin/posts
func (h *AdminHandler) ListPosts(c echo.Context) error {
	posts, err := h.postService.ListAll(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"posts": posts})
}

// GetPost returns one post by id --> GET /admin/posts/:id
func (h *AdminHandler) GetPost(c echo.Context) error {
	post, err := h.postService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"post": post})
}

// CreatePost creates a draft post --> POST /admin/posts
func (h *AdminHandler) CreatePost(c echo.Context) error {
	var in service.PostInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	post, err := h.postService.Create(c.Request().Context(), in)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"id": post.ID})
}

// UpdatePost patches editable fields --> PATCH /admin/posts/:id
func (h *AdminHandler) UpdatePost(c echo.Context) error {
	var in service.PostInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	post, err := h.postService.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "id": post.ID})
}

// DeletePost removes a post --> DELETE /admin/posts/:id
func (h *AdminHandler) DeletePost(c echo.Context) error {
	if err := h.postService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true})
}
