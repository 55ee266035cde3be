package api

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"cardstore/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayPalOrder opens a PayPal session --> POST /paypal/orders
func (h *PaymentHandler) CreatePayPalOrder(c echo.Context) error {
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.OrderID == "" {
		return c.JSON(400, map[string]string{"error": "Missing order_id"})
	}

	paypalOrderID, err := h.paymentService.CreatePayPalOrder(c.Request().Context(), body.OrderID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "paypal_order_id": paypalOrderID})
}

// CapturePayPalOrder runs the synchronous capture flow --> POST /paypal/capture
func (h *PaymentHandler) CapturePayPalOrder(c echo.Context) error {
	var body struct {
		OrderID       string `json:"order_id"`
		PayPalOrderID string `json:"paypal_order_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.OrderID == "" || body.PayPalOrderID == "" {
		return c.JSON(400, map[string]string{"error": "Missing order_id/paypal_order_id"})
	}

	outcome, err := h.paymentService.CapturePayPal(c.Request().Context(), body.OrderID, body.PayPalOrderID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": outcome == service.OutcomePaid, "outcome": outcome})
}

// CreateMercadoPagoPreference opens an MP session --> POST /mercadopago/preferences
func (h *PaymentHandler) CreateMercadoPagoPreference(c echo.Context) error {
	var body struct {
		OrderID string `json:"order_id"`
		Locale  string `json:"locale"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	if body.OrderID == "" {
		return c.JSON(400, map[string]string{"error": "Missing order_id"})
	}

	pref, err := h.paymentService.CreateMercadoPagoPreference(c.Request().Context(), body.OrderID, body.Locale)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(200, map[string]any{"ok": true, "preference_id": pref.ID, "init_point": pref.InitPoint})
}

// MercadoPagoWebhook receives provider notifications --> POST /mercadopago/webhook
//
// The response is 200 for everything the handler understood, including
// duplicates and unknown orders; the provider only needs to know whether to
// retry delivery.
func (h *PaymentHandler) MercadoPagoWebhook(c echo.Context) error {
	var body struct {
		Type string `json:"type"`
		Data struct {
			ID json.Number `json:"id"`
		} `json:"data"`
		ID json.Number `json:"id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(200, map[string]any{"ok": true})
	}

	dataID := body.Data.ID.String()
	if dataID == "" {
		dataID = body.ID.String()
	}

	if err := h.paymentService.HandleMercadoPagoWebhook(c.Request().Context(), body.Type, dataID); err != nil {
		// A processing failure must surface as non-2xx so the provider retries.
		return c.JSON(500, map[string]any{"ok": false})
	}
	return c.JSON(200, map[string]any{"ok": true})
}
