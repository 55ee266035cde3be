package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"cardstore/internal/entity"
)

// MercadoPagoClient speaks the Checkout Preferences and Payments APIs.
// Preferences are priced in ARS via a configured conversion rate; the order
// itself stays in USD cents.
type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	siteURL     string
	usdToARS    float64
	http        *http.Client
}

func NewMercadoPagoClient(baseURL, accessToken, siteURL string, usdToARS float64) *MercadoPagoClient {
	return &MercadoPagoClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		siteURL:     strings.TrimRight(siteURL, "/"),
		usdToARS:    usdToARS,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *MercadoPagoClient) call(ctx context.Context, method, path string, payload, out any) error {
	if c.accessToken == "" {
		return fmt.Errorf("mercadopago access token not configured")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("mercadopago API error (%d)", resp.StatusCode)
		}
		return fmt.Errorf("%s", apiErr.Message)
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

// Preference is the created checkout session handle.
type Preference struct {
	ID        string
	InitPoint string
}

// CreatePreference opens a checkout preference for the order: one line per
// item plus a shipping line derived from total minus item subtotal, all
// tagged with the local order id as external_reference.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, order *entity.Order, locale string) (*Preference, error) {
	if locale == "" {
		locale = "en"
	}

	var itemsSubtotal int64
	items := make([]map[string]any, 0, len(order.Items)+1)
	for _, item := range order.Items {
		itemsSubtotal += item.UnitCents * int64(item.Qty)
		items = append(items, map[string]any{
			"id":          item.CardID,
			"title":       item.Title,
			"quantity":    item.Qty,
			"unit_price":  c.toARS(item.UnitCents),
			"currency_id": "ARS",
		})
	}
	shippingCents := order.TotalCents - itemsSubtotal
	if shippingCents < 0 {
		shippingCents = 0
	}
	items = append(items, map[string]any{
		"id":          "shipping_box",
		"title":       "Shipping (box)",
		"quantity":    1,
		"unit_price":  c.toARS(shippingCents),
		"currency_id": "ARS",
	})

	returnBase := fmt.Sprintf("%s/%s/orders", c.siteURL, locale)
	payload := map[string]any{
		"items":              items,
		"external_reference": order.ID,
		"notification_url":   c.siteURL + "/api/mercadopago/webhook",
		"back_urls": map[string]string{
			"success": returnBase + "?status=success&orderId=" + order.ID,
			"pending": returnBase + "?status=pending&orderId=" + order.ID,
			"failure": returnBase + "?status=failure&orderId=" + order.ID,
		},
		"auto_return": "approved",
	}

	var out struct {
		ID        string `json:"id"`
		InitPoint string `json:"init_point"`
	}
	if err := c.call(ctx, http.MethodPost, "/checkout/preferences", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("mercadopago returned no preference id")
	}
	return &Preference{ID: out.ID, InitPoint: out.InitPoint}, nil
}

// PaymentInfo is a payment's authoritative state, re-fetched by id.
type PaymentInfo struct {
	Outcome         Outcome
	OrderID         string // local order id (external_reference)
	PaymentID       string
	MerchantOrderID string
}

// mapStatus folds MercadoPago payment statuses onto the trichotomy.
func mapStatus(status string) Outcome {
	switch status {
	case "approved":
		return OutcomeApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return OutcomeRejected
	default:
		return OutcomePending
	}
}

// GetPayment fetches a payment by id. Webhook handlers call this instead of
// trusting the webhook body.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	var out struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		ExternalReference string      `json:"external_reference"`
		Order             struct {
			ID json.Number `json:"id"`
		} `json:"order"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}

	return &PaymentInfo{
		Outcome:         mapStatus(out.Status),
		OrderID:         out.ExternalReference,
		PaymentID:       out.ID.String(),
		MerchantOrderID: out.Order.ID.String(),
	}, nil
}

// GetMerchantOrder fetches a merchant order and folds its payments into a
// single outcome: any approved payment wins, otherwise any rejected one,
// otherwise pending.
func (c *MercadoPagoClient) GetMerchantOrder(ctx context.Context, merchantOrderID string) (*PaymentInfo, error) {
	var out struct {
		ID                json.Number `json:"id"`
		ExternalReference string      `json:"external_reference"`
		Payments          []struct {
			ID     json.Number `json:"id"`
			Status string      `json:"status"`
		} `json:"payments"`
	}
	if err := c.call(ctx, http.MethodGet, "/merchant_orders/"+merchantOrderID, nil, &out); err != nil {
		return nil, err
	}

	info := &PaymentInfo{
		Outcome:         OutcomePending,
		OrderID:         out.ExternalReference,
		MerchantOrderID: out.ID.String(),
	}
	for _, p := range out.Payments {
		switch mapStatus(p.Status) {
		case OutcomeApproved:
			info.Outcome = OutcomeApproved
			info.PaymentID = p.ID.String()
			return info, nil
		case OutcomeRejected:
			info.Outcome = OutcomeRejected
			info.PaymentID = p.ID.String()
		}
	}
	return info, nil
}

func (c *MercadoPagoClient) toARS(usdCents int64) float64 {
	if c.usdToARS <= 0 {
		// No rate configured: charge in whole USD as a fallback.
		return math.Round(float64(usdCents)) / 100
	}
	return math.Round(float64(usdCents) / 100 * c.usdToARS)
}
