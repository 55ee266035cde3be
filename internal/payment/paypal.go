package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cardstore/internal/entity"
)

// PayPalClient speaks the v2 Checkout Orders API. Amounts travel as decimal
// strings; locally everything stays in integer cents until the last moment.
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

func NewPayPalClient(baseURL, clientID, clientSecret string) *PayPalClient {
	return &PayPalClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("paypal credentials not configured")
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken      string `json:"access_token"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token error: %s", body.ErrorDescription)
	}
	return body.AccessToken, nil
}

func (c *PayPalClient) call(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
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
	req.Header.Set("Authorization", "Bearer "+token)
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
			apiErr.Message = fmt.Sprintf("paypal API error (%d)", resp.StatusCode)
		}
		return fmt.Errorf("%s", apiErr.Message)
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

// CreateOrder opens a remote payment session sized to the order's total,
// tagged with the local order id so the provider echoes it back.
func (c *PayPalClient) CreateOrder(ctx context.Context, order *entity.Order) (string, error) {
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": order.ID,
			"custom_id":    order.ID,
			"amount": map[string]string{
				"currency_code": order.Currency,
				"value":         centsToDecimal(order.TotalCents),
			},
		}},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/v2/checkout/orders", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("paypal returned no order id")
	}
	return out.ID, nil
}

// CaptureResult is the normalized capture response.
type CaptureResult struct {
	Outcome    Outcome
	CaptureID  string
	PayerEmail string
}

// Capture executes the capture call for an approved PayPal order and maps the
// provider status onto the settlement trichotomy.
func (c *PayPalClient) Capture(ctx context.Context, paypalOrderID string) (*CaptureResult, error) {
	var out struct {
		Status string `json:"status"`
		Payer  struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID string `json:"id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", paypalOrderID)
	if err := c.call(ctx, http.MethodPost, path, map[string]any{}, &out); err != nil {
		return nil, err
	}

	result := &CaptureResult{PayerEmail: out.Payer.EmailAddress}
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		result.CaptureID = out.PurchaseUnits[0].Payments.Captures[0].ID
	}

	switch out.Status {
	case "COMPLETED":
		result.Outcome = OutcomeApproved
	case "DECLINED", "VOIDED":
		result.Outcome = OutcomeRejected
	default:
		result.Outcome = OutcomePending
	}
	return result, nil
}

func centsToDecimal(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
