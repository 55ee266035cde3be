package entity

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no payment settlement may touch the order anymore.
// SHIPPED and DELIVERED are only reachable through PAID, so any status other
// than PENDING means settlement already happened one way or the other.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

// OrderItem is a snapshot of the card at order-creation time. Title and unit
// price are frozen here; later catalog edits never change a placed order.
type OrderItem struct {
	CardID    string `json:"card_id"`
	Title     string `json:"title"`
	UnitCents int64  `json:"unit_cents"`
	Qty       int    `json:"qty"`
}

type ShippingAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// PaymentRef carries the provider-side correlation ids learned during
// settlement. Which fields are set depends on the provider.
type PaymentRef struct {
	Provider        string `json:"provider"`
	PaymentID       string `json:"payment_id,omitempty"`
	MerchantOrderID string `json:"merchant_order_id,omitempty"`
	CaptureID       string `json:"capture_id,omitempty"`
	PayerEmail      string `json:"payer_email,omitempty"`
}

const (
	ProviderPayPal      = "paypal"
	ProviderMercadoPago = "mercadopago"
)

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	Currency   string          `json:"currency"`
	TotalCents int64           `json:"total_cents"`
	Items      []OrderItem     `json:"items"`
	Shipping   ShippingAddress `json:"shipping"`

	MPPreferenceID    string `json:"mp_preference_id,omitempty"`
	MPPaymentID       string `json:"mp_payment_id,omitempty"`
	MPMerchantOrderID string `json:"mp_merchant_order_id,omitempty"`
	PayPalOrderID     string `json:"paypal_order_id,omitempty"`
	PayPalCaptureID   string `json:"paypal_capture_id,omitempty"`
	PayPalPayerEmail  string `json:"paypal_payer_email,omitempty"`

	TrackingCarrier string `json:"tracking_carrier,omitempty"`
	TrackingCode    string `json:"tracking_code,omitempty"`
	TrackingURL     string `json:"tracking_url,omitempty"`

	UserEmail string `json:"user_email,omitempty"` // admin listing only

	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}
