package repository

import (
	"context"
	"database/sql"

	"cardstore/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// Create persists the order and its item snapshots in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	orderQuery := `INSERT INTO orders (id, user_id, status, currency, total_cents,
		full_name, phone, address1, address2, city, state, zip, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID, order.UserID, order.Status, order.Currency, order.TotalCents,
		order.Shipping.FullName, order.Shipping.Phone, order.Shipping.Address1,
		nullable(order.Shipping.Address2), order.Shipping.City, order.Shipping.State,
		order.Shipping.Zip, order.Shipping.Country)
	if err != nil {
		tx.Rollback()
		return err
	}

	// Insert item snapshots with batch
	itemQuery := `INSERT INTO order_items (order_id, card_id, title, unit_cents, qty) VALUES `

	var values []any
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?),"
		values = append(values, order.ID, item.CardID, item.Title, item.UnitCents, item.Qty)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

const orderColumns = `o.id, o.user_id, o.status, o.currency, o.total_cents,
	o.full_name, o.phone, o.address1, COALESCE(o.address2, ''), o.city, o.state, o.zip, o.country,
	COALESCE(o.mp_preference_id, ''), COALESCE(o.mp_payment_id, ''), COALESCE(o.mp_merchant_order_id, ''),
	COALESCE(o.paypal_order_id, ''), COALESCE(o.paypal_capture_id, ''), COALESCE(o.paypal_payer_email, ''),
	COALESCE(o.tracking_carrier, ''), COALESCE(o.tracking_code, ''), COALESCE(o.tracking_url, ''),
	o.created_at, o.paid_at, o.shipped_at, o.delivered_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	order := &entity.Order{}
	err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.Currency, &order.TotalCents,
		&order.Shipping.FullName, &order.Shipping.Phone, &order.Shipping.Address1,
		&order.Shipping.Address2, &order.Shipping.City, &order.Shipping.State,
		&order.Shipping.Zip, &order.Shipping.Country,
		&order.MPPreferenceID, &order.MPPaymentID, &order.MPMerchantOrderID,
		&order.PayPalOrderID, &order.PayPalCaptureID, &order.PayPalPayerEmail,
		&order.TrackingCarrier, &order.TrackingCode, &order.TrackingURL,
		&order.CreatedAt, &order.PaidAt, &order.ShippedAt, &order.DeliveredAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	rows, err := r.db.QueryContext(ctx, `SELECT card_id, title, unit_cents, qty FROM order_items WHERE order_id = ?`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.CardID, &item.Title, &item.UnitCents, &item.Qty); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.user_id = ? ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ListAll returns the newest orders across all customers for the admin panel.
func (r *OrderRepository) ListAll(ctx context.Context, limit int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `, u.email FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order := &entity.Order{}
		err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.Currency, &order.TotalCents,
			&order.Shipping.FullName, &order.Shipping.Phone, &order.Shipping.Address1,
			&order.Shipping.Address2, &order.Shipping.City, &order.Shipping.State,
			&order.Shipping.Zip, &order.Shipping.Country,
			&order.MPPreferenceID, &order.MPPaymentID, &order.MPMerchantOrderID,
			&order.PayPalOrderID, &order.PayPalCaptureID, &order.PayPalPayerEmail,
			&order.TrackingCarrier, &order.TrackingCode, &order.TrackingURL,
			&order.CreatedAt, &order.PaidAt, &order.ShippedAt, &order.DeliveredAt,
			&order.UserEmail)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ClaimPaid is the conditional PENDING→PAID transition. The status guard in
// the WHERE clause makes duplicate settlements lose the claim instead of
// double-fulfilling: exactly one caller sees rows affected == 1.
func (r *OrderRepository) ClaimPaid(ctx context.Context, id string, ref entity.PaymentRef) (bool, error) {
	var query string
	var args []any
	switch ref.Provider {
	case entity.ProviderMercadoPago:
		query = `UPDATE orders SET status = ?, paid_at = NOW(), mp_payment_id = ?, mp_merchant_order_id = ?
			WHERE id = ? AND status = ?`
		args = []any{entity.OrderStatusPaid, nullable(ref.PaymentID), nullable(ref.MerchantOrderID), id, entity.OrderStatusPending}
	case entity.ProviderPayPal:
		query = `UPDATE orders SET status = ?, paid_at = NOW(), paypal_capture_id = ?, paypal_payer_email = ?
			WHERE id = ? AND status = ?`
		args = []any{entity.OrderStatusPaid, nullable(ref.CaptureID), nullable(ref.PayerEmail), id, entity.OrderStatusPending}
	default:
		query = `UPDATE orders SET status = ?, paid_at = NOW() WHERE id = ? AND status = ?`
		args = []any{entity.OrderStatusPaid, id, entity.OrderStatusPending}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelPending is the conditional PENDING→CANCELLED transition. A late or
// duplicate notification against an already settled order affects zero rows.
func (r *OrderRepository) CancelPending(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		entity.OrderStatusCancelled, id, entity.OrderStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SavePaymentRef records provider correlation ids without touching status,
// so a cancelled order still keeps the ids a refund flow would need.
func (r *OrderRepository) SavePaymentRef(ctx context.Context, id string, ref entity.PaymentRef) error {
	var query string
	var args []any
	switch ref.Provider {
	case entity.ProviderMercadoPago:
		query = `UPDATE orders SET mp_payment_id = COALESCE(?, mp_payment_id), mp_merchant_order_id = COALESCE(?, mp_merchant_order_id) WHERE id = ?`
		args = []any{nullable(ref.PaymentID), nullable(ref.MerchantOrderID), id}
	case entity.ProviderPayPal:
		query = `UPDATE orders SET paypal_capture_id = COALESCE(?, paypal_capture_id), paypal_payer_email = COALESCE(?, paypal_payer_email) WHERE id = ?`
		args = []any{nullable(ref.CaptureID), nullable(ref.PayerEmail), id}
	default:
		return nil
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SetProviderSession stores the remote session id handed back by create-session.
func (r *OrderRepository) SetProviderSession(ctx context.Context, id, provider, sessionID string) error {
	var query string
	switch provider {
	case entity.ProviderMercadoPago:
		query = `UPDATE orders SET mp_preference_id = ? WHERE id = ?`
	case entity.ProviderPayPal:
		query = `UPDATE orders SET paypal_order_id = ? WHERE id = ?`
	default:
		return nil
	}
	_, err := r.db.ExecContext(ctx, query, sessionID, id)
	return err
}

// SetTracking is the PAID→SHIPPED transition, guarded the same way as settlement.
func (r *OrderRepository) SetTracking(ctx context.Context, id, carrier, code, url string) (bool, error) {
	query := `UPDATE orders SET status = ?, tracking_carrier = ?, tracking_code = ?, tracking_url = ?, shipped_at = NOW()
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		entity.OrderStatusShipped, nullable(carrier), code, nullable(url), id, entity.OrderStatusPaid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkDelivered transitions PAID or SHIPPED to DELIVERED.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string) (bool, error) {
	query := `UPDATE orders SET status = ?, delivered_at = NOW() WHERE id = ? AND status IN (?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		entity.OrderStatusDelivered, id, entity.OrderStatusPaid, entity.OrderStatusShipped)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
