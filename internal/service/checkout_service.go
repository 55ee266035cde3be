package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"cardstore/internal/entity"
)

// Countries we ship to, with the flat fee charged per box (USD cents).
var shippingFeeCents = map[string]int64{
	"AR": 1200,
	"US": 3000,
	"ES": 5000,
	"IT": 5000,
	"DE": 5000,
	"FR": 5000,
}

// ShippingFee returns the flat fee for a country, or false when the country
// is not served.
func ShippingFee(country string) (int64, bool) {
	fee, ok := shippingFeeCents[strings.ToUpper(strings.TrimSpace(country))]
	return fee, ok
}

// CheckoutService turns a cart into a PENDING order. Deliberately no stock is
// reserved and the cart is not cleared here: an abandoned checkout must never
// lock inventory, and the customer can retry payment against the same cart.
type CheckoutService struct {
	carts  CartStore
	cards  CardStore
	orders OrderStore
	users  UserStore
	pub    Publisher
}

func NewCheckoutService(carts CartStore, cards CardStore, orders OrderStore, users UserStore, pub Publisher) *CheckoutService {
	return &CheckoutService{carts: carts, cards: cards, orders: orders, users: users, pub: pub}
}

// CreateOrder validates the cart and shipping data, freezes line-item prices
// and persists a PENDING order. Any validation failure aborts the whole
// checkout with no side effects.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID string, shipping entity.ShippingAddress) (*entity.Order, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	shipping.Country = strings.ToUpper(strings.TrimSpace(shipping.Country))
	fee, allowed := ShippingFee(shipping.Country)
	if !allowed {
		return nil, ErrCountryNotAllowed
	}
	if shipping.FullName == "" || shipping.Phone == "" || shipping.Address1 == "" ||
		shipping.City == "" || shipping.State == "" || shipping.Zip == "" {
		return nil, ErrInvalidShipping
	}

	lines, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Batch-load the referenced cards once.
	seen := make(map[string]bool, len(lines))
	var ids []string
	for i := range lines {
		lines[i].CardID = entity.ParseCardID(lines[i].CardID)
		if lines[i].Qty < 1 {
			lines[i].Qty = 1
		}
		if !seen[lines[i].CardID] {
			seen[lines[i].CardID] = true
			ids = append(ids, lines[i].CardID)
		}
	}
	cards, err := s.cards.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	// Validate every line and freeze the snapshots. Prices and titles are
	// copied here so later catalog edits never change this order.
	items := make([]entity.OrderItem, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		card, ok := byID[line.CardID]
		if !ok {
			return nil, &CardNotFoundError{CardID: line.CardID}
		}
		if card.Stock < line.Qty {
			return nil, &StockError{CardID: card.ID, Title: card.Title, Stock: card.Stock, Requested: line.Qty}
		}
		items = append(items, entity.OrderItem{
			CardID:    card.ID,
			Title:     card.Title,
			UnitCents: card.PriceCents,
			Qty:       line.Qty,
		})
		subtotal += card.PriceCents * int64(line.Qty)
	}

	order := &entity.Order{
		ID:         uuid.New().String(),
		UserID:     userID,
		Status:     entity.OrderStatusPending,
		Currency:   "USD",
		TotalCents: subtotal + fee,
		Items:      items,
		Shipping:   shipping,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Error creating order")
		return nil, err
	}

	logger.Info().Str("order_id", order.ID).Str("user_id", userID).Int64("total_cents", order.TotalCents).Msg("Order created")
	s.pub.PublishOrderEvent(ctx, "created", order)

	return order, nil
}

// Orders lists a customer's orders, newest first.
func (s *CheckoutService) Orders(ctx context.Context, userID string) ([]*entity.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
