package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardstore/internal/entity"
)

func validShipping(country string) entity.ShippingAddress {
	return entity.ShippingAddress{
		FullName: "Ada Lovelace",
		Phone:    "+1 555 0100",
		Address1: "1 Main St",
		City:     "Springfield",
		State:    "IL",
		Zip:      "62701",
		Country:  country,
	}
}

func checkoutFixture() (*CheckoutService, *fakeCardStore, *fakeCartStore, *fakeOrderStore, *fakePublisher) {
	cards := newFakeCardStore(
		&entity.Card{ID: "101", Title: "Jordan Rookie", PriceCents: 2000, Stock: 10},
		&entity.Card{ID: "202", Title: "Messi Prizm", PriceCents: 1000, Stock: 3},
	)
	carts := newFakeCartStore()
	orders := newFakeOrderStore()
	users := newFakeUserStore(&entity.User{ID: "u1", Email: "ada@example.com"})
	pub := &fakePublisher{}
	return NewCheckoutService(carts, cards, orders, users, pub), cards, carts, orders, pub
}

func TestCreateOrderComputesTotalWithShippingFee(t *testing.T) {
	ctx := context.Background()
	svc, cards, carts, _, pub := checkoutFixture()

	// $40 of cards + $10 card, US fee is $30.
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "101", Qty: 2})
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "202", Qty: 1})

	order, err := svc.CreateOrder(ctx, "u1", validShipping("US"))
	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, int64(8000), order.TotalCents)
	assert.Equal(t, "USD", order.Currency)
	assert.Len(t, order.Items, 2)

	// Checkout never touches stock and never clears the cart.
	assert.Equal(t, 10, cards.stock("101"))
	items, _ := carts.Items(ctx, "u1")
	assert.Len(t, items, 2)

	assert.Equal(t, []string{"created:" + order.ID}, pub.published())
}

func TestCreateOrderFreezesPrices(t *testing.T) {
	ctx := context.Background()
	svc, cards, carts, orders, _ := checkoutFixture()

	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "101", Qty: 1})

	order, err := svc.CreateOrder(ctx, "u1", validShipping("AR"))
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), order.Items[0].UnitCents)
	assert.Equal(t, "Jordan Rookie", order.Items[0].Title)

	// Reprice the card after checkout; the stored order must not move.
	_ = cards.Upsert(ctx, &entity.Card{ID: "101", Title: "Jordan Rookie", PriceCents: 999999, Stock: 10})
	stored, err := orders.GetByID(ctx, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), stored.Items[0].UnitCents)
}

func TestCreateOrderShippingFeeByCountry(t *testing.T) {
	cases := map[string]int64{
		"AR": 1200,
		"US": 3000,
		"ES": 5000,
		"IT": 5000,
		"DE": 5000,
		"FR": 5000,
		"fr": 5000,
		" ar ": 1200,
	}
	for country, want := range cases {
		fee, ok := ShippingFee(country)
		assert.True(t, ok, country)
		assert.Equal(t, want, fee, country)
	}

	_, ok := ShippingFee("BR")
	assert.False(t, ok)
}

func TestCreateOrderRejectsUnservedCountry(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, orders, pub := checkoutFixture()
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "101", Qty: 1})

	_, err := svc.CreateOrder(ctx, "u1", validShipping("BR"))
	assert.ErrorIs(t, err, ErrCountryNotAllowed)

	all, _ := orders.ListAll(ctx, 10)
	assert.Empty(t, all)
	assert.Empty(t, pub.published())
}

func TestCreateOrderRejectsIncompleteShipping(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, _, _ := checkoutFixture()
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "101", Qty: 1})

	shipping := validShipping("US")
	shipping.Zip = ""
	_, err := svc.CreateOrder(ctx, "u1", shipping)
	assert.ErrorIs(t, err, ErrInvalidShipping)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	svc, _, _, _, _ := checkoutFixture()

	_, err := svc.CreateOrder(context.Background(), "u1", validShipping("US"))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderRejectsUnknownUser(t *testing.T) {
	svc, _, _, _, _ := checkoutFixture()

	_, err := svc.CreateOrder(context.Background(), "ghost", validShipping("US"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateOrderIdentifiesInsufficientLine(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, orders, _ := checkoutFixture()

	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "101", Qty: 1})
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "202", Qty: 5})

	_, err := svc.CreateOrder(ctx, "u1", validShipping("US"))

	var stockErr *StockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "202", stockErr.CardID)
	assert.Equal(t, 3, stockErr.Stock)
	assert.Equal(t, 5, stockErr.Requested)

	// Whole checkout aborts; nothing persisted.
	all, _ := orders.ListAll(ctx, 10)
	assert.Empty(t, all)
}

func TestCreateOrderFailsOnUnknownCard(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, _, _ := checkoutFixture()

	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "999", Qty: 1})

	_, err := svc.CreateOrder(ctx, "u1", validShipping("US"))

	var notFound *CardNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "999", notFound.CardID)
}

func TestCreateOrderNormalizesLegacyCardIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, _, _ := checkoutFixture()

	// Old clients stored prefixed ids like "Card-101".
	_ = carts.Upsert(ctx, entity.CartItem{UserID: "u1", CardID: "Card-101", Qty: 2})

	order, err := svc.CreateOrder(ctx, "u1", validShipping("AR"))
	assert.NoError(t, err)
	assert.Equal(t, "101", order.Items[0].CardID)
}
