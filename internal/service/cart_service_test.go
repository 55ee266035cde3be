package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardstore/internal/entity"
)

func cartFixture() (*CartService, *fakeCartStore) {
	cards := newFakeCardStore(
		&entity.Card{ID: "101", Title: "Jordan Rookie", PriceCents: 2000, Stock: 4},
		&entity.Card{ID: "202", Title: "Sold Out", PriceCents: 1000, Stock: 0},
	)
	carts := newFakeCartStore()
	users := newFakeUserStore(&entity.User{ID: "u1", Email: "ada@example.com"})
	return NewCartService(carts, cards, users), carts
}

func TestCartUpsertClampsToStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := cartFixture()

	item, err := svc.Upsert(ctx, "u1", "101", 9)
	assert.NoError(t, err)
	assert.Equal(t, 4, item.Qty)
}

func TestCartUpsertClampsToOne(t *testing.T) {
	ctx := context.Background()
	svc, _ := cartFixture()

	item, err := svc.Upsert(ctx, "u1", "101", 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, item.Qty)

	item, err = svc.Upsert(ctx, "u1", "101", -3)
	assert.NoError(t, err)
	assert.Equal(t, 1, item.Qty)
}

func TestCartUpsertRejectsSoldOutCard(t *testing.T) {
	ctx := context.Background()
	svc, carts := cartFixture()

	_, err := svc.Upsert(ctx, "u1", "202", 1)

	var stockErr *StockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "202", stockErr.CardID)

	items, _ := carts.Items(ctx, "u1")
	assert.Empty(t, items)
}

func TestCartUpsertUnknownCard(t *testing.T) {
	svc, _ := cartFixture()

	_, err := svc.Upsert(context.Background(), "u1", "999", 1)

	var notFound *CardNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "999", notFound.CardID)
}

func TestCartUpsertNormalizesCardID(t *testing.T) {
	ctx := context.Background()
	svc, carts := cartFixture()

	item, err := svc.Upsert(ctx, "u1", "Card-101", 2)
	assert.NoError(t, err)
	assert.Equal(t, "101", item.CardID)

	items, _ := carts.Items(ctx, "u1")
	assert.Len(t, items, 1)
	assert.Equal(t, "101", items[0].CardID)
}

func TestCartRequiresKnownUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := cartFixture()

	_, err := svc.Items(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Upsert(ctx, "ghost", "101", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.Delete(ctx, "ghost", "101")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCartDeleteRemovesLine(t *testing.T) {
	ctx := context.Background()
	svc, carts := cartFixture()

	_, err := svc.Upsert(ctx, "u1", "101", 2)
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(ctx, "u1", "101"))

	items, _ := carts.Items(ctx, "u1")
	assert.Empty(t, items)
}
