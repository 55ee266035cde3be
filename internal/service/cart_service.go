package service

import (
	"context"
	"database/sql"
	"errors"

	"cardstore/internal/entity"
)

// CartService owns the per-user cart. Quantities are clamped to the card's
// current stock at write time; that check is advisory only — the cart may go
// stale and the real stock check happens again at checkout and settlement.
type CartService struct {
	carts CartStore
	cards CardStore
	users UserStore
}

func NewCartService(carts CartStore, cards CardStore, users UserStore) *CartService {
	return &CartService{carts: carts, cards: cards, users: users}
}

func (s *CartService) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.carts.Items(ctx, userID)
}

// Upsert sets a line's quantity, clamped to available stock.
func (s *CartService) Upsert(ctx context.Context, userID, rawCardID string, qty int) (*entity.CartItem, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	cardID := entity.ParseCardID(rawCardID)
	card, err := s.cards.GetByID(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &CardNotFoundError{CardID: cardID}
	}
	if err != nil {
		return nil, err
	}

	if card.Stock <= 0 {
		return nil, &StockError{CardID: card.ID, Title: card.Title, Stock: card.Stock, Requested: qty}
	}

	if qty < 1 {
		qty = 1
	}
	if qty > card.Stock {
		qty = card.Stock
	}

	item := entity.CartItem{UserID: userID, CardID: cardID, Qty: qty}
	if err := s.carts.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartService) Delete(ctx context.Context, userID, rawCardID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, userID, entity.ParseCardID(rawCardID))
}

func (s *CartService) requireUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
