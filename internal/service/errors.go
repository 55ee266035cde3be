package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrOrderNotFound     = errors.New("order not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidShipping   = errors.New("missing required shipping field")
	ErrCountryNotAllowed = errors.New("country not in shipping allow-list")
	ErrInvalidTransition = errors.New("order status does not allow this transition")
	ErrMissingTracking   = errors.New("tracking code is required")
)

// CardNotFoundError identifies which cart line referenced a card the catalog
// does not have.
type CardNotFoundError struct {
	CardID string
}

func (e *CardNotFoundError) Error() string {
	return fmt.Sprintf("card %s not found", e.CardID)
}

// StockError identifies the offending line of a failed stock check.
type StockError struct {
	CardID    string
	Title     string
	Stock     int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (card %s): have %d, want %d", e.Title, e.CardID, e.Stock, e.Requested)
}
