package entity

import "time"

type CartItem struct {
	UserID    string    `json:"user_id"`
	CardID    string    `json:"card_id"`
	Qty       int       `json:"qty"`
	UpdatedAt time.Time `json:"updated_at"`
}
