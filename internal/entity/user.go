package entity

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Favorite struct {
	UserID    string    `json:"user_id"`
	CardID    string    `json:"card_id"`
	CreatedAt time.Time `json:"created_at"`
}
