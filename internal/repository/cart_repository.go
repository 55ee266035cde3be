package repository

import (
	"context"
	"database/sql"

	"cardstore/internal/entity"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

func (r *CartRepository) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	query := `SELECT user_id, card_id, qty, updated_at FROM cart_items WHERE user_id = ? ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var item entity.CartItem
		if err := rows.Scan(&item.UserID, &item.CardID, &item.Qty, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepository) Upsert(ctx context.Context, item entity.CartItem) error {
	query := `INSERT INTO cart_items (user_id, card_id, qty) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE qty = VALUES(qty)`
	_, err := r.db.ExecContext(ctx, query, item.UserID, item.CardID, item.Qty)
	return err
}

func (r *CartRepository) Delete(ctx context.Context, userID, cardID string) error {
	query := `DELETE FROM cart_items WHERE user_id = ? AND card_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID, cardID)
	return err
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	query := `DELETE FROM cart_items WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
