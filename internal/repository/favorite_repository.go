package repository

import (
	"context"
	"database/sql"
)

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db}
}

func (r *FavoriteRepository) List(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT card_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cardIDs []string
	for rows.Next() {
		var cardID string
		if err := rows.Scan(&cardID); err != nil {
			return nil, err
		}
		cardIDs = append(cardIDs, cardID)
	}
	return cardIDs, rows.Err()
}

// Toggle flips the favorite and reports the resulting state. Deleting first
// makes a repeated toggle land on the opposite state every time, never error.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, cardID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND card_id = ?`, userID, cardID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO favorites (user_id, card_id) VALUES (?, ?)`, userID, cardID)
	if err != nil {
		return false, err
	}
	return true, nil
}
