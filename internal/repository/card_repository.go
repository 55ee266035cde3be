package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cardstore/internal/entity"
)

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db}
}

const cardColumns = `id, sport, title, player, price_cents, stock, COALESCE(image, ''), COALESCE(image2, ''), great_deal`

func scanCard(row interface{ Scan(...any) error }) (*entity.Card, error) {
	card := &entity.Card{}
	err := row.Scan(&card.ID, &card.Sport, &card.Title, &card.Player, &card.PriceCents, &card.Stock, &card.Image, &card.Image2, &card.GreatDeal)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = ?`, cardColumns)
	return scanCard(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDs loads the given cards in one query. Missing ids are simply absent
// from the result; callers diff against their input to report them.
func (r *CardRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id IN (%s)`, cardColumns, placeholders)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*entity.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *CardRepository) List(ctx context.Context, sport string) ([]*entity.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards`, cardColumns)
	var args []any
	if sport != "" {
		query += ` WHERE sport = ?`
		args = append(args, sport)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*entity.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// Upsert inserts a card or refreshes its catalog fields. Stock on existing
// rows is left alone so a re-import never clobbers live inventory.
func (r *CardRepository) Upsert(ctx context.Context, card *entity.Card) error {
	query := `INSERT INTO cards (id, sport, title, player, price_cents, stock, image, image2, great_deal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			sport = VALUES(sport), title = VALUES(title), player = VALUES(player),
			price_cents = VALUES(price_cents), image = VALUES(image),
			image2 = VALUES(image2), great_deal = VALUES(great_deal)`
	_, err := r.db.ExecContext(ctx, query, card.ID, card.Sport, card.Title, card.Player, card.PriceCents, card.Stock, card.Image, card.Image2, card.GreatDeal)
	return err
}

// ReserveStock is the guarded decrement: the stock check and the write happen
// in one conditional UPDATE, so the database serializes competing reservations.
// Zero rows affected means the precondition failed and nothing changed.
func (r *CardRepository) ReserveStock(ctx context.Context, id string, qty int) (bool, error) {
	query := `UPDATE cards SET stock = stock - ? WHERE id = ? AND stock >= ?`
	res, err := r.db.ExecContext(ctx, query, qty, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseStock undoes a prior successful reservation.
func (r *CardRepository) ReleaseStock(ctx context.Context, id string, qty int) error {
	query := `UPDATE cards SET stock = stock + ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, qty, id)
	return err
}
