package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"cardstore/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// CardService serves catalog reads through a read-through Redis cache and
// handles the admin bulk import.
type CardService struct {
	cards CardStore
	cache Cache
}

func NewCardService(cards CardStore, cache Cache) *CardService {
	return &CardService{cards: cards, cache: cache}
}

func cardCacheKey(id string) string {
	return fmt.Sprintf("card:%s", id)
}

// GetCard returns a single card, preferring the cache.
func (s *CardService) GetCard(ctx context.Context, rawID string) (*entity.Card, error) {
	id := entity.ParseCardID(rawID)

	cached, err := s.cache.Get(ctx, cardCacheKey(id))
	if err != nil {
		logger.Error().Err(err).Str("card_id", id).Msg("Error reading card from cache")
	} else if cached != "" {
		var card entity.Card
		if err := json.Unmarshal([]byte(cached), &card); err == nil {
			return &card, nil
		}
		logger.Warn().Str("card_id", id).Msg("Dropping unreadable card cache entry")
	}

	card, err := s.cards.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &CardNotFoundError{CardID: id}
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(card); err == nil {
		if err := s.cache.Set(ctx, cardCacheKey(id), string(data), 0); err != nil {
			logger.Error().Err(err).Str("card_id", id).Msg("Error writing card to cache")
		}
	}
	return card, nil
}

// ListCards returns the catalog, optionally filtered by sport.
func (s *CardService) ListCards(ctx context.Context, sport string) ([]*entity.Card, error) {
	if sport != "" && !entity.ValidSport(sport) {
		return nil, fmt.Errorf("unknown sport %q", sport)
	}
	return s.cards.List(ctx, sport)
}

// Import bulk-upserts catalog rows. Stock of existing cards is preserved by
// the store; the cache entry is dropped so the next read sees the new fields.
func (s *CardService) Import(ctx context.Context, cards []entity.Card) (int, error) {
	imported := 0
	for i := range cards {
		card := cards[i]
		card.ID = entity.ParseCardID(card.ID)
		if card.ID == "" || card.Title == "" || !entity.ValidSport(string(card.Sport)) {
			logger.Warn().Str("card_id", card.ID).Msg("Skipping invalid import row")
			continue
		}
		if card.Player == "" {
			card.Player = "Unknown"
		}
		if err := s.cards.Upsert(ctx, &card); err != nil {
			return imported, err
		}
		if err := s.cache.Delete(ctx, cardCacheKey(card.ID)); err != nil {
			logger.Error().Err(err).Str("card_id", card.ID).Msg("Error invalidating card cache")
		}
		imported++
	}
	return imported, nil
}

// InvalidateCache drops the cache entries for the given cards. Settlement
// calls this after stock moves.
func (s *CardService) InvalidateCache(ctx context.Context, ids ...string) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cardCacheKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Error().Err(err).Msg("Error invalidating card cache")
	}
}
