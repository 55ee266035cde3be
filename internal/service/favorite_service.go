package service

import (
	"context"

	"cardstore/internal/entity"
)

type FavoriteService struct {
	favorites FavoriteStore
	users     UserStore
}

func NewFavoriteService(favorites FavoriteStore, users UserStore) *FavoriteService {
	return &FavoriteService{favorites: favorites, users: users}
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]string, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.favorites.List(ctx, userID)
}

// Toggle flips a favorite and returns whether the card is now favorited.
func (s *FavoriteService) Toggle(ctx context.Context, userID, rawCardID string) (bool, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrUserNotFound
	}
	return s.favorites.Toggle(ctx, userID, entity.ParseCardID(rawCardID))
}
