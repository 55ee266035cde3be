package service

import (
	"context"
	"time"

	"cardstore/internal/entity"
)

// Store interfaces are implemented by the repository package; tests substitute
// in-memory fakes.

type CardStore interface {
	GetByID(ctx context.Context, id string) (*entity.Card, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Card, error)
	List(ctx context.Context, sport string) ([]*entity.Card, error)
	Upsert(ctx context.Context, card *entity.Card) error
	ReserveStock(ctx context.Context, id string, qty int) (bool, error)
	ReleaseStock(ctx context.Context, id string, qty int) error
}

type CartStore interface {
	Items(ctx context.Context, userID string) ([]entity.CartItem, error)
	Upsert(ctx context.Context, item entity.CartItem) error
	Delete(ctx context.Context, userID, cardID string) error
	Clear(ctx context.Context, userID string) error
}

type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	ListAll(ctx context.Context, limit int) ([]*entity.Order, error)
	ClaimPaid(ctx context.Context, id string, ref entity.PaymentRef) (bool, error)
	CancelPending(ctx context.Context, id string) (bool, error)
	SavePaymentRef(ctx context.Context, id string, ref entity.PaymentRef) error
	SetProviderSession(ctx context.Context, id, provider, sessionID string) error
	SetTracking(ctx context.Context, id, carrier, code, url string) (bool, error)
	MarkDelivered(ctx context.Context, id string) (bool, error)
}

type UserStore interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]string, error)
	Toggle(ctx context.Context, userID, cardID string) (bool, error)
}

type PostStore interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Post, error)
	LatestPublished(ctx context.Context) (*entity.Post, error)
	ListPublished(ctx context.Context) ([]*entity.Post, error)
	ListAll(ctx context.Context, limit int) ([]*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id string) error
}

// Cache is the slice of Redis the services use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// Publisher emits order lifecycle events. Implementations must not fail the
// request path; delivery is best effort.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event string, order *entity.Order)
}
