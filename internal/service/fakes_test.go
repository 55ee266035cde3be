package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"cardstore/internal/entity"
)

// In-memory stores with the same guard semantics as the SQL layer: stock
// decrements are conditional, status transitions are compare-and-swap.

type fakeCardStore struct {
	mu    sync.Mutex
	cards map[string]*entity.Card
}

func newFakeCardStore(cards ...*entity.Card) *fakeCardStore {
	s := &fakeCardStore{cards: make(map[string]*entity.Card)}
	for _, c := range cards {
		cp := *c
		s.cards[c.ID] = &cp
	}
	return s
}

func (s *fakeCardStore) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *card
	return &cp, nil
}

func (s *fakeCardStore) GetByIDs(ctx context.Context, ids []string) ([]*entity.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Card
	for _, id := range ids {
		if card, ok := s.cards[id]; ok {
			cp := *card
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeCardStore) List(ctx context.Context, sport string) ([]*entity.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Card
	for _, card := range s.cards {
		if sport == "" || string(card.Sport) == sport {
			cp := *card
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeCardStore) Upsert(ctx context.Context, card *entity.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cards[card.ID]; ok {
		stock := existing.Stock
		cp := *card
		cp.Stock = stock
		s.cards[card.ID] = &cp
		return nil
	}
	cp := *card
	s.cards[card.ID] = &cp
	return nil
}

func (s *fakeCardStore) ReserveStock(ctx context.Context, id string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok || card.Stock < qty {
		return false, nil
	}
	card.Stock -= qty
	return true, nil
}

func (s *fakeCardStore) ReleaseStock(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card, ok := s.cards[id]; ok {
		card.Stock += qty
	}
	return nil
}

func (s *fakeCardStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards[id].Stock
}

type fakeCartStore struct {
	mu    sync.Mutex
	items map[string][]entity.CartItem // by user
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{items: make(map[string][]entity.CartItem)}
}

func (s *fakeCartStore) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CartItem(nil), s.items[userID]...), nil
}

func (s *fakeCartStore) Upsert(ctx context.Context, item entity.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items[item.UserID] {
		if existing.CardID == item.CardID {
			s.items[item.UserID][i] = item
			return nil
		}
	}
	s.items[item.UserID] = append(s.items[item.UserID], item)
	return nil
}

func (s *fakeCartStore) Delete(ctx context.Context, userID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.items[userID]
	for i, item := range lines {
		if item.CardID == cardID {
			s.items[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeCartStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
}

func newFakeOrderStore(orders ...*entity.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[string]*entity.Order)}
	for _, o := range orders {
		cp := *o
		s.orders[o.ID] = &cp
	}
	return s
}

func (s *fakeOrderStore) Create(ctx context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	cp.CreatedAt = time.Now()
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *order
	return &cp, nil
}

func (s *fakeOrderStore) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListAll(ctx context.Context, limit int) ([]*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Order
	for _, order := range s.orders {
		cp := *order
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeOrderStore) ClaimPaid(ctx context.Context, id string, ref entity.PaymentRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.Status != entity.OrderStatusPending {
		return false, nil
	}
	order.Status = entity.OrderStatusPaid
	now := time.Now()
	order.PaidAt = &now
	applyRef(order, ref)
	return true, nil
}

func (s *fakeOrderStore) CancelPending(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.Status != entity.OrderStatusPending {
		return false, nil
	}
	order.Status = entity.OrderStatusCancelled
	return true, nil
}

func (s *fakeOrderStore) SavePaymentRef(ctx context.Context, id string, ref entity.PaymentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[id]; ok {
		applyRef(order, ref)
	}
	return nil
}

func (s *fakeOrderStore) SetProviderSession(ctx context.Context, id, provider, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return sql.ErrNoRows
	}
	switch provider {
	case entity.ProviderPayPal:
		order.PayPalOrderID = sessionID
	case entity.ProviderMercadoPago:
		order.MPPreferenceID = sessionID
	}
	return nil
}

func (s *fakeOrderStore) SetTracking(ctx context.Context, id, carrier, code, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || order.Status != entity.OrderStatusPaid {
		return false, nil
	}
	order.Status = entity.OrderStatusShipped
	order.TrackingCarrier = carrier
	order.TrackingCode = code
	order.TrackingURL = url
	now := time.Now()
	order.ShippedAt = &now
	return true, nil
}

func (s *fakeOrderStore) MarkDelivered(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok || (order.Status != entity.OrderStatusPaid && order.Status != entity.OrderStatusShipped) {
		return false, nil
	}
	order.Status = entity.OrderStatusDelivered
	now := time.Now()
	order.DeliveredAt = &now
	return true, nil
}

func (s *fakeOrderStore) status(id string) entity.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id].Status
}

func applyRef(order *entity.Order, ref entity.PaymentRef) {
	switch ref.Provider {
	case entity.ProviderPayPal:
		if ref.CaptureID != "" {
			order.PayPalCaptureID = ref.CaptureID
		}
		if ref.PayerEmail != "" {
			order.PayPalPayerEmail = ref.PayerEmail
		}
	case entity.ProviderMercadoPago:
		if ref.PaymentID != "" {
			order.MPPaymentID = ref.PaymentID
		}
		if ref.MerchantOrderID != "" {
			order.MPMerchantOrderID = ref.MerchantOrderID
		}
	}
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id
}

func newFakeUserStore(users ...*entity.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*entity.User)}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeUserStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string // "<event>:<orderID>"
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event string, order *entity.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event+":"+order.ID)
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = value
	return true, nil
}
