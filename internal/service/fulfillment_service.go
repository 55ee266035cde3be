package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cardstore/internal/entity"
)

// FulfillmentService covers the admin side of an order's life after payment:
// attaching tracking info and marking delivery.
type FulfillmentService struct {
	orders OrderStore
	pub    Publisher
}

func NewFulfillmentService(orders OrderStore, pub Publisher) *FulfillmentService {
	return &FulfillmentService{orders: orders, pub: pub}
}

// Ship records tracking info and moves a PAID order to SHIPPED. The tracking
// code is mandatory; carrier and URL are not.
func (s *FulfillmentService) Ship(ctx context.Context, orderID, carrier, code, url string) (*entity.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingTracking
	}

	ok, err := s.orders.SetTracking(ctx, orderID, strings.TrimSpace(carrier), code, strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionError(ctx, orderID)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.pub.PublishOrderEvent(ctx, "shipped", order)
	return order, nil
}

// Deliver moves a PAID or SHIPPED order to DELIVERED.
func (s *FulfillmentService) Deliver(ctx context.Context, orderID string) (*entity.Order, error) {
	ok, err := s.orders.MarkDelivered(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionError(ctx, orderID)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.pub.PublishOrderEvent(ctx, "delivered", order)
	return order, nil
}

// AllOrders lists recent orders for the admin panel.
func (s *FulfillmentService) AllOrders(ctx context.Context) ([]*entity.Order, error) {
	return s.orders.ListAll(ctx, 200)
}

// transitionError distinguishes "no such order" from "wrong status" after a
// guarded transition affected zero rows.
func (s *FulfillmentService) transitionError(ctx context.Context, orderID string) error {
	_, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidTransition
}
