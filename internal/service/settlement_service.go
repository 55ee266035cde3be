package service

import (
	"context"
	"database/sql"
	"errors"

	"cardstore/internal/entity"
)

// SettleOutcome reports what a settlement attempt did.
type SettleOutcome string

const (
	OutcomePaid           SettleOutcome = "paid"
	OutcomeCancelled      SettleOutcome = "cancelled"
	OutcomeStockConflict  SettleOutcome = "stock_conflict"
	OutcomeAlreadySettled SettleOutcome = "already_settled"
)

// OutcomeRecorder lets the metrics layer observe settlement outcomes without
// the service depending on prometheus directly.
type OutcomeRecorder interface {
	RecordSettlement(provider string, outcome SettleOutcome)
}

type noopRecorder struct{}

func (noopRecorder) RecordSettlement(string, SettleOutcome) {}

// SettlementService resolves payment-provider outcomes into order state
// transitions. Every entry point is safe to call any number of times with
// the same input: duplicated, reordered and retried notifications are the
// expected case, not the exception.
type SettlementService struct {
	orders   OrderStore
	cards    CardStore
	carts    CartStore
	pub      Publisher
	recorder OutcomeRecorder
	onStock  func(ctx context.Context, cardIDs []string) // cache invalidation hook
}

func NewSettlementService(orders OrderStore, cards CardStore, carts CartStore, pub Publisher) *SettlementService {
	return &SettlementService{
		orders:   orders,
		cards:    cards,
		carts:    carts,
		pub:      pub,
		recorder: noopRecorder{},
	}
}

// WithRecorder wires the settlement-outcome metric.
func (s *SettlementService) WithRecorder(r OutcomeRecorder) *SettlementService {
	s.recorder = r
	return s
}

// WithStockHook registers a callback invoked after stock moved for the given
// cards, used to drop stale catalog cache entries.
func (s *SettlementService) WithStockHook(fn func(ctx context.Context, cardIDs []string)) *SettlementService {
	s.onStock = fn
	return s
}

// SettleApproved handles a verified "payment succeeded" outcome.
//
// The order of operations is what makes the guarantees hold:
//  1. Status short-circuit: anything but PENDING means a previous attempt
//     already settled this order, so this one must do nothing.
//  2. Guarded reservation per line. A failed line releases every reservation
//     this attempt made, then cancels the order — partial fulfillment is
//     never observable.
//  3. Conditional PENDING→PAID claim. If a duplicate attempt won the claim
//     between steps 1 and 3, this attempt releases its reservations and
//     backs off; stock ends up decremented exactly once.
//  4. Only the claim winner clears the cart and publishes the event.
func (s *SettlementService) SettleApproved(ctx context.Context, orderID string, ref entity.PaymentRef) (SettleOutcome, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}

	if order.Status.Terminal() {
		logger.Info().Str("order_id", orderID).Str("status", string(order.Status)).Msg("Duplicate settlement ignored")
		s.recorder.RecordSettlement(ref.Provider, OutcomeAlreadySettled)
		return OutcomeAlreadySettled, nil
	}

	// Reserve stock for every line; roll back this attempt's reservations on
	// the first failure.
	reserved := make([]entity.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		ok, err := s.cards.ReserveStock(ctx, item.CardID, item.Qty)
		if err != nil {
			s.releaseAll(ctx, reserved)
			return "", err
		}
		if !ok {
			// Stock disappeared between order creation and payment approval.
			// Business policy: cancel the whole order rather than partially
			// fulfill; money committed on the provider side is handed to a
			// refund flow starting from CANCELLED.
			s.releaseAll(ctx, reserved)
			return s.cancelForStockConflict(ctx, order, item, ref)
		}
		reserved = append(reserved, item)
	}

	claimed, err := s.orders.ClaimPaid(ctx, orderID, ref)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return "", err
	}
	if !claimed {
		// A concurrent duplicate settled this order first. Its reservation is
		// the one that counts; hand ours back.
		s.releaseAll(ctx, reserved)
		logger.Info().Str("order_id", orderID).Msg("Lost settlement claim to concurrent attempt")
		s.recorder.RecordSettlement(ref.Provider, OutcomeAlreadySettled)
		return OutcomeAlreadySettled, nil
	}

	s.stockMoved(ctx, order.Items)

	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error clearing cart after payment")
	}

	order.Status = entity.OrderStatusPaid
	logger.Info().Str("order_id", orderID).Str("provider", ref.Provider).Msg("Order settled as paid")
	s.recorder.RecordSettlement(ref.Provider, OutcomePaid)
	s.pub.PublishOrderEvent(ctx, "paid", order)

	return OutcomePaid, nil
}

// SettleRejected handles a verified failed/rejected/refunded outcome. Stock
// was never reserved for a PENDING order, so this is a pure status change.
func (s *SettlementService) SettleRejected(ctx context.Context, orderID string, ref entity.PaymentRef) (SettleOutcome, error) {
	cancelled, err := s.orders.CancelPending(ctx, orderID)
	if err != nil {
		return "", err
	}

	// Keep the provider ids either way; a refund flow needs them.
	if err := s.orders.SavePaymentRef(ctx, orderID, ref); err != nil {
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error saving payment ref")
	}

	if !cancelled {
		s.recorder.RecordSettlement(ref.Provider, OutcomeAlreadySettled)
		return OutcomeAlreadySettled, nil
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err == nil {
		s.pub.PublishOrderEvent(ctx, "cancelled", order)
	}
	logger.Info().Str("order_id", orderID).Str("provider", ref.Provider).Msg("Order cancelled by payment rejection")
	s.recorder.RecordSettlement(ref.Provider, OutcomeCancelled)
	return OutcomeCancelled, nil
}

func (s *SettlementService) cancelForStockConflict(ctx context.Context, order *entity.Order, item entity.OrderItem, ref entity.PaymentRef) (SettleOutcome, error) {
	cancelled, err := s.orders.CancelPending(ctx, order.ID)
	if err != nil {
		return "", err
	}
	if err := s.orders.SavePaymentRef(ctx, order.ID, ref); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("Error saving payment ref")
	}
	if cancelled {
		order.Status = entity.OrderStatusCancelled
		s.pub.PublishOrderEvent(ctx, "cancelled", order)
	}
	logger.Warn().Str("order_id", order.ID).Str("card_id", item.CardID).Msg("Stock gone at settlement, order cancelled")
	s.recorder.RecordSettlement(ref.Provider, OutcomeStockConflict)
	return OutcomeStockConflict, nil
}

func (s *SettlementService) releaseAll(ctx context.Context, items []entity.OrderItem) {
	for _, item := range items {
		if err := s.cards.ReleaseStock(ctx, item.CardID, item.Qty); err != nil {
			logger.Error().Err(err).Str("card_id", item.CardID).Int("qty", item.Qty).Msg("Error releasing reserved stock")
		}
	}
	s.stockMoved(ctx, items)
}

func (s *SettlementService) stockMoved(ctx context.Context, items []entity.OrderItem) {
	if s.onStock == nil || len(items) == 0 {
		return
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.CardID
	}
	s.onStock(ctx, ids)
}
