package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cardstore/internal/entity"
	"cardstore/internal/payment"
)

// OutcomePending is returned when the provider has no definitive result yet;
// nothing was transitioned.
const OutcomePending SettleOutcome = "pending"

// PayPalGateway and MercadoPagoGateway are the narrow provider contracts the
// orchestration needs; the payment package implements them.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, order *entity.Order) (string, error)
	Capture(ctx context.Context, paypalOrderID string) (*payment.CaptureResult, error)
}

type MercadoPagoGateway interface {
	CreatePreference(ctx context.Context, order *entity.Order, locale string) (*payment.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*payment.PaymentInfo, error)
	GetMerchantOrder(ctx context.Context, merchantOrderID string) (*payment.PaymentInfo, error)
}

// PaymentService drives both provider adapters and feeds their outcomes into
// the settlement handler.
type PaymentService struct {
	orders     OrderStore
	paypal     PayPalGateway
	mp         MercadoPagoGateway
	settlement *SettlementService
	cache      Cache
}

func NewPaymentService(orders OrderStore, paypal PayPalGateway, mp MercadoPagoGateway, settlement *SettlementService, cache Cache) *PaymentService {
	return &PaymentService{orders: orders, paypal: paypal, mp: mp, settlement: settlement, cache: cache}
}

func (s *PaymentService) loadPending(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusPending {
		return nil, fmt.Errorf("order %s is %s, payment can only start on a pending order", orderID, order.Status)
	}
	return order, nil
}

// CreatePayPalOrder opens a PayPal session for a pending order. Calling it
// again for the same order simply opens a fresh session, which is how a
// customer retries an abandoned payment.
func (s *PaymentService) CreatePayPalOrder(ctx context.Context, orderID string) (string, error) {
	order, err := s.loadPending(ctx, orderID)
	if err != nil {
		return "", err
	}

	paypalOrderID, err := s.paypal.CreateOrder(ctx, order)
	if err != nil {
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error creating PayPal order")
		return "", err
	}

	if err := s.orders.SetProviderSession(ctx, orderID, entity.ProviderPayPal, paypalOrderID); err != nil {
		return "", err
	}
	return paypalOrderID, nil
}

// CapturePayPal runs the synchronous capture flow after client-side approval.
func (s *PaymentService) CapturePayPal(ctx context.Context, orderID, paypalOrderID string) (SettleOutcome, error) {
	result, err := s.paypal.Capture(ctx, paypalOrderID)
	if err != nil {
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error capturing PayPal order")
		return "", err
	}

	ref := entity.PaymentRef{
		Provider:   entity.ProviderPayPal,
		CaptureID:  result.CaptureID,
		PayerEmail: result.PayerEmail,
	}

	switch result.Outcome {
	case payment.OutcomeApproved:
		return s.settlement.SettleApproved(ctx, orderID, ref)
	case payment.OutcomeRejected:
		return s.settlement.SettleRejected(ctx, orderID, ref)
	default:
		return OutcomePending, nil
	}
}

// CreateMercadoPagoPreference opens a MercadoPago checkout session for a
// pending order.
func (s *PaymentService) CreateMercadoPagoPreference(ctx context.Context, orderID, locale string) (*payment.Preference, error) {
	order, err := s.loadPending(ctx, orderID)
	if err != nil {
		return nil, err
	}

	pref, err := s.mp.CreatePreference(ctx, order, locale)
	if err != nil {
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error creating MercadoPago preference")
		return nil, err
	}

	if err := s.orders.SetProviderSession(ctx, orderID, entity.ProviderMercadoPago, pref.ID); err != nil {
		return nil, err
	}
	return pref, nil
}

// HandleMercadoPagoWebhook processes an inbound notification. The payload is
// only trusted for its type and object id; the authoritative status is
// re-fetched from the provider before anything transitions. Duplicate events
// are shed through a Redis claim, but the claim is only kept once a terminal
// outcome was settled: MercadoPago reuses the same object id when a payment
// moves from pending to approved, so a pending fetch must leave the id open
// for the later notification. Settlement stays idempotent even when the
// claim misses.
func (s *PaymentService) HandleMercadoPagoWebhook(ctx context.Context, eventType, dataID string) error {
	if dataID == "" {
		return nil
	}
	if eventType != "payment" && eventType != "merchant_order" {
		return nil
	}

	dedupeKey := fmt.Sprintf("webhook:%s:%s", eventType, dataID)
	claimed, err := s.cache.SetNX(ctx, dedupeKey, "1", 24*time.Hour)
	if err != nil {
		logger.Error().Err(err).Str("key", dedupeKey).Msg("Error claiming webhook event")
		claimed = true // fail open, settlement absorbs duplicates
	}
	if !claimed {
		logger.Info().Str("key", dedupeKey).Msg("Duplicate webhook event skipped")
		return nil
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if delErr := s.cache.Delete(ctx, dedupeKey); delErr != nil {
			logger.Error().Err(delErr).Str("key", dedupeKey).Msg("Error releasing webhook claim")
		}
	}()

	var info *payment.PaymentInfo
	switch eventType {
	case "payment":
		info, err = s.mp.GetPayment(ctx, dataID)
	case "merchant_order":
		info, err = s.mp.GetMerchantOrder(ctx, dataID)
	}
	if err != nil {
		return err
	}

	if info.OrderID == "" {
		return nil
	}

	ref := entity.PaymentRef{
		Provider:        entity.ProviderMercadoPago,
		PaymentID:       info.PaymentID,
		MerchantOrderID: info.MerchantOrderID,
	}

	switch info.Outcome {
	case payment.OutcomeApproved:
		_, err = s.settlement.SettleApproved(ctx, info.OrderID, ref)
	case payment.OutcomeRejected:
		_, err = s.settlement.SettleRejected(ctx, info.OrderID, ref)
	default:
		// Pending: no definitive outcome yet, claim released for the retry.
		return nil
	}
	if errors.Is(err, ErrOrderNotFound) {
		// Notification for an order we never created; retrying cannot help.
		logger.Warn().Str("order_id", info.OrderID).Msg("Webhook references unknown order")
		settled = true
		return nil
	}
	if err != nil {
		// Claim released so the provider's retry after our 500 is processed.
		return err
	}
	settled = true
	return nil
}
