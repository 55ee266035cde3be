package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"cardstore/internal/entity"
)

// KafkaPublisher writes order lifecycle events to the order topic. Publish
// failures are logged and swallowed: the order is already committed to the
// database and an event gap must not fail the customer's request.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event string, order *entity.Order) {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("Error marshalling order event")
		return
	}

	// order.paid.<id>, order.cancelled.<id>, ...
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%s", event, order.ID)),
		Value: orderJSON,
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Str("event", event).Msg("Error publishing order event")
	}
}
