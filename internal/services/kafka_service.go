package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emporium_back_end/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated       = "created"
	EventOrderStatusChanged = "status_changed"
)

// OrderEvent is the JSON value written to the orders topic.
type OrderEvent struct {
	Event string       `json:"event"`
	At    time.Time    `json:"at"`
	Order models.Order `json:"order"`
}

// IEventPublisher announces order lifecycle events.
type IEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event string, order *models.Order) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaEventPublisher struct {
	writer messageWriter
}

// NewKafkaEventPublisher accepts a nil writer, which disables publishing.
func NewKafkaEventPublisher(w *kafka.Writer) *KafkaEventPublisher {
	if w == nil {
		return &KafkaEventPublisher{}
	}
	return &KafkaEventPublisher{writer: w}
}

func (p *KafkaEventPublisher) PublishOrderEvent(ctx context.Context, event string, order *models.Order) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(OrderEvent{Event: event, At: time.Now().UTC(), Order: *order})
	if err != nil {
		return err
	}

	// order.created.<id> or order.status_changed.<id>
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%s", event, order.ID.Hex())),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
