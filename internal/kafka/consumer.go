package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler consumes one decoded notification event. A returned error
// stops the consume loop.
type Handler func(context.Context, NotificationEvent) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads and decodes notification events until the context is
// canceled or the handler fails. Messages that do not decode as a
// NotificationEvent are skipped so one malformed payload cannot wedge
// the consumer group.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeNotification(msg.Value)
		if err != nil {
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeNotification(value []byte) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("failed to decode notification event: %w", err)
	}
	if event.Kind == "" {
		return NotificationEvent{}, fmt.Errorf("notification event missing kind")
	}
	return event, nil
}
