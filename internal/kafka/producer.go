package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Notification kinds carried on the notifications topic.
const (
	KindAccountCreated = "account_created"
	KindPasswordReset  = "password_reset"
	KindRideCreated    = "ride_created"
	KindRideBooked     = "ride_booked"
)

// NotificationEvent asks the worker to deliver a notification.
// Delivery is fire-and-forget: producers never wait on the outcome.
type NotificationEvent struct {
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient"`
	Payload   map[string]string `json:"payload,omitempty"`
	At        time.Time         `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
