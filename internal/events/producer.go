package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Auth event types published to the auth_events topic.
const (
	Topic = "auth_events"

	TypeAccountRegistered = "account_registered"
	TypeLoginSucceeded    = "login_succeeded"
	TypeLoginFailed       = "login_failed"
	TypeAccountLocked     = "account_locked"
)

// Event is the payload shipped to Kafka and to the audit index. It never
// carries credentials, only identifiers.
type Event struct {
	Type      string `json:"type"`
	AccountID uint   `json:"account_id,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Producer publishes auth events. A nil Producer is a valid no-op, so the
// service runs without a broker.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(address string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(address),
		Topic:        Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, key string, event Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
