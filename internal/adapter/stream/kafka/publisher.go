package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"vault-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	segkafka "github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...segkafka.Message) error
	Close() error
}

// Publisher implements ports.EventPublisher on a Kafka topic. Messages are
// keyed by account so per-account ordering is preserved across partitions.
type Publisher struct {
	writer messageWriter
	log    zerolog.Logger
}

// notificationMessage is the wire format of a published ledger event.
type notificationMessage struct {
	Type       string `json:"type"`
	Account    string `json:"account"`
	Amount     uint64 `json:"amount"`
	NewBalance uint64 `json:"new_balance"`
	Timestamp  int64  `json:"timestamp"`
}

// NewPublisher creates a Kafka-backed event publisher.
func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{
		writer: &segkafka.Writer{
			Addr:     segkafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &segkafka.LeastBytes{},
		},
		log: log,
	}
}

// Publish writes a ledger event to the notification topic.
func (p *Publisher) Publish(ctx context.Context, ev *domain.Event) error {
	msg := notificationMessage{
		Type:       string(ev.Type),
		Account:    ev.Account.String(),
		Amount:     ev.Amount,
		NewBalance: ev.NewBalance,
		Timestamp:  ev.Timestamp.Unix(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, segkafka.Message{
		Key:   []byte(msg.Account),
		Value: data,
	}); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
