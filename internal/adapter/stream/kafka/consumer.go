package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"vault-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	segkafka "github.com/segmentio/kafka-go"
)

// messageReader is the part of kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (segkafka.Message, error)
	Close() error
}

// CreditConsumer consumes inbound settlement credits. A credit that names a
// valid account goes through the regular deposit path; one that does not is
// recorded as held unattributed funds, recoverable only by an owner rescue.
type CreditConsumer struct {
	reader   messageReader
	vaultSvc ports.VaultService
	log      zerolog.Logger
}

// creditMessage is the wire format of an inbound settlement credit.
type creditMessage struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// NewCreditConsumer creates a Kafka-backed credit consumer.
func NewCreditConsumer(brokers []string, topic, groupID string, vaultSvc ports.VaultService, log zerolog.Logger) *CreditConsumer {
	return &CreditConsumer{
		reader: segkafka.NewReader(segkafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		vaultSvc: vaultSvc,
		log:      log,
	}
}

// Run consumes credits until the context is cancelled.
func (c *CreditConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		c.handleMessage(ctx, m.Value)
	}
}

// handleMessage applies a single credit. Malformed or zero-amount credits are
// dropped with a warning; nothing here can fail the consume loop.
func (c *CreditConsumer) handleMessage(ctx context.Context, value []byte) {
	var msg creditMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		c.log.Warn().Err(err).Msg("dropping malformed credit message")
		return
	}
	if msg.Amount == 0 {
		c.log.Warn().Str("account", msg.Account).Msg("dropping zero-amount credit")
		return
	}

	account, err := uuid.Parse(msg.Account)
	if err != nil {
		// No usable account identity: the funds are held but unattributed.
		if err := c.vaultSvc.CreditUnattributed(ctx, msg.Amount); err != nil {
			c.log.Error().Err(err).Uint64("amount", msg.Amount).Msg("failed to hold unattributed credit")
		}
		return
	}

	if _, err := c.vaultSvc.Deposit(ctx, ports.DepositRequest{Account: account, Amount: msg.Amount}); err != nil {
		// The deposit path rejected the credit (for instance the bank cap).
		// The funds still arrived, so hold them for rescue.
		c.log.Warn().Err(err).
			Str("account", msg.Account).
			Uint64("amount", msg.Amount).
			Msg("credit rejected by deposit path, holding for rescue")
		if err := c.vaultSvc.CreditUnattributed(ctx, msg.Amount); err != nil {
			c.log.Error().Err(err).Uint64("amount", msg.Amount).Msg("failed to hold rejected credit")
		}
	}
}

// Close closes the underlying reader.
func (c *CreditConsumer) Close() error {
	return c.reader.Close()
}
