package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes purchase events to one topic, keyed by player id so a
// player's events stay ordered within a partition.
type Publisher struct {
	log    *zap.Logger
	writer messageWriter
	topic  string
}

var _ events.Publisher = (*Publisher)(nil)

func New(log *zap.Logger, brokers []string, topic string, writeTimeout time.Duration) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newWithWriter(log, writer, topic)
}

func newWithWriter(log *zap.Logger, w messageWriter, topic string) *Publisher {
	return &Publisher{log: log, writer: w, topic: topic}
}

func (p *Publisher) PublishPurchase(ctx context.Context, ev events.PurchaseEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal purchase event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.PlayerID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	}

	err = p.writer.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	p.log.Debug("purchase event published",
		zap.String("topic", p.topic),
		zap.String("event_type", ev.EventType),
		zap.String("transaction_id", ev.TransactionID.String()),
	)

	return nil
}

func (p *Publisher) Close() error {
	err := p.writer.Close()
	if err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
