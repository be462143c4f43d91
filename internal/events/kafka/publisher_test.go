package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fastprodman/mmog-microtx/internal/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}

	f.msgs = append(f.msgs, msgs...)

	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_PublishPurchase(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newWithWriter(zap.NewNop(), w, "purchases")

	ev := events.PurchaseEvent{
		EventID:       uuid.New(),
		EventType:     events.TypePurchaseCompleted,
		TransactionID: uuid.New(),
		PlayerID:      uuid.New(),
		AmountCents:   999,
		Currency:      "USD",
		Status:        "completed",
		ProcessorID:   "pi_1",
	}

	require.NoError(t, p.PublishPurchase(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	require.Equal(t, ev.PlayerID.String(), string(msg.Key))
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, events.TypePurchaseCompleted, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, ev.TransactionID.String(), decoded["transaction_id"])
	require.Equal(t, "purchase.completed", decoded["event_type"])
	require.EqualValues(t, 999, decoded["amount_cents"])

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := newWithWriter(zap.NewNop(), &fakeWriter{err: boom}, "purchases")

	err := p.PublishPurchase(context.Background(), events.PurchaseEvent{PlayerID: uuid.New()})
	require.ErrorIs(t, err, boom)
}
