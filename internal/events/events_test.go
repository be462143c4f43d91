package events

import (
	"context"
	"testing"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewPurchaseEvent(t *testing.T) {
	t.Parallel()

	ref := "pi_1"
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := transactions.Transaction{
		TransactionID: uuid.New(),
		PlayerID:      uuid.New(),
		ItemID:        "gem_pack",
		PriceCents:    250,
		Currency:      "USD",
		Quantity:      4,
		ProcessorID:   &ref,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tests := []struct {
		status   transactions.Status
		wantType string
	}{
		{transactions.StatusCompleted, TypePurchaseCompleted},
		{transactions.StatusFailed, TypePurchaseFailed},
		{transactions.StatusRefunded, TypePurchaseRefunded},
		{transactions.StatusPending, ""},
	}

	for _, tt := range tests {
		tx := base
		tx.Status = tt.status

		ev := NewPurchaseEvent(tx, "")
		require.Equal(t, tt.wantType, ev.EventType)
		require.Equal(t, int64(1000), ev.AmountCents)
		require.Equal(t, "pi_1", ev.ProcessorID)
		require.Equal(t, tx.TransactionID, ev.TransactionID)
		require.NotEqual(t, uuid.Nil, ev.EventID)
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var p Publisher = Noop{}
	require.NoError(t, p.PublishPurchase(context.Background(), PurchaseEvent{}))
	require.NoError(t, p.Close())
}
