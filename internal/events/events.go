// Package events announces purchase outcomes to downstream consumers.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

const (
	TypePurchaseCompleted = "purchase.completed"
	TypePurchaseFailed    = "purchase.failed"
	TypePurchaseRefunded  = "purchase.refunded"

	eventVersion = 1
)

type PurchaseEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	EventType     string    `json:"event_type"`
	EventVersion  int       `json:"event_version"`
	OccurredAt    time.Time `json:"occurred_at"`
	TransactionID uuid.UUID `json:"transaction_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	ItemID        string    `json:"item_id"`
	Quantity      int32     `json:"quantity"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	ProcessorID   string    `json:"processor_id,omitempty"`
	DeclineCode   string    `json:"decline_code,omitempty"`
}

// NewPurchaseEvent describes the terminal state of tx. The event type follows
// the status; a Pending record yields an empty type and should not be sent.
func NewPurchaseEvent(tx transactions.Transaction, declineCode string) PurchaseEvent {
	ev := PurchaseEvent{
		EventID:       uuid.New(),
		EventVersion:  eventVersion,
		OccurredAt:    tx.UpdatedAt,
		TransactionID: tx.TransactionID,
		PlayerID:      tx.PlayerID,
		ItemID:        tx.ItemID,
		Quantity:      tx.Quantity,
		AmountCents:   tx.TotalCents(),
		Currency:      tx.Currency,
		Status:        tx.Status.String(),
		DeclineCode:   declineCode,
	}

	if tx.ProcessorID != nil {
		ev.ProcessorID = *tx.ProcessorID
	}

	switch tx.Status {
	case transactions.StatusCompleted:
		ev.EventType = TypePurchaseCompleted
	case transactions.StatusFailed:
		ev.EventType = TypePurchaseFailed
	case transactions.StatusRefunded:
		ev.EventType = TypePurchaseRefunded
	}

	return ev
}

type Publisher interface {
	PublishPurchase(ctx context.Context, ev PurchaseEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishPurchase(context.Context, PurchaseEvent) error { return nil }

func (Noop) Close() error { return nil }
