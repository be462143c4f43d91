package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

const (
	DefaultListLimit = 100
	MinListLimit     = 1
	MaxListLimit     = 1000
)

// Transaction is the durable record of one purchase attempt.
type Transaction struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	PlayerID      uuid.UUID       `json:"player_id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	PriceCents    int64           `json:"price_cents"`
	Currency      string          `json:"currency"`
	Quantity      int32           `json:"quantity"`
	Status        Status          `json:"status"`
	Metadata      json.RawMessage `json:"metadata"`
	ProcessorID   *string         `json:"processor_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalCents is the charged amount: unit price times quantity.
// Callers validate the product against overflow before a record is created.
func (t Transaction) TotalCents() int64 {
	return t.PriceCents * int64(t.Quantity)
}

// NewTransaction is the caller-supplied part of a Transaction.
// The store assigns id, status and timestamps.
type NewTransaction struct {
	PlayerID   uuid.UUID
	ItemID     string
	ItemName   string
	PriceCents int64
	Currency   string
	Quantity   int32
	Metadata   json.RawMessage
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Store --dir=. --output=./mocks --outpkg=mocks

// Store is the persistence contract of the purchase pipeline.
// Every method is a single atomic unit against the backing engine.
type Store interface {
	// Create persists a Pending record with a server-generated id.
	// A duplicate id is reported as ErrDuplicateTransaction.
	Create(ctx context.Context, nt NewTransaction) (Transaction, error)

	// Get looks a record up. A missing record is ok=false, not an error.
	Get(ctx context.Context, id uuid.UUID) (Transaction, bool, error)

	// ListForPlayer returns up to limit records (clamped to [1,1000]) in
	// descending recency. With a cursor, only records strictly older than the
	// cursor record are returned.
	ListForPlayer(ctx context.Context, playerID uuid.UUID, limit int, cursor *uuid.UUID) ([]Transaction, error)

	// UpdateStatus moves a record along the state machine, storing the
	// processor reference and refreshing UpdatedAt.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, processorID *string) (Transaction, error)

	// ListStalePending returns Pending records created before olderThan,
	// oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Transaction, error)

	// Ping checks the backing engine and reports its round-trip latency.
	Ping(ctx context.Context) (time.Duration, error)
}

// ClampLimit bounds a requested page size to [MinListLimit, MaxListLimit].
func ClampLimit(limit int) int {
	return max(MinListLimit, min(limit, MaxListLimit))
}

// Before reports whether a sorts after b in listing order, i.e. a is older.
// Listing order is created_at DESC, transaction_id DESC.
func Before(a, b Transaction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}

	return compareIDs(a.TransactionID, b.TransactionID) < 0
}

func compareIDs(a, b uuid.UUID) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}

	return 0
}

// Now returns the current UTC time truncated to the precision Postgres keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
