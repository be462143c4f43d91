package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

var _ transactions.Store = (*transactionsRepo)(nil)

// transactionsRepo keeps transactions in process memory. It backs local
// development and the pipeline tests; production runs on the postgres store.
type transactionsRepo struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]transactions.Transaction
	newID func() uuid.UUID
	now   func() time.Time
}

type Option func(*transactionsRepo)

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(r *transactionsRepo) { r.newID = fn }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(r *transactionsRepo) { r.now = fn }
}

func New(opts ...Option) *transactionsRepo {
	r := &transactionsRepo{
		byID:  make(map[uuid.UUID]transactions.Transaction),
		newID: uuid.New,
		now:   transactions.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *transactionsRepo) Create(ctx context.Context, nt transactions.NewTransaction) (transactions.Transaction, error) {
	err := ctx.Err()
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	now := r.now()
	tx := transactions.Transaction{
		TransactionID: r.newID(),
		PlayerID:      nt.PlayerID,
		ItemID:        nt.ItemID,
		ItemName:      nt.ItemName,
		PriceCents:    nt.PriceCents,
		Currency:      nt.Currency,
		Quantity:      nt.Quantity,
		Status:        transactions.StatusPending,
		Metadata:      cloneMetadata(nt.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[tx.TransactionID]; exists {
		return transactions.Transaction{}, transactions.ErrDuplicateTransaction
	}

	r.byID[tx.TransactionID] = tx

	return clone(tx), nil
}

func (r *transactionsRepo) Get(ctx context.Context, id uuid.UUID) (transactions.Transaction, bool, error) {
	err := ctx.Err()
	if err != nil {
		return transactions.Transaction{}, false, fmt.Errorf("get transaction: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byID[id]
	if !ok {
		return transactions.Transaction{}, false, nil
	}

	return clone(tx), true, nil
}

func (r *transactionsRepo) ListForPlayer(
	ctx context.Context,
	playerID uuid.UUID,
	limit int,
	cursor *uuid.UUID,
) ([]transactions.Transaction, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	limit = transactions.ClampLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var anchor *transactions.Transaction
	if cursor != nil {
		c, ok := r.byID[*cursor]
		if !ok {
			// unknown cursor: nothing is "older" than a row that does not exist
			return []transactions.Transaction{}, nil
		}

		anchor = &c
	}

	out := make([]transactions.Transaction, 0, limit)
	for _, tx := range r.byID {
		if tx.PlayerID != playerID {
			continue
		}

		if anchor != nil && !transactions.Before(tx, *anchor) {
			continue
		}

		out = append(out, tx)
	}

	slices.SortFunc(out, func(a, b transactions.Transaction) int {
		switch {
		case transactions.Before(b, a):
			return -1
		case transactions.Before(a, b):
			return 1
		default:
			return 0
		}
	})

	if len(out) > limit {
		out = out[:limit]
	}

	for i := range out {
		out[i] = clone(out[i])
	}

	return out, nil
}

func (r *transactionsRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status transactions.Status,
	processorID *string,
) (transactions.Transaction, error) {
	err := ctx.Err()
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("update status: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byID[id]
	if !ok {
		return transactions.Transaction{}, fmt.Errorf("update status %s: %w", id, transactions.ErrTransactionNotFound)
	}

	err = transactions.CheckTransition(tx.Status, status)
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("update status %s: %w", id, err)
	}

	tx.Status = status
	tx.ProcessorID = cloneString(processorID)

	tx.UpdatedAt = r.now()
	if tx.UpdatedAt.Before(tx.CreatedAt) {
		tx.UpdatedAt = tx.CreatedAt
	}

	r.byID[id] = tx

	return clone(tx), nil
}

func (r *transactionsRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]transactions.Transaction, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}

	limit = transactions.ClampLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]transactions.Transaction, 0)
	for _, tx := range r.byID {
		if tx.Status == transactions.StatusPending && tx.CreatedAt.Before(olderThan) {
			out = append(out, clone(tx))
		}
	}

	slices.SortFunc(out, func(a, b transactions.Transaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *transactionsRepo) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	err := ctx.Err()
	if err != nil {
		return 0, fmt.Errorf("ping: %w", err)
	}

	return time.Since(start), nil
}

func clone(tx transactions.Transaction) transactions.Transaction {
	tx.Metadata = bytes.Clone(tx.Metadata)
	tx.ProcessorID = cloneString(tx.ProcessorID)

	return tx
}

func cloneMetadata(m json.RawMessage) json.RawMessage {
	if len(m) == 0 {
		return json.RawMessage("null")
	}

	return bytes.Clone(m)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}
