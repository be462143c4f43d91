package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ transactions.Store = (*transactionsRepo)(nil)

const defaultAcquireTimeout = 3 * time.Second

const selectColumns = `
	transaction_id, player_id, item_id, item_name, price_cents, currency,
	quantity, status, metadata, processor_id, created_at, updated_at`

type transactionsRepo struct {
	db             *sql.DB
	acquireTimeout time.Duration
	newID          func() uuid.UUID
	now            func() time.Time
}

type Option func(*transactionsRepo)

// WithAcquireTimeout bounds every store call, pool wait included.
func WithAcquireTimeout(d time.Duration) Option {
	return func(r *transactionsRepo) {
		if d > 0 {
			r.acquireTimeout = d
		}
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(r *transactionsRepo) { r.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(r *transactionsRepo) { r.now = fn }
}

func New(db *sql.DB, opts ...Option) *transactionsRepo {
	r := &transactionsRepo{
		db:             db,
		acquireTimeout: defaultAcquireTimeout,
		newID:          uuid.New,
		now:            transactions.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *transactionsRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.acquireTimeout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (transactions.Transaction, error) {
	var (
		tx          transactions.Transaction
		status      string
		metadata    []byte
		processorID sql.NullString
	)

	err := row.Scan(
		&tx.TransactionID,
		&tx.PlayerID,
		&tx.ItemID,
		&tx.ItemName,
		&tx.PriceCents,
		&tx.Currency,
		&tx.Quantity,
		&status,
		&metadata,
		&processorID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return transactions.Transaction{}, err
	}

	tx.Status, err = transactions.ParseStatus(status)
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("scan transaction %s: %w", tx.TransactionID, err)
	}

	tx.Metadata = metadata
	if processorID.Valid {
		tx.ProcessorID = &processorID.String
	}

	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()

	return tx, nil
}

func scanAll(rows *sql.Rows) ([]transactions.Transaction, error) {
	defer rows.Close()

	out := make([]transactions.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		out = append(out, tx)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
