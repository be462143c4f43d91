package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/mmog-microtx/internal/infra/pgutils"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

func (r *transactionsRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status transactions.Status,
	processorID *string,
) (transactions.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return pgutils.QueryTx(ctx, r.db, func(ctx context.Context, tx *sql.Tx) (transactions.Transaction, error) {
		current, err := lockStatus(ctx, tx, id)
		if err != nil {
			return transactions.Transaction{}, err
		}

		err = transactions.CheckTransition(current, status)
		if err != nil {
			return transactions.Transaction{}, fmt.Errorf("update status %s: %w", id, err)
		}

		var ref sql.NullString
		if processorID != nil {
			ref = sql.NullString{String: *processorID, Valid: true}
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE microtransactions
			SET status = $1,
			    processor_id = $2,
			    updated_at = GREATEST($3::timestamptz, created_at)
			WHERE transaction_id = $4
			RETURNING`+selectColumns,
			status.String(), ref, r.now(), id,
		)

		updated, err := scanTransaction(row)
		if err != nil {
			return transactions.Transaction{}, fmt.Errorf("update status %s: %w", id, err)
		}

		return updated, nil
	})
}

func lockStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID) (transactions.Status, error) {
	var raw string

	err := tx.QueryRowContext(ctx, `
		SELECT status
		FROM microtransactions
		WHERE transaction_id = $1
		FOR UPDATE
	`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("update status %s: %w", id, transactions.ErrTransactionNotFound)
		}

		return "", fmt.Errorf("lock transaction %s: %w", id, err)
	}

	return transactions.ParseStatus(raw)
}
