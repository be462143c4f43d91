package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

func (r *transactionsRepo) Get(ctx context.Context, id uuid.UUID) (transactions.Transaction, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT`+selectColumns+`
		FROM microtransactions
		WHERE transaction_id = $1
	`, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transactions.Transaction{}, false, nil
		}

		return transactions.Transaction{}, false, fmt.Errorf("get transaction: %w", err)
	}

	return tx, true, nil
}
