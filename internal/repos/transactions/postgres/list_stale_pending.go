package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
)

func (r *transactionsRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]transactions.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+selectColumns+`
		FROM microtransactions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC, transaction_id ASC
		LIMIT $3
	`, transactions.StatusPending.String(), olderThan, transactions.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}

	return scanAll(rows)
}
