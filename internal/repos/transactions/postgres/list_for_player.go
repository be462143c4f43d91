package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

func (r *transactionsRepo) ListForPlayer(
	ctx context.Context,
	playerID uuid.UUID,
	limit int,
	cursor *uuid.UUID,
) ([]transactions.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	limit = transactions.ClampLimit(limit)

	if cursor == nil {
		rows, err := r.db.QueryContext(ctx, `
			SELECT`+selectColumns+`
			FROM microtransactions
			WHERE player_id = $1
			ORDER BY created_at DESC, transaction_id DESC
			LIMIT $2
		`, playerID, limit)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}

		return scanAll(rows)
	}

	// An unknown cursor makes the subquery NULL, so the row comparison
	// matches nothing and the page is empty.
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+selectColumns+`
		FROM microtransactions
		WHERE player_id = $1
		  AND (created_at, transaction_id) < (
			SELECT created_at, transaction_id
			FROM microtransactions
			WHERE transaction_id = $2
		  )
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $3
	`, playerID, *cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions after %s: %w", cursor, err)
	}

	return scanAll(rows)
}
