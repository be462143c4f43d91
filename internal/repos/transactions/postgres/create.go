package transactions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
)

func (r *transactionsRepo) Create(ctx context.Context, nt transactions.NewTransaction) (transactions.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	metadata := nt.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("null")
	}

	now := r.now()

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO microtransactions (
			transaction_id, player_id, item_id, item_name, price_cents, currency,
			quantity, status, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING`+selectColumns,
		r.newID(), nt.PlayerID, nt.ItemID, nt.ItemName, nt.PriceCents, nt.Currency,
		nt.Quantity, transactions.StatusPending.String(), string(metadata), now,
	)

	tx, err := scanTransaction(row)
	if err != nil {
		if isUniqueViolation(err) {
			return transactions.Transaction{}, transactions.ErrDuplicateTransaction
		}

		return transactions.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return tx, nil
}
