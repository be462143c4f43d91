package purchase

import (
	"context"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
)

// Page is one slice of a player's history, newest first.
type Page struct {
	Transactions []transactions.Transaction `json:"transactions"`
	Count        int                        `json:"count"`
	NextCursor   *uuid.UUID                 `json:"next_cursor"`
}

// ListTransactions returns up to limit records older than cursor. NextCursor
// is set to the last returned id only when more records exist beyond it.
func (s *Service) ListTransactions(ctx context.Context, playerID uuid.UUID, limit int, cursor *uuid.UUID) (Page, error) {
	limit = transactions.ClampLimit(limit)

	fetch := limit + 1
	if fetch > transactions.MaxListLimit {
		fetch = limit
	}

	records, err := s.store.ListForPlayer(ctx, playerID, fetch, cursor)
	if err != nil {
		return Page{}, apperr.Annotate(err, apperr.ErrStore, apperr.StageQuery, "")
	}

	more := len(records) > limit
	if more {
		records = records[:limit]
	}

	if !more && len(records) == limit && fetch == limit {
		// At the store's page ceiling: probe one record past the last.
		last := records[len(records)-1].TransactionID

		probe, err := s.store.ListForPlayer(ctx, playerID, 1, &last)
		if err != nil {
			return Page{}, apperr.Annotate(err, apperr.ErrStore, apperr.StageQuery, "")
		}

		more = len(probe) > 0
	}

	if records == nil {
		records = []transactions.Transaction{}
	}

	page := Page{
		Transactions: records,
		Count:        len(records),
	}

	if more {
		next := records[len(records)-1].TransactionID
		page.NextCursor = &next
	}

	return page, nil
}

// GetTransaction returns one record of the player. A record owned by another
// player is reported as not found.
func (s *Service) GetTransaction(ctx context.Context, playerID, transactionID uuid.UUID) (transactions.Transaction, error) {
	tx, ok, err := s.store.Get(ctx, transactionID)
	if err != nil {
		return transactions.Transaction{}, apperr.Annotate(err, apperr.ErrStore, apperr.StageQuery, transactionID.String())
	}

	if !ok || tx.PlayerID != playerID {
		return transactions.Transaction{}, apperr.New(apperr.ErrNotFound, "transaction %s not found", transactionID).
			WithStage(apperr.StageQuery, transactionID.String())
	}

	return tx, nil
}
