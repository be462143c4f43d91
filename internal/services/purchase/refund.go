package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lookup returns a record regardless of owner. Used by operator tooling.
func (s *Service) Lookup(ctx context.Context, transactionID uuid.UUID) (transactions.Transaction, error) {
	tx, ok, err := s.store.Get(ctx, transactionID)
	if err != nil {
		return transactions.Transaction{}, apperr.Annotate(err, apperr.ErrStore, apperr.StageQuery, transactionID.String())
	}

	if !ok {
		return transactions.Transaction{}, apperr.New(apperr.ErrNotFound, "transaction %s not found", transactionID).
			WithStage(apperr.StageQuery, transactionID.String())
	}

	return tx, nil
}

// Refund returns the full amount of a Completed purchase and moves it to
// Refunded. A declined or failed refund leaves the record Completed.
func (s *Service) Refund(ctx context.Context, transactionID uuid.UUID) (transactions.Transaction, error) {
	txID := transactionID.String()

	tx, err := s.Lookup(ctx, transactionID)
	if err != nil {
		return transactions.Transaction{}, err
	}

	if !tx.Status.CanRefund() {
		return transactions.Transaction{}, apperr.New(apperr.ErrConflict, "cannot refund a %s transaction", tx.Status).
			WithStage(apperr.StageRefund, txID)
	}

	if tx.ProcessorID == nil {
		return transactions.Transaction{}, apperr.New(apperr.ErrInternal, "completed transaction has no processor reference").
			WithStage(apperr.StageRefund, txID)
	}

	log := s.log.With(zap.String("transaction_id", txID))

	res, err := s.payments.Refund(ctx, *tx.ProcessorID, tx.TotalCents())
	if err != nil {
		return transactions.Transaction{}, apperr.Annotate(err, apperr.ErrPayment, apperr.StageRefund, txID)
	}

	if !res.Succeeded() {
		log.Warn("refund declined", zap.String("decline_code", res.Decline.Code))

		return transactions.Transaction{}, apperr.New(apperr.ErrPayment, "refund declined (%s): %s",
			res.Decline.Code, res.Decline.Message).WithStage(apperr.StageRefund, txID)
	}

	refunded, err := s.store.UpdateStatus(ctx, transactionID, transactions.StatusRefunded, processorRef(res.ProcessorID))
	if err != nil {
		log.Error("record refund", zap.String("refund_id", res.ProcessorID), zap.Error(err))
		return transactions.Transaction{}, updateError(err, txID)
	}

	s.publish(ctx, log, refunded, "")

	log.Info("purchase refunded", zap.String("refund_id", res.ProcessorID))

	return refunded, nil
}

// StalePending lists Pending records created more than olderThan ago, oldest
// first, for reconciliation.
func (s *Service) StalePending(ctx context.Context, olderThan time.Duration, limit int) ([]transactions.Transaction, error) {
	if olderThan < 0 {
		return nil, apperr.New(apperr.ErrValidation, "older-than must not be negative")
	}

	if limit < 1 {
		return nil, apperr.New(apperr.ErrValidation, "limit must be positive")
	}

	records, err := s.store.ListStalePending(ctx, transactions.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, apperr.Annotate(err, apperr.ErrStore, apperr.StageQuery, "")
	}

	return records, nil
}

// IsDecline reports whether err is a declined purchase and returns it.
func IsDecline(err error) (*DeclineError, bool) {
	var de *DeclineError
	if errors.As(err, &de) {
		return de, true
	}

	return nil, false
}
