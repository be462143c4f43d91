// Package purchase runs the microtransaction pipeline: validate, record,
// charge, settle and announce.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/config"
	"github.com/fastprodman/mmog-microtx/internal/events"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/fastprodman/mmog-microtx/internal/services/payment"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Charger is the slice of the payment coordinator the pipeline uses.
type Charger interface {
	Charge(ctx context.Context, transactionID, playerID uuid.UUID, amountCents int64, currency string) (payment.Result, error)
	Refund(ctx context.Context, processorID string, amountCents int64) (payment.Result, error)
	StrategyName() string
}

var _ Charger = (*payment.Coordinator)(nil)

// DeclineError is returned together with the receipt when the processor
// refused the charge. It matches apperr.ErrPayment.
type DeclineError struct {
	Receipt Receipt
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
}

func (e *DeclineError) Unwrap() error { return apperr.ErrPayment }

type Service struct {
	store     transactions.Store
	payments  Charger
	publisher events.Publisher
	limits    config.LimitsConfig
	validator *validator.Validate
	log       *zap.Logger
}

func New(
	store transactions.Store,
	payments Charger,
	publisher events.Publisher,
	limits config.LimitsConfig,
	log *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		store:     store,
		payments:  payments,
		publisher: publisher,
		limits:    limits,
		validator: newValidator(),
		log:       log,
	}
}

// Purchase runs one purchase end to end:
//
// 1) Validate the request and compute the total.
// 2) Persist a Pending record.
// 3) Charge the total through the payment coordinator.
// 4) Settle the record as Completed or Failed.
// 5) Publish the outcome.
//
// Once the record exists the caller's cancellation no longer applies, so a
// disconnecting client cannot strand a charged purchase half way. A charge
// that errors leaves the record Pending for reconciliation.
func (s *Service) Purchase(ctx context.Context, req Request) (Receipt, error) {
	// 1) Validate
	v, err := s.validate(req)
	if err != nil {
		return Receipt{}, apperr.Annotate(err, apperr.ErrValidation, apperr.StageValidate, "")
	}

	// 2) Record
	tx, err := s.store.Create(ctx, v.tx)
	if err != nil {
		kind := apperr.ErrStore
		if errors.Is(err, transactions.ErrDuplicateTransaction) {
			kind = apperr.ErrConflict
		}

		s.log.Error("create transaction", zap.Error(err))

		return Receipt{}, apperr.Annotate(err, kind, apperr.StageCreate, "")
	}

	txID := tx.TransactionID.String()
	log := s.log.With(
		zap.String("transaction_id", txID),
		zap.String("player_id", tx.PlayerID.String()),
	)

	ctx = context.WithoutCancel(ctx)

	// 3) Charge
	res, err := s.payments.Charge(ctx, tx.TransactionID, tx.PlayerID, v.totalCents, tx.Currency)
	if err != nil {
		log.Warn("charge failed, transaction left pending", zap.Error(err))
		return Receipt{}, apperr.Annotate(err, apperr.ErrPayment, apperr.StageCharge, txID)
	}

	if res.Succeeded() && res.ProcessorID == "" {
		log.Error("approved charge without processor reference")
		return Receipt{}, apperr.New(apperr.ErrInternal, "approved charge has no processor reference").
			WithStage(apperr.StageCharge, txID)
	}

	// 4) Settle
	next := transactions.StatusCompleted
	if !res.Succeeded() {
		next = transactions.StatusFailed
	}

	settled, err := s.store.UpdateStatus(ctx, tx.TransactionID, next, processorRef(res.ProcessorID))
	if err != nil {
		log.Error("settle transaction",
			zap.String("status", next.String()),
			zap.String("processor_id", res.ProcessorID),
			zap.Error(err),
		)

		return Receipt{}, updateError(err, txID)
	}

	// 5) Publish
	declineCode := ""
	if res.Decline != nil {
		declineCode = res.Decline.Code
	}

	s.publish(ctx, log, settled, declineCode)

	receipt := NewReceipt(settled)

	if res.Decline != nil {
		log.Info("purchase declined", zap.String("decline_code", res.Decline.Code))

		return receipt, &DeclineError{
			Receipt: receipt,
			Code:    res.Decline.Code,
			Message: res.Decline.Message,
		}
	}

	log.Info("purchase completed",
		zap.String("item_id", settled.ItemID),
		zap.Int64("amount_cents", settled.TotalCents()),
	)

	return receipt, nil
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, tx transactions.Transaction, declineCode string) {
	ev := events.NewPurchaseEvent(tx, declineCode)
	if ev.EventType == "" {
		return
	}

	err := s.publisher.PublishPurchase(ctx, ev)
	if err != nil {
		log.Warn("publish purchase event", zap.String("event_type", ev.EventType), zap.Error(err))
	}
}

// StrategyName reports the active payment backend.
func (s *Service) StrategyName() string { return s.payments.StrategyName() }

// Ping checks the store and reports its latency.
func (s *Service) Ping(ctx context.Context) (time.Duration, error) {
	latency, err := s.store.Ping(ctx)
	if err != nil {
		return latency, apperr.Wrap(apperr.ErrStore, err, "ping")
	}

	return latency, nil
}

func updateError(err error, txID string) error {
	var kind error
	switch {
	case errors.Is(err, transactions.ErrTransactionNotFound):
		kind = apperr.ErrInternal
	case errors.Is(err, transactions.ErrInvalidTransition):
		kind = apperr.ErrConflict
	default:
		kind = apperr.ErrStore
	}

	return apperr.Annotate(err, kind, apperr.StageUpdate, txID)
}

func processorRef(id string) *string {
	if id == "" {
		return nil
	}

	return &id
}
