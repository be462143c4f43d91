package payment

import (
	"context"
	"errors"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Coordinator is the single entry point the purchase pipeline charges through.
type Coordinator struct {
	strategy Strategy
	log      *zap.Logger
}

func NewCoordinator(strategy Strategy, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}

	return &Coordinator{
		strategy: strategy,
		log:      log.With(zap.String("payment_strategy", strategy.Name())),
	}
}

// IdempotencyKey is derived from the transaction id alone, so a retried
// charge for the same transaction is recognisable by the processor.
func IdempotencyKey(transactionID uuid.UUID) string {
	return "purchase_" + transactionID.String()
}

func (c *Coordinator) StrategyName() string { return c.strategy.Name() }

// Charge asks the strategy to collect amountCents. Declines come back as a
// result; infrastructure failures as apperr payment errors. Nothing is retried.
func (c *Coordinator) Charge(
	ctx context.Context,
	transactionID, playerID uuid.UUID,
	amountCents int64,
	currency string,
) (Result, error) {
	if amountCents <= 0 {
		return Result{}, apperr.New(apperr.ErrValidation, "amount must be positive, got %d", amountCents)
	}

	req := Request{
		TransactionID:  transactionID,
		PlayerID:       playerID,
		AmountCents:    amountCents,
		Currency:       currency,
		IdempotencyKey: IdempotencyKey(transactionID),
	}

	start := time.Now()

	res, err := c.strategy.Process(ctx, req)
	if err != nil {
		c.log.Warn("charge failed",
			zap.String("transaction_id", transactionID.String()),
			zap.Int64("amount_cents", amountCents),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)

		return Result{}, classify(err, "charge")
	}

	c.log.Info("charge processed",
		zap.String("transaction_id", transactionID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.Bool("approved", res.Succeeded()),
		zap.String("processor_id", res.ProcessorID),
		zap.Duration("elapsed", time.Since(start)),
	)

	return res, nil
}

// Refund returns amountCents of an approved charge.
func (c *Coordinator) Refund(ctx context.Context, processorID string, amountCents int64) (Result, error) {
	if amountCents <= 0 {
		return Result{}, apperr.New(apperr.ErrValidation, "refund amount must be positive, got %d", amountCents)
	}

	if processorID == "" {
		return Result{}, apperr.New(apperr.ErrValidation, "refund requires a processor reference")
	}

	res, err := c.strategy.Refund(ctx, processorID, amountCents)
	if err != nil {
		c.log.Warn("refund failed", zap.String("processor_id", processorID), zap.Error(err))
		return Result{}, classify(err, "refund")
	}

	c.log.Info("refund processed",
		zap.String("processor_id", processorID),
		zap.String("refund_id", res.ProcessorID),
		zap.Bool("approved", res.Succeeded()),
	)

	return res, nil
}

func classify(err error, op string) error {
	switch {
	case errors.Is(err, ErrGatewayUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.ErrPaymentUnavailable, err, op)
	default:
		return apperr.Wrap(apperr.ErrPayment, err, op)
	}
}
