package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const SimulatedName = "mock"

// simulatedNamespace seeds the deterministic processor references.
var simulatedNamespace = uuid.MustParse("6a0f3a52-31b4-4f39-8d0f-4b1d7c2e9a10")

type SimulatedConfig struct {
	// FailureRate in [0,1]; a player declines when the first byte of their
	// id divided by 256 is below it.
	FailureRate float64
	Delay       time.Duration
	// DeclineAboveCents declines charges of at least this amount. Zero
	// disables the rule.
	DeclineAboveCents int64
}

// SimulatedStrategy never touches the network. Its outcome is a pure function
// of the configuration and the request.
type SimulatedStrategy struct {
	cfg SimulatedConfig
}

var _ Strategy = (*SimulatedStrategy)(nil)

func NewSimulated(cfg SimulatedConfig) *SimulatedStrategy {
	cfg.FailureRate = min(max(cfg.FailureRate, 0), 1)

	return &SimulatedStrategy{cfg: cfg}
}

func (s *SimulatedStrategy) Name() string { return SimulatedName }

func (s *SimulatedStrategy) Process(ctx context.Context, req Request) (Result, error) {
	if req.AmountCents <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidAmount, req.AmountCents)
	}

	err := s.wait(ctx)
	if err != nil {
		return Result{}, err
	}

	ref := simulatedRef("sim_pi_", req.IdempotencyKey)

	if float64(req.PlayerID[0])/256 < s.cfg.FailureRate {
		return Declined(ref, "mock_decline", "Mock payment declined for testing"), nil
	}

	if s.cfg.DeclineAboveCents > 0 && req.AmountCents >= s.cfg.DeclineAboveCents {
		return Declined(ref, "card_declined", "Your card was declined. Please try a different payment method."), nil
	}

	return Approved(ref), nil
}

// Refund always approves.
func (s *SimulatedStrategy) Refund(ctx context.Context, processorID string, amountCents int64) (Result, error) {
	if amountCents <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amountCents)
	}

	err := s.wait(ctx)
	if err != nil {
		return Result{}, err
	}

	return Approved(simulatedRef("sim_re_", "refund_"+processorID)), nil
}

func (s *SimulatedStrategy) wait(ctx context.Context) error {
	if s.cfg.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func simulatedRef(prefix, key string) string {
	id := uuid.NewSHA1(simulatedNamespace, []byte(key))
	return prefix + strings.ReplaceAll(id.String(), "-", "")[:24]
}
