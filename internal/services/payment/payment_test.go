package payment_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/services/payment"
	"github.com/fastprodman/mmog-microtx/internal/services/payment/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStrategy(t *testing.T) *mocks.Strategy {
	t.Helper()

	s := mocks.NewStrategy(t)
	s.On("Name").Return("mock").Maybe()

	return s
}

func TestIdempotencyKey(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()

	require.Equal(t, "purchase_"+a.String(), payment.IdempotencyKey(a))
	require.Equal(t, payment.IdempotencyKey(a), payment.IdempotencyKey(a))
	require.NotEqual(t, payment.IdempotencyKey(a), payment.IdempotencyKey(b))
}

func TestCoordinator_Charge(t *testing.T) {
	t.Parallel()

	txID := uuid.New()
	playerID := uuid.New()

	tests := []struct {
		name        string
		amount      int64
		result      payment.Result
		strategyErr error
		callsOut    bool
		wantKind    error
		wantResult  payment.Result
	}{
		{
			name:       "approved_passes_through",
			amount:     999,
			result:     payment.Approved("pi_1"),
			callsOut:   true,
			wantResult: payment.Approved("pi_1"),
		},
		{
			name:       "decline_passes_through",
			amount:     999,
			result:     payment.Declined("pi_2", "card_declined", "no"),
			callsOut:   true,
			wantResult: payment.Declined("pi_2", "card_declined", "no"),
		},
		{
			name:       "empty_reference_is_not_altered",
			amount:     999,
			result:     payment.Approved(""),
			callsOut:   true,
			wantResult: payment.Approved(""),
		},
		{name: "zero_amount", amount: 0, wantKind: apperr.ErrValidation},
		{name: "negative_amount", amount: -1, wantKind: apperr.ErrValidation},
		{
			name:        "gateway_unavailable",
			amount:      999,
			strategyErr: fmt.Errorf("%w: dial tcp", payment.ErrGatewayUnavailable),
			callsOut:    true,
			wantKind:    apperr.ErrPaymentUnavailable,
		},
		{
			name:        "deadline_is_unavailable",
			amount:      999,
			strategyErr: context.DeadlineExceeded,
			callsOut:    true,
			wantKind:    apperr.ErrPaymentUnavailable,
		},
		{
			name:        "gateway_rejected",
			amount:      999,
			strategyErr: payment.ErrGatewayRejected,
			callsOut:    true,
			wantKind:    apperr.ErrPayment,
		},
		{
			name:        "malformed_response",
			amount:      999,
			strategyErr: payment.ErrMalformedResponse,
			callsOut:    true,
			wantKind:    apperr.ErrPayment,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strategy := newStrategy(t)
			ctx := context.Background()

			if tt.callsOut {
				strategy.On("Process", ctx, mock.MatchedBy(func(req payment.Request) bool {
					return req.TransactionID == txID &&
						req.PlayerID == playerID &&
						req.AmountCents == tt.amount &&
						req.Currency == "USD" &&
						req.IdempotencyKey == payment.IdempotencyKey(txID)
				})).Return(tt.result, tt.strategyErr).Once()
			}

			c := payment.NewCoordinator(strategy, nil)

			res, err := c.Charge(ctx, txID, playerID, tt.amount, "USD")
			if tt.wantKind != nil {
				require.ErrorIs(t, err, tt.wantKind)

				if tt.strategyErr != nil {
					require.True(t, errors.Is(err, tt.strategyErr))
				}

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantResult, res)
		})
	}
}

func TestCoordinator_Refund(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	strategy := newStrategy(t)
	strategy.On("Refund", ctx, "pi_1", int64(500)).Return(payment.Approved("re_1"), nil).Once()
	strategy.On("Refund", ctx, "pi_2", int64(500)).Return(payment.Result{}, payment.ErrGatewayUnavailable).Once()

	c := payment.NewCoordinator(strategy, nil)
	require.Equal(t, "mock", c.StrategyName())

	res, err := c.Refund(ctx, "pi_1", 500)
	require.NoError(t, err)
	require.Equal(t, "re_1", res.ProcessorID)

	_, err = c.Refund(ctx, "pi_2", 500)
	require.ErrorIs(t, err, apperr.ErrPaymentUnavailable)

	_, err = c.Refund(ctx, "pi_3", 0)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = c.Refund(ctx, "", 10)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResultConstructors(t *testing.T) {
	t.Parallel()

	ok := payment.Approved("pi_1")
	require.True(t, ok.Succeeded())
	require.Nil(t, ok.Decline)

	declined := payment.Declined("", "card_declined", "msg")
	require.False(t, declined.Succeeded())
	require.Equal(t, "card_declined", declined.Decline.Code)
}
