package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/config"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions/memory"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions/storetest"
	"github.com/fastprodman/mmog-microtx/internal/services/payment"
	"github.com/fastprodman/mmog-microtx/internal/services/purchase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     transactions.Store
	connect   connectFunc
	pending   transactions.Transaction
	completed transactions.Transaction
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	hourAgo := func() time.Time { return transactions.Now().Add(-time.Hour) }
	store := memory.New(memory.WithClock(hourAgo))

	player := uuid.New()

	pending, err := store.Create(ctx, storetest.NewSample(player))
	require.NoError(t, err)

	created, err := store.Create(ctx, storetest.NewSample(player))
	require.NoError(t, err)

	ref := "sim_pi_0123456789abcdef01234567"
	completed, err := store.UpdateStatus(ctx, created.TransactionID, transactions.StatusCompleted, &ref)
	require.NoError(t, err)

	svc := purchase.New(
		store,
		payment.NewCoordinator(payment.NewSimulated(payment.SimulatedConfig{}), nil),
		nil,
		config.LimitsConfig{MaxTransactionCents: config.DefaultMaxTransactionCents, MaxQuantity: 100},
		nil,
	)

	return fixture{
		store:     store,
		connect:   func(context.Context) (operator, error) { return svc, nil },
		pending:   pending,
		completed: completed,
	}
}

func execute(t *testing.T, connect connectFunc, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(connect)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestPendingCmd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	out, err := execute(t, f.connect, "pending", "--older-than", "30m")
	require.NoError(t, err)
	require.Contains(t, out, "TRANSACTION")
	require.Contains(t, out, f.pending.TransactionID.String())
	require.NotContains(t, out, f.completed.TransactionID.String())

	out, err = execute(t, f.connect, "pending", "--older-than", "2h")
	require.NoError(t, err)
	require.Contains(t, out, "no pending transactions")

	out, err = execute(t, f.connect, "pending", "--json")
	require.NoError(t, err)

	var records []transactions.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	require.Equal(t, f.pending.TransactionID, records[0].TransactionID)
}

func TestShowCmd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	out, err := execute(t, f.connect, "show", f.completed.TransactionID.String())
	require.NoError(t, err)

	var tx transactions.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &tx))
	require.Equal(t, transactions.StatusCompleted, tx.Status)

	_, err = execute(t, f.connect, "show", uuid.NewString())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = execute(t, f.connect, "show", "not-a-uuid")
	require.ErrorContains(t, err, "invalid transaction id")
}

func TestRefundCmd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	out, err := execute(t, f.connect, "refund", f.completed.TransactionID.String())
	require.NoError(t, err)

	var tx transactions.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &tx))
	require.Equal(t, transactions.StatusRefunded, tx.Status)
	require.True(t, strings.HasPrefix(*tx.ProcessorID, "sim_re_"))

	_, err = execute(t, f.connect, "refund", f.pending.TransactionID.String())
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestConnectFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no database")
	connect := func(context.Context) (operator, error) { return nil, boom }

	_, err := execute(t, connect, "pending")
	require.ErrorIs(t, err, boom)

	_, err = execute(t, connect, "refund")
	require.Error(t, err)
}
