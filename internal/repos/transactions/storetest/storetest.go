// Package storetest holds the behavioural suite every transactions.Store
// implementation must pass.
package storetest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty store. clock and ids may be nil, in which
// case the implementation defaults apply.
type Factory func(t *testing.T, clock func() time.Time, ids func() uuid.UUID) transactions.Store

// Clock is a manually advanced time source safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC().Truncate(time.Microsecond)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func NewSample(playerID uuid.UUID) transactions.NewTransaction {
	return transactions.NewTransaction{
		PlayerID:   playerID,
		ItemID:     "sword_001",
		ItemName:   "Iron Sword",
		PriceCents: 999,
		Currency:   "USD",
		Quantity:   1,
		Metadata:   json.RawMessage(`{"rarity":"common","level":3}`),
	}
}

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("create_then_get_round_trip", func(t *testing.T) {
		store := newStore(t, nil, nil)
		ctx := context.Background()

		in := NewSample(uuid.New())

		created, err := store.Create(ctx, in)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.TransactionID)
		require.Equal(t, transactions.StatusPending, created.Status)
		require.Nil(t, created.ProcessorID)
		require.Equal(t, created.CreatedAt, created.UpdatedAt)
		require.Equal(t, time.UTC, created.CreatedAt.Location())

		got, ok, err := store.Get(ctx, created.TransactionID)
		require.NoError(t, err)
		require.True(t, ok)

		require.Equal(t, created.TransactionID, got.TransactionID)
		require.Equal(t, in.PlayerID, got.PlayerID)
		require.Equal(t, in.ItemID, got.ItemID)
		require.Equal(t, in.ItemName, got.ItemName)
		require.Equal(t, in.PriceCents, got.PriceCents)
		require.Equal(t, in.Currency, got.Currency)
		require.Equal(t, in.Quantity, got.Quantity)
		require.JSONEq(t, string(in.Metadata), string(got.Metadata))
		require.Equal(t, transactions.StatusPending, got.Status)
		require.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("create_without_metadata_stores_null", func(t *testing.T) {
		store := newStore(t, nil, nil)
		ctx := context.Background()

		in := NewSample(uuid.New())
		in.Metadata = nil

		created, err := store.Create(ctx, in)
		require.NoError(t, err)

		got, ok, err := store.Get(ctx, created.TransactionID)
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, "null", string(got.Metadata))
	})

	t.Run("get_missing_is_not_an_error", func(t *testing.T) {
		store := newStore(t, nil, nil)

		_, ok, err := store.Get(context.Background(), uuid.New())
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("duplicate_id_is_surfaced", func(t *testing.T) {
		fixed := uuid.New()
		store := newStore(t, nil, func() uuid.UUID { return fixed })
		ctx := context.Background()

		_, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		_, err = store.Create(ctx, NewSample(uuid.New()))
		require.ErrorIs(t, err, transactions.ErrDuplicateTransaction)
	})

	t.Run("update_status_sets_terminal_fields", func(t *testing.T) {
		clock := NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		store := newStore(t, clock.Now, nil)
		ctx := context.Background()

		created, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		clock.Advance(2 * time.Second)

		ref := "pi_123"
		updated, err := store.UpdateStatus(ctx, created.TransactionID, transactions.StatusCompleted, &ref)
		require.NoError(t, err)
		require.Equal(t, transactions.StatusCompleted, updated.Status)
		require.NotNil(t, updated.ProcessorID)
		require.Equal(t, ref, *updated.ProcessorID)
		require.True(t, updated.UpdatedAt.Equal(created.CreatedAt.Add(2*time.Second)))
		require.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		require.Equal(t, created.PriceCents, updated.PriceCents)

		got, ok, err := store.Get(ctx, created.TransactionID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, transactions.StatusCompleted, got.Status)
		require.Equal(t, ref, *got.ProcessorID)
	})

	t.Run("update_status_never_moves_updated_at_backwards", func(t *testing.T) {
		clock := NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		store := newStore(t, clock.Now, nil)
		ctx := context.Background()

		created, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		clock.Advance(-time.Hour)

		updated, err := store.UpdateStatus(ctx, created.TransactionID, transactions.StatusFailed, nil)
		require.NoError(t, err)
		require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("update_status_missing_id", func(t *testing.T) {
		store := newStore(t, nil, nil)

		_, err := store.UpdateStatus(context.Background(), uuid.New(), transactions.StatusCompleted, nil)
		require.ErrorIs(t, err, transactions.ErrTransactionNotFound)
	})

	t.Run("update_status_enforces_state_machine", func(t *testing.T) {
		store := newStore(t, nil, nil)
		ctx := context.Background()

		created, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		_, err = store.UpdateStatus(ctx, created.TransactionID, transactions.StatusRefunded, nil)
		require.ErrorIs(t, err, transactions.ErrInvalidTransition)

		ref := "pi_1"
		_, err = store.UpdateStatus(ctx, created.TransactionID, transactions.StatusCompleted, &ref)
		require.NoError(t, err)

		// exactly once: a second terminal transition is rejected
		_, err = store.UpdateStatus(ctx, created.TransactionID, transactions.StatusFailed, &ref)
		require.ErrorIs(t, err, transactions.ErrInvalidTransition)

		refund := "re_1"
		refunded, err := store.UpdateStatus(ctx, created.TransactionID, transactions.StatusRefunded, &refund)
		require.NoError(t, err)
		require.Equal(t, transactions.StatusRefunded, refunded.Status)
	})

	t.Run("list_pagination_with_cursor", func(t *testing.T) {
		clock := NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		store := newStore(t, clock.Now, nil)
		ctx := context.Background()

		player := uuid.New()
		other := uuid.New()

		var ids []uuid.UUID
		for range 3 {
			tx, err := store.Create(ctx, NewSample(player))
			require.NoError(t, err)

			ids = append(ids, tx.TransactionID)

			clock.Advance(time.Second)
		}

		_, err := store.Create(ctx, NewSample(other))
		require.NoError(t, err)

		page1, err := store.ListForPlayer(ctx, player, 2, nil)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		require.Equal(t, ids[2], page1[0].TransactionID)
		require.Equal(t, ids[1], page1[1].TransactionID)

		cursor := page1[1].TransactionID
		page2, err := store.ListForPlayer(ctx, player, 2, &cursor)
		require.NoError(t, err)
		require.Len(t, page2, 1)
		require.Equal(t, ids[0], page2[0].TransactionID)

		cursor = page2[0].TransactionID
		page3, err := store.ListForPlayer(ctx, player, 2, &cursor)
		require.NoError(t, err)
		require.Empty(t, page3)
	})

	t.Run("list_walk_never_repeats_with_equal_timestamps", func(t *testing.T) {
		clock := NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		store := newStore(t, clock.Now, nil)
		ctx := context.Background()

		player := uuid.New()

		const total = 7
		for range total {
			_, err := store.Create(ctx, NewSample(player))
			require.NoError(t, err)
		}

		seen := make(map[uuid.UUID]bool)

		var cursor *uuid.UUID
		for pages := 0; ; pages++ {
			require.Less(t, pages, total+1, "pagination did not terminate")

			page, err := store.ListForPlayer(ctx, player, 3, cursor)
			require.NoError(t, err)

			if len(page) == 0 {
				break
			}

			for _, tx := range page {
				require.False(t, seen[tx.TransactionID], "record %s returned twice", tx.TransactionID)
				seen[tx.TransactionID] = true
			}

			last := page[len(page)-1].TransactionID
			cursor = &last
		}

		require.Len(t, seen, total)
	})

	t.Run("list_clamps_limit", func(t *testing.T) {
		store := newStore(t, nil, nil)
		ctx := context.Background()

		player := uuid.New()
		for range 2 {
			_, err := store.Create(ctx, NewSample(player))
			require.NoError(t, err)
		}

		page, err := store.ListForPlayer(ctx, player, 0, nil)
		require.NoError(t, err)
		require.Len(t, page, 1)

		page, err = store.ListForPlayer(ctx, player, 5000, nil)
		require.NoError(t, err)
		require.Len(t, page, 2)
	})

	t.Run("list_unknown_cursor_is_empty", func(t *testing.T) {
		store := newStore(t, nil, nil)
		ctx := context.Background()

		player := uuid.New()
		_, err := store.Create(ctx, NewSample(player))
		require.NoError(t, err)

		missing := uuid.New()
		page, err := store.ListForPlayer(ctx, player, 10, &missing)
		require.NoError(t, err)
		require.Empty(t, page)
	})

	t.Run("list_stale_pending", func(t *testing.T) {
		clock := NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		store := newStore(t, clock.Now, nil)
		ctx := context.Background()

		stale, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		done, err := store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		ref := "pi_done"
		_, err = store.UpdateStatus(ctx, done.TransactionID, transactions.StatusCompleted, &ref)
		require.NoError(t, err)

		clock.Advance(time.Hour)

		_, err = store.Create(ctx, NewSample(uuid.New()))
		require.NoError(t, err)

		got, err := store.ListStalePending(ctx, clock.Now().Add(-30*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, stale.TransactionID, got[0].TransactionID)
	})

	t.Run("ping", func(t *testing.T) {
		store := newStore(t, nil, nil)

		latency, err := store.Ping(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, latency, time.Duration(0))
	})
}
