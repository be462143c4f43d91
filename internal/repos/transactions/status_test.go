package transactions

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStatus_Transitions(t *testing.T) {
	t.Parallel()

	all := []Status{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}

	allowed := map[[2]Status]bool{
		{StatusPending, StatusCompleted}:  true,
		{StatusPending, StatusFailed}:     true,
		{StatusCompleted, StatusRefunded}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s): want %v, got %v", from, to, want, got)
			}

			err := CheckTransition(from, to)
			if want && err != nil {
				t.Fatalf("CheckTransition(%s, %s): unexpected error %v", from, to, err)
			}
			if !want && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("CheckTransition(%s, %s): want ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestStatus_Predicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    Status
		terminal  bool
		canRefund bool
	}{
		{StatusPending, false, false},
		{StatusCompleted, true, true},
		{StatusFailed, true, false},
		{StatusRefunded, true, false},
		{Status("bogus"), false, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Fatalf("%s.IsTerminal: want %v, got %v", tt.status, tt.terminal, got)
		}
		if got := tt.status.CanRefund(); got != tt.canRefund {
			t.Fatalf("%s.CanRefund: want %v, got %v", tt.status, tt.canRefund, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	st, err := ParseStatus(" Completed ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StatusCompleted {
		t.Fatalf("want completed, got %s", st)
	}

	if _, err := ParseStatus("settled"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-5: 1, 0: 1, 1: 1, 100: 100, 1000: 1000, 1001: 1000, 1 << 30: 1000}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d): want %d, got %d", in, want, got)
		}
	}
}

func TestBefore(t *testing.T) {
	t.Parallel()

	now := Now()
	lo := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	hi := uuid.MustParse("ffffffff-0000-4000-8000-000000000001")

	older := Transaction{TransactionID: hi, CreatedAt: now.Add(-time.Second)}
	newer := Transaction{TransactionID: lo, CreatedAt: now}
	if !Before(older, newer) || Before(newer, older) {
		t.Fatalf("timestamp ordering broken")
	}

	a := Transaction{TransactionID: lo, CreatedAt: now}
	b := Transaction{TransactionID: hi, CreatedAt: now}
	if !Before(a, b) || Before(b, a) {
		t.Fatalf("id tie-break ordering broken")
	}
}
