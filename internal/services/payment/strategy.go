// Package payment decouples purchase processing from a concrete payment
// processor. A Strategy talks to one backend; the Coordinator validates
// amounts, derives idempotency keys and classifies strategy errors.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Strategy --dir=. --output=./mocks --outpkg=mocks

var (
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected request")
	ErrMalformedResponse  = errors.New("malformed payment gateway response")
)

// Request is one charge against a player.
type Request struct {
	TransactionID  uuid.UUID
	PlayerID       uuid.UUID
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

// Decline is the processor's reason for refusing a charge.
type Decline struct {
	Code    string
	Message string
}

// Result is either an approval or a decline. Build it with Approved or
// Declined.
type Result struct {
	ProcessorID string
	Decline     *Decline
}

func Approved(processorID string) Result {
	return Result{ProcessorID: processorID}
}

// Declined keeps the processor reference when the backend supplied one.
func Declined(processorID, code, message string) Result {
	return Result{
		ProcessorID: processorID,
		Decline:     &Decline{Code: code, Message: message},
	}
}

func (r Result) Succeeded() bool { return r.Decline == nil }

// Strategy is a payment backend. Implementations are safe for concurrent use.
//
// Declines are results, not errors: an error means the outcome is unknown or
// the request never reached a decision.
type Strategy interface {
	Process(ctx context.Context, req Request) (Result, error)
	Refund(ctx context.Context, processorID string, amountCents int64) (Result, error)
	Name() string
}
