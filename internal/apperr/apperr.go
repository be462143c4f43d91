// Package apperr defines the application error taxonomy shared by the
// purchase pipeline, the payment coordinator and the HTTP layer.
//
// Every error kind is a sentinel; *Error wraps a kind together with the
// pipeline stage that failed, the transaction id (once one exists) and the
// underlying cause. errors.Is matches both the kind and the cause.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
	ErrStore              = errors.New("store error")
	ErrPayment            = errors.New("payment error")
	ErrPaymentUnavailable = errors.New("payment gateway unavailable")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal error")
)

// Pipeline stages reported on errors.
const (
	StageValidate = "validate"
	StageCreate   = "create"
	StageCharge   = "charge"
	StageUpdate   = "update_status"
	StageRefund   = "refund"
	StageQuery    = "query"
)

type Error struct {
	Kind          error
	Stage         string
	TransactionID string
	Msg           string
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())

	if e.Stage != "" {
		fmt.Fprintf(&b, " at %s", e.Stage)
	}

	if e.TransactionID != "" {
		fmt.Fprintf(&b, " (transaction %s)", e.TransactionID)
	}

	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// New builds an error of the given kind with a formatted message.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to err. A nil err yields nil.
func Wrap(kind error, err error, msg string) *Error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithStage returns a copy of e annotated with the stage and transaction id.
func (e *Error) WithStage(stage, transactionID string) *Error {
	cp := *e
	cp.Stage = stage
	cp.TransactionID = transactionID

	return &cp
}

// Annotate decorates any error with stage and transaction id. Errors that are
// not yet *Error are classified with fallback.
func Annotate(err error, fallback error, stage, transactionID string) error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.WithStage(stage, transactionID)
	}

	return &Error{Kind: fallback, Stage: stage, TransactionID: transactionID, Err: err}
}

// Stage extracts the stage recorded on err, if any.
func Stage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Stage
	}

	return ""
}

// TransactionID extracts the transaction id recorded on err, if any.
func TransactionID(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.TransactionID
	}

	return ""
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine readable error code used in API responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrPaymentUnavailable):
		return "PAYMENT_UNAVAILABLE"
	case errors.Is(err, ErrPayment):
		return "PAYMENT_ERROR"
	case errors.Is(err, ErrStore):
		return "DATABASE_ERROR"
	case errors.Is(err, ErrConfiguration):
		return "CONFIGURATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
