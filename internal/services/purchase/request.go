package purchase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MaxPriceCents   int64 = 99_999_999
	DefaultQuantity int32 = 1
)

// Request is an inbound purchase. Quantity is optional and defaults to 1.
type Request struct {
	PlayerID   string          `json:"player_id"   validate:"required,uuid"`
	ItemID     string          `json:"item_id"     validate:"required,max=255"`
	ItemName   string          `json:"item_name"   validate:"required,max=255"`
	PriceCents int64           `json:"price_cents" validate:"gt=0,lte=99999999"`
	Currency   string          `json:"currency"    validate:"len=3"`
	Quantity   *int32          `json:"quantity"    validate:"omitempty,gte=1,lte=100"`
	Metadata   json.RawMessage `json:"metadata"`
}

// ReceiptItem and ReceiptPayment are the nested parts of a Receipt.
type ReceiptItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

type ReceiptPayment struct {
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	ProcessorID *string `json:"processor_id"`
}

// Receipt is the outcome of a purchase as returned to the player.
type Receipt struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	Status        transactions.Status `json:"status"`
	Item          ReceiptItem         `json:"item"`
	Payment       ReceiptPayment      `json:"payment"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewReceipt(tx transactions.Transaction) Receipt {
	return Receipt{
		TransactionID: tx.TransactionID,
		Status:        tx.Status,
		Item: ReceiptItem{
			ID:       tx.ItemID,
			Name:     tx.ItemName,
			Quantity: tx.Quantity,
		},
		Payment: ReceiptPayment{
			AmountCents: tx.TotalCents(),
			Currency:    tx.Currency,
			ProcessorID: tx.ProcessorID,
		},
		CreatedAt: tx.CreatedAt,
	}
}

// validated is a Request after validation, ready to be persisted.
type validated struct {
	tx         transactions.NewTransaction
	totalCents int64
}

func (s *Service) validate(req Request) (validated, error) {
	err := s.validator.Struct(req)
	if err != nil {
		return validated{}, apperr.New(apperr.ErrValidation, "%s", describe(err))
	}

	quantity := DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if quantity > s.limits.MaxQuantity {
		return validated{}, apperr.New(apperr.ErrValidation,
			"quantity %d exceeds maximum %d", quantity, s.limits.MaxQuantity)
	}

	if len(req.Metadata) > 0 && !json.Valid(req.Metadata) {
		return validated{}, apperr.New(apperr.ErrValidation, "metadata must be valid JSON")
	}

	if req.PriceCents > math.MaxInt64/int64(quantity) {
		return validated{}, apperr.New(apperr.ErrValidation,
			"total price overflows: %d x %d", req.PriceCents, quantity)
	}

	total := req.PriceCents * int64(quantity)
	if total > s.limits.MaxTransactionCents {
		return validated{}, apperr.New(apperr.ErrValidation,
			"total %d cents exceeds maximum transaction of %d cents", total, s.limits.MaxTransactionCents)
	}

	return validated{
		tx: transactions.NewTransaction{
			PlayerID:   uuid.MustParse(req.PlayerID),
			ItemID:     req.ItemID,
			ItemName:   req.ItemName,
			PriceCents: req.PriceCents,
			Currency:   req.Currency,
			Quantity:   quantity,
			Metadata:   req.Metadata,
		},
		totalCents: total,
	}, nil
}

// describe renders validator failures with their JSON field names.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "uuid":
		return fe.Field() + " must be a UUID"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), minBound(fe))
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func minBound(fe validator.FieldError) string {
	if fe.Tag() == "gt" && fe.Param() == "0" {
		return "1"
	}

	return fe.Param()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}
