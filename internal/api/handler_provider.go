package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/fastprodman/mmog-microtx/internal/services/purchase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// PurchaseService is what the handlers need from the purchase pipeline.
type PurchaseService interface {
	Purchase(ctx context.Context, req purchase.Request) (purchase.Receipt, error)
	ListTransactions(ctx context.Context, playerID uuid.UUID, limit int, cursor *uuid.UUID) (purchase.Page, error)
	GetTransaction(ctx context.Context, playerID, transactionID uuid.UUID) (transactions.Transaction, error)
	Ping(ctx context.Context) (time.Duration, error)
	StrategyName() string
}

var _ PurchaseService = (*purchase.Service)(nil)

// HandlerProvider wraps the purchase service and exposes HTTP handlers.
type HandlerProvider struct {
	svc PurchaseService
	log *zap.Logger
	now func() time.Time
}

func NewHandler(svc PurchaseService, log *zap.Logger) *HandlerProvider {
	if log == nil {
		log = zap.NewNop()
	}

	return &HandlerProvider{svc: svc, log: log, now: time.Now}
}

// --- Helpers ---

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// declineBody is a receipt for a refused charge.
type declineBody struct {
	purchase.Receipt
	Error       string `json:"error"`
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
}

type healthBody struct {
	Status          string         `json:"status"`
	Timestamp       time.Time      `json:"timestamp"`
	PaymentStrategy string         `json:"payment_strategy"`
	Database        databaseHealth `json:"database"`
}

type databaseHealth struct {
	Status    string `json:"status"`
	LatencyMS *int64 `json:"latency_ms"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// Headers are gone at this point; all that is left is to log.
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeAppError maps an apperr to its status and logs server-side failures.
func (h *HandlerProvider) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)

	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("stage", apperr.Stage(err)),
		zap.String("transaction_id", apperr.TransactionID(err)),
		zap.Error(err),
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Warn("request rejected", fields...)
	}

	writeError(w, status, apperr.Code(err), err.Error())
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, apperr.New(apperr.ErrValidation, "missing %s", name)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.ErrValidation, "invalid %s: must be a UUID", name)
	}

	return id, nil
}

// parsePageQuery reads ?limit= and ?cursor=. An absent limit is the default
// page size; out-of-range limits are clamped by the service.
func parsePageQuery(r *http.Request) (int, *uuid.UUID, error) {
	q := r.URL.Query()

	limit := transactions.DefaultListLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, apperr.New(apperr.ErrValidation, "invalid limit: must be an integer")
		}

		limit = n
	}

	raw := q.Get("cursor")
	if raw == "" {
		return limit, nil, nil
	}

	cursor, err := uuid.Parse(raw)
	if err != nil {
		return 0, nil, apperr.New(apperr.ErrValidation, "invalid cursor: must be a UUID")
	}

	return limit, &cursor, nil
}

// --- Handlers ---

// PurchaseHandler handles POST /purchase
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var req purchase.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON: "+err.Error())
		return
	}

	receipt, err := h.svc.Purchase(r.Context(), req)
	if err != nil {
		decline, ok := purchase.IsDecline(err)
		if ok {
			writeJSON(w, http.StatusPaymentRequired, declineBody{
				Receipt:     decline.Receipt,
				Error:       decline.Message,
				Code:        apperr.Code(err),
				DeclineCode: decline.Code,
			})
			return
		}

		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// ListTransactionsHandler handles GET /transactions/{player_id}
func (h *HandlerProvider) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := parseUUIDParam(r, "player_id")
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	limit, cursor, err := parsePageQuery(r)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	page, err := h.svc.ListTransactions(r.Context(), playerID, limit, cursor)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetTransactionHandler handles GET /transactions/{player_id}/{transaction_id}
func (h *HandlerProvider) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := parseUUIDParam(r, "player_id")
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	txID, err := parseUUIDParam(r, "transaction_id")
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	tx, err := h.svc.GetTransaction(r.Context(), playerID, txID)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// HealthHandler handles GET /health
func (h *HandlerProvider) HealthHandler(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:          "healthy",
		Timestamp:       h.now().UTC(),
		PaymentStrategy: h.svc.StrategyName(),
		Database:        databaseHealth{Status: "healthy"},
	}

	latency, err := h.svc.Ping(r.Context())
	if err != nil {
		h.log.Warn("database unhealthy", zap.Error(err))

		body.Status = "unhealthy"
		body.Database.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, body)

		return
	}

	ms := latency.Milliseconds()
	body.Database.LatencyMS = &ms

	writeJSON(w, http.StatusOK, body)
}
