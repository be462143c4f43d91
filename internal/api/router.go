package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the chi router with every API endpoint registered.
func NewRouter(svc PurchaseService, log *zap.Logger) http.Handler {
	h := NewHandler(svc, log)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", h.HealthHandler)

	r.Post("/purchase", h.PurchaseHandler)

	r.Route("/transactions/{player_id}", func(r chi.Router) {
		r.Get("/", h.ListTransactionsHandler)
		r.Get("/{transaction_id}", h.GetTransactionHandler)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
