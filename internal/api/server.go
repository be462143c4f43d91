package api

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// NewServer creates and returns a configured *http.Server for the purchase API.
func NewServer(port uint16, svc PurchaseService, log *zap.Logger) *http.Server {
	mux := NewRouter(svc, log)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
