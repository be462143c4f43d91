package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/mmog-microtx/internal/api"
	"github.com/fastprodman/mmog-microtx/internal/app"
	"github.com/fastprodman/mmog-microtx/internal/infra/logging"
	"github.com/fastprodman/mmog-microtx/pkg/envconf"
	"github.com/fastprodman/mmog-microtx/pkg/shutdownqueue"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	log := logging.SetupJSON("mmog-microtx-api", cfg.LogLevel)
	defer logging.Sync(log)

	shutdownqueue.SetLogger(log)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	a, err := app.Build(ctx, cfg.App, log)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, a.Purchases, log)

	shutdownqueue.Add("http server", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	log.Info("API started", zap.String("addr", srv.Addr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
