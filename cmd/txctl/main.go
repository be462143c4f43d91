// Command txctl is the operator tool for purchase reconciliation: it lists
// stuck Pending purchases, shows records and refunds completed ones.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/app"
	"github.com/fastprodman/mmog-microtx/internal/infra/logging"
	"github.com/fastprodman/mmog-microtx/pkg/envconf"
	"github.com/fastprodman/mmog-microtx/pkg/shutdownqueue"
	"go.uber.org/zap/zapcore"
)

var Version = "dev"

type txctlConfig struct {
	LogLevel zapcore.Level `env:"TXCTL_LOG_LEVEL" envDefault:"warn"`

	App app.Config
}

func (c *txctlConfig) Validate() error { return c.App.Validate() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(connect)
	root.Version = Version

	err := root.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serr := shutdownqueue.Shutdown(shutdownCtx)
	if serr != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", serr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func connect(ctx context.Context) (operator, error) {
	cfg := new(txctlConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	log := logging.New("mmog-microtx-txctl", cfg.LogLevel)
	shutdownqueue.SetLogger(log)
	shutdownqueue.Add("logger", func(context.Context) error {
		logging.Sync(log)
		return nil
	})

	a, err := app.Build(ctx, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	return a.Purchases, nil
}
