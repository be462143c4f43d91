// Package app assembles the purchase pipeline from configuration. The API
// server and the operator CLI share it so both run against the same stack.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/mmog-microtx/internal/config"
	"github.com/fastprodman/mmog-microtx/internal/events"
	"github.com/fastprodman/mmog-microtx/internal/events/kafka"
	"github.com/fastprodman/mmog-microtx/internal/infra/pgutils"
	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/mmog-microtx/internal/repos/transactions/postgres"
	"github.com/fastprodman/mmog-microtx/internal/services/payment"
	"github.com/fastprodman/mmog-microtx/internal/services/purchase"
	"github.com/fastprodman/mmog-microtx/pkg/shutdownqueue"
	"go.uber.org/zap"
)

// Config is everything the pipeline needs. Nested structs carry their own
// env tags.
type Config struct {
	Postgres config.PostgresConfig
	Payment  config.PaymentConfig
	Limits   config.LimitsConfig
	Kafka    config.KafkaConfig
}

func (c Config) Validate() error {
	return config.ValidateAll(c.Postgres, c.Payment, c.Limits, c.Kafka)
}

type App struct {
	DB        *sql.DB
	Store     transactions.Store
	Payments  *payment.Coordinator
	Publisher events.Publisher
	Purchases *purchase.Service
}

// Build opens the database and wires the pipeline. Every resource it opens
// is registered with the shutdown queue.
func Build(ctx context.Context, cfg Config, log *zap.Logger) (*App, error) {
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error {
		return db.Close()
	})

	store := pgtransactions.New(db, pgtransactions.WithAcquireTimeout(cfg.Postgres.AcquireTimeout))

	strategy := NewStrategy(cfg.Payment, cfg.Limits)
	payments := payment.NewCoordinator(strategy, log)

	publisher := NewPublisher(cfg.Kafka, log)
	shutdownqueue.Add("event publisher", func(context.Context) error {
		return publisher.Close()
	})

	log.Info("pipeline assembled",
		zap.String("payment_strategy", strategy.Name()),
		zap.Bool("events_enabled", cfg.Kafka.Enabled()),
		zap.Int("pg_max_open_conns", cfg.Postgres.MaxOpenConns),
		zap.Duration("pg_acquire_timeout", cfg.Postgres.AcquireTimeout),
	)

	return &App{
		DB:        db,
		Store:     store,
		Payments:  payments,
		Publisher: publisher,
		Purchases: purchase.New(store, payments, publisher, cfg.Limits, log),
	}, nil
}

// NewStrategy picks the payment backend once, at startup.
func NewStrategy(cfg config.PaymentConfig, limits config.LimitsConfig) payment.Strategy {
	if cfg.UseMock {
		return payment.NewSimulated(payment.SimulatedConfig{
			FailureRate:       cfg.MockFailureRate,
			Delay:             cfg.MockDelay,
			DeclineAboveCents: cfg.MockDeclineAboveCents,
		})
	}

	return payment.NewGateway(payment.GatewayConfig{
		BaseURL:        cfg.GatewayURL,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.GatewayTimeout,
		MaxAmountCents: limits.MaxTransactionCents,
	})
}

// NewPublisher returns the Kafka publisher when brokers are configured and a
// no-op otherwise.
func NewPublisher(cfg config.KafkaConfig, log *zap.Logger) events.Publisher {
	if !cfg.Enabled() {
		return events.Noop{}
	}

	return kafka.New(log.Named("kafka"), cfg.Brokers, cfg.Topic, cfg.WriteTimeout)
}
