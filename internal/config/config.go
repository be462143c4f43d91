package config

import (
	"fmt"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
)

const (
	DefaultMaxTransactionCents int64 = 99_999_999
	MaxQuantityCeiling         int32 = 100
)

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL,required"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS"     envDefault:"5"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME"  envDefault:"30m"`
	AcquireTimeout  time.Duration `env:"PG_ACQUIRE_TIMEOUT"    envDefault:"3s"`
}

func (c PostgresConfig) Validate() error {
	if c.DSN == "" {
		return apperr.New(apperr.ErrConfiguration, "DATABASE_URL is required")
	}

	if c.MaxOpenConns < 1 {
		return apperr.New(apperr.ErrConfiguration, "PG_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}

	if c.AcquireTimeout <= 0 {
		return apperr.New(apperr.ErrConfiguration, "PG_ACQUIRE_TIMEOUT must be positive, got %s", c.AcquireTimeout)
	}

	return nil
}

type PaymentConfig struct {
	UseMock        bool          `env:"USE_MOCK_PAYMENTS"       envDefault:"false"`
	APIKey         string        `env:"STRIPE_API_KEY"`
	GatewayURL     string        `env:"PAYMENT_GATEWAY_URL"     envDefault:"https://api.stripe.com"`
	GatewayTimeout time.Duration `env:"PAYMENT_GATEWAY_TIMEOUT" envDefault:"10s"`

	MockFailureRate       float64       `env:"MOCK_FAILURE_RATE"             envDefault:"0"`
	MockDelay             time.Duration `env:"MOCK_PAYMENT_DELAY"            envDefault:"0s"`
	MockDeclineAboveCents int64         `env:"SIMULATED_DECLINE_ABOVE_CENTS" envDefault:"0"`
}

func (c PaymentConfig) Validate() error {
	if !c.UseMock && c.APIKey == "" {
		return apperr.New(apperr.ErrConfiguration, "STRIPE_API_KEY is required unless USE_MOCK_PAYMENTS=true")
	}

	if c.MockFailureRate < 0 || c.MockFailureRate > 1 {
		return apperr.New(apperr.ErrConfiguration, "MOCK_FAILURE_RATE must be within [0,1], got %v", c.MockFailureRate)
	}

	if !c.UseMock && c.GatewayTimeout <= 0 {
		return apperr.New(apperr.ErrConfiguration, "PAYMENT_GATEWAY_TIMEOUT must be positive")
	}

	if c.MockDelay < 0 || c.MockDeclineAboveCents < 0 {
		return apperr.New(apperr.ErrConfiguration, "simulated payment settings must not be negative")
	}

	return nil
}

// LimitsConfig bounds a single purchase.
type LimitsConfig struct {
	MaxTransactionCents int64 `env:"MAX_TRANSACTION_CENTS" envDefault:"99999999"`
	MaxQuantity         int32 `env:"MAX_QUANTITY"          envDefault:"100"`
}

func (c LimitsConfig) Validate() error {
	if c.MaxTransactionCents <= 0 {
		return apperr.New(apperr.ErrConfiguration, "MAX_TRANSACTION_CENTS must be positive, got %d", c.MaxTransactionCents)
	}

	if c.MaxQuantity < 1 || c.MaxQuantity > MaxQuantityCeiling {
		return apperr.New(apperr.ErrConfiguration,
			"MAX_QUANTITY must be within [1,%d], got %d", MaxQuantityCeiling, c.MaxQuantity)
	}

	return nil
}

// KafkaConfig enables purchase events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS"       envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC"         envDefault:"purchases"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

func (c KafkaConfig) Validate() error {
	if c.Enabled() && c.Topic == "" {
		return apperr.New(apperr.ErrConfiguration, "KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

// ValidateAll runs every validator and reports the first failure.
func ValidateAll(vs ...interface{ Validate() error }) error {
	for _, v := range vs {
		err := v.Validate()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	return nil
}
