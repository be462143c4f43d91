package app

import (
	"testing"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/config"
	"github.com/fastprodman/mmog-microtx/internal/events"
	"github.com/fastprodman/mmog-microtx/internal/events/kafka"
	"github.com/fastprodman/mmog-microtx/internal/services/payment"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStrategy(t *testing.T) {
	t.Parallel()

	limits := config.LimitsConfig{MaxTransactionCents: 5000, MaxQuantity: 10}

	mock := NewStrategy(config.PaymentConfig{UseMock: true, MockFailureRate: 0.25}, limits)
	require.IsType(t, &payment.SimulatedStrategy{}, mock)
	require.Equal(t, payment.SimulatedName, mock.Name())

	gw := NewStrategy(config.PaymentConfig{APIKey: "sk_test", GatewayTimeout: time.Second}, limits)
	require.IsType(t, &payment.GatewayStrategy{}, gw)
	require.Equal(t, payment.GatewayName, gw.Name())
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	require.Equal(t, events.Noop{}, NewPublisher(config.KafkaConfig{}, zap.NewNop()))

	pub := NewPublisher(config.KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "purchases",
		WriteTimeout: time.Second,
	}, zap.NewNop())
	require.IsType(t, &kafka.Publisher{}, pub)
	require.NoError(t, pub.Close())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Postgres: config.PostgresConfig{DSN: "postgres://x", MaxOpenConns: 5, AcquireTimeout: time.Second},
		Payment:  config.PaymentConfig{UseMock: true},
		Limits:   config.LimitsConfig{MaxTransactionCents: 1, MaxQuantity: 1},
	}
	require.NoError(t, cfg.Validate())

	cfg.Payment.UseMock = false
	require.ErrorIs(t, cfg.Validate(), apperr.ErrConfiguration)
}
