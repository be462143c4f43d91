package main

import (
	"time"

	"github.com/fastprodman/mmog-microtx/internal/apperr"
	"github.com/fastprodman/mmog-microtx/internal/app"
	"go.uber.org/zap/zapcore"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"         envDefault:"8080"`
	LogLevel        zapcore.Level `env:"APP_LOG_LEVEL"    envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	App app.Config
}

func (c *apiConfig) Validate() error {
	if c.Port == 0 {
		return apperr.New(apperr.ErrConfiguration, "APP_PORT must be set")
	}

	if c.ShutdownTimeout <= 0 {
		return apperr.New(apperr.ErrConfiguration, "SHUTDOWN_TIMEOUT must be positive")
	}

	return c.App.Validate()
}
