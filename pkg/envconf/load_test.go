package envconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type nested struct {
	Timeout time.Duration `env:"ENVCONF_TEST_TIMEOUT" envDefault:"3s"`
}

type sample struct {
	DSN     string   `env:"ENVCONF_TEST_DSN,required"`
	Port    uint16   `env:"ENVCONF_TEST_PORT" envDefault:"8080"`
	Brokers []string `env:"ENVCONF_TEST_BROKERS" envSeparator:","`
	Nested  nested
}

type validated struct {
	Rate float64 `env:"ENVCONF_TEST_RATE" envDefault:"0"`
}

var errRate = errors.New("rate out of range")

func (v *validated) Validate() error {
	if v.Rate < 0 || v.Rate > 1 {
		return errRate
	}

	return nil
}

//nolint:paralleltest
func TestLoad(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DSN", "postgres://x")
	t.Setenv("ENVCONF_TEST_BROKERS", "a:9092,b:9092")

	var cfg sample

	err := Load(&cfg, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "postgres://x", cfg.DSN)
	require.Equal(t, uint16(8080), cfg.Port)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
	require.Equal(t, 3*time.Second, cfg.Nested.Timeout)
}

//nolint:paralleltest
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DSN", "")
	os.Unsetenv("ENVCONF_TEST_DSN")

	var cfg sample

	err := Load(&cfg, filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ENVCONF_TEST_DSN")
}

//nolint:paralleltest
func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("ENVCONF_TEST_PORT", "9000")

	path := filepath.Join(t.TempDir(), "test.env")
	err := os.WriteFile(path, []byte("ENVCONF_TEST_DSN=postgres://from-file\nENVCONF_TEST_PORT=1234\n"), 0o600)
	require.NoError(t, err)

	t.Cleanup(func() { os.Unsetenv("ENVCONF_TEST_DSN") })

	var cfg sample

	err = Load(&cfg, path)
	require.NoError(t, err)
	require.Equal(t, "postgres://from-file", cfg.DSN)
	// process environment wins over the file
	require.Equal(t, uint16(9000), cfg.Port)
}

//nolint:paralleltest
func TestLoad_RunsValidator(t *testing.T) {
	t.Setenv("ENVCONF_TEST_RATE", "1.5")

	var cfg validated

	err := Load(&cfg, filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, errRate)
}

func TestLoad_InvalidDestination(t *testing.T) {
	t.Parallel()

	var cfg sample

	require.ErrorIs(t, Load(nil), ErrInvalidDestination)
	require.ErrorIs(t, Load(cfg), ErrInvalidDestination)

	var nilPtr *sample
	require.ErrorIs(t, Load(nilPtr), ErrInvalidDestination)
}
