// Package envconf fills configuration structs from the process environment.
//
// Fields are bound with caarlos0/env tags (`env:"NAME"`, `envDefault:"..."`,
// `env:"NAME,required"`). A .env file in the working directory is loaded first
// when present; variables already set in the environment win over the file.
// If the destination implements Validator, Validate runs after parsing.
package envconf

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var ErrInvalidDestination = errors.New("destination must be a non-nil pointer to a struct")

// Validator is implemented by config structs with cross-field rules.
type Validator interface {
	Validate() error
}

// Load populates dst from the environment, reading .env files first.
func Load(dst any, files ...string) error {
	if dst == nil {
		return ErrInvalidDestination
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidDestination
	}

	err := loadDotEnv(files...)
	if err != nil {
		return err
	}

	err = env.Parse(dst)
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if val, ok := dst.(Validator); ok {
		err = val.Validate()
		if err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	return nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}
