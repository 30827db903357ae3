// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable
// expansion. ${NAME} and $NAME expand to the variable; ${NAME:-fallback}
// uses fallback when NAME is unset or empty.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal([]byte(Expand(string(data))), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return validate(target)
}

// LoadOptional behaves like Load but keeps target as is when filename does
// not exist. target is validated either way.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return validate(target)
	}
	return Load(filename, target)
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// Expand substitutes environment variables in s.
func Expand(s string) string {
	return os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if v := os.Getenv(name); v != "" || !hasFallback {
			return v
		}
		return fallback
	})
}
