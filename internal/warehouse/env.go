// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package warehouse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrEnvVariablesNotValid = errors.New("environment variables not valid")
)

// Config holds the warehouse connection settings, read from the environment.
type Config struct {
	Host          string        `env:"WAREHOUSE_HOST" envDefault:"localhost"`
	Port          int           `env:"WAREHOUSE_PORT" envDefault:"9000"`
	Database      string        `env:"WAREHOUSE_DATABASE" envDefault:"default"`
	User          string        `env:"WAREHOUSE_USER" envDefault:"default"`
	Password      string        `env:"WAREHOUSE_PASSWORD"`
	Secure        bool          `env:"WAREHOUSE_SECURE" envDefault:"false"`
	SkipTLSVerify bool          `env:"WAREHOUSE_SKIP_TLS_VERIFY" envDefault:"false"`
	Debug         bool          `env:"WAREHOUSE_DEBUG" envDefault:"false"`
	MaxOpenConns  int           `env:"WAREHOUSE_MAX_OPEN_CONNS" envDefault:"4"`
	MaxIdleConns  int           `env:"WAREHOUSE_MAX_IDLE_CONNS" envDefault:"2"`
	PingRetries   uint          `env:"WAREHOUSE_PING_RETRIES" envDefault:"3"`
	PingDelay     time.Duration `env:"WAREHOUSE_PING_DELAY" envDefault:"1s"`
}

// LoadConfig reads and validates the warehouse configuration from the
// environment.
func LoadConfig() (*Config, error) {
	var envVars Config
	if err := env.Parse(&envVars); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	if err := validateEnvironmentVariables(&envVars); err != nil {
		return nil, err
	}
	return &envVars, nil
}

func validateEnvironmentVariables(envVars *Config) error {
	envError := make([]string, 0)

	if envVars.Host == "" {
		envError = append(envError, "WAREHOUSE_HOST cannot be empty")
	}
	if envVars.Port < 1 || envVars.Port > 65535 {
		envError = append(envError, "WAREHOUSE_PORT is out of valid range (1-65535)")
	}
	if envVars.MaxOpenConns < 1 {
		envError = append(envError, "WAREHOUSE_MAX_OPEN_CONNS must be at least 1")
	}
	if envVars.SkipTLSVerify && !envVars.Secure {
		envError = append(envError, "WAREHOUSE_SKIP_TLS_VERIFY requires WAREHOUSE_SECURE")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, strings.Join(envError, ", "))
	}
	return nil
}
