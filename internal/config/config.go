// internal/config/config.go
//
// Runtime configuration for both binaries, parsed once in main from
// the environment (after godotenv has loaded any .env file).

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds client settings.
type Config struct {
	APIURL   string `env:"WORLDLE_API_URL" envDefault:"http://localhost:8787"`
	DataDir  string `env:"WORLDLE_DATA_DIR" envDefault:"data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// StubConfig holds settings for the development stub server.
type StubConfig struct {
	Port     string `env:"PORT" envDefault:"8787"`
	Seed     int64  `env:"STUB_SEED" envDefault:"0"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses client configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// LoadStub parses stub server configuration from the environment.
func LoadStub() (*StubConfig, error) {
	cfg, err := env.ParseAs[StubConfig]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
