package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/RichardoC/couples-gpt/internal/auth"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	SecretKey       string        `env:"SECRET_KEY,required,notEmpty"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	DBPath          string        `env:"DB_PATH" envDefault:"users.db"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:5000"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"10"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	BlakeUsername string `env:"BLAKE_USERNAME"`
	BlakePassword string `env:"BLAKE_PASSWORD"`
	ChonaUsername string `env:"CHONA_USERNAME"`
	ChonaPassword string `env:"CHONA_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.HistoryLimit)
	}
	if len(cfg.Credentials()) == 0 {
		return nil, fmt.Errorf("at least one of BLAKE_USERNAME/BLAKE_PASSWORD or CHONA_USERNAME/CHONA_PASSWORD is required")
	}
	return cfg, nil
}

// Credentials returns the complete username/password pairs.
func (c *Config) Credentials() []auth.Credential {
	var creds []auth.Credential
	for _, pair := range [][2]string{
		{c.BlakeUsername, c.BlakePassword},
		{c.ChonaUsername, c.ChonaPassword},
	} {
		if pair[0] != "" && pair[1] != "" {
			creds = append(creds, auth.Credential{Username: pair[0], Password: pair[1]})
		}
	}
	return creds
}
