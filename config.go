package textlens

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.textlens.io"

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// ConnectionConfig carries everything needed to reach the Textlens API.
type ConnectionConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// LoadConfig reads connection settings from the environment.
// A .env file in the working directory is loaded first if present.
//
// Recognized variables:
//
//	TEXTLENS_API_KEY          required
//	TEXTLENS_BASE_URL         default https://api.textlens.io
//	TEXTLENS_TIMEOUT_SECONDS  default 30
func LoadConfig() (*ConnectionConfig, error) {
	_ = godotenv.Load()

	cfg := &ConnectionConfig{
		BaseURL: os.Getenv("TEXTLENS_BASE_URL"),
		APIKey:  os.Getenv("TEXTLENS_API_KEY"),
		Timeout: DefaultTimeout,
	}

	if cfg.APIKey == "" {
		return nil, errors.New("TEXTLENS_API_KEY is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if v := os.Getenv("TEXTLENS_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid TEXTLENS_TIMEOUT_SECONDS: %q", v)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}
