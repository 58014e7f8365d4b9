package dynatrace

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig конфигурация клиента Dynatrace API с cleanenv тегами
type ClientConfig struct {
	// HTTP настройки
	Endpoint       string        `yaml:"endpoint" env:"DYNATRACE_ENDPOINT" env-description:"Dynatrace environment API base URL, e.g. https://abc12345.live.dynatrace.com"`
	APIToken       string        `yaml:"api_token" env:"DYNATRACE_API_TOKEN" env-description:"API token with synthetic monitor read/write scopes"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"DYNATRACE_REQUEST_TIMEOUT" env-default:"30s" env-description:"Per-request timeout"`

	// Rate Limiting
	RateLimit float64 `yaml:"rate_limit" env:"DYNATRACE_RATE_LIMIT" env-default:"10.0" env-description:"Rate limit (requests per second)"`
	RateBurst int     `yaml:"rate_burst" env:"DYNATRACE_RATE_BURST" env-default:"20" env-description:"Rate burst size"`
}

// LoadClientConfig загружает конфигурацию с помощью cleanenv
func LoadClientConfig(configPath string) (ClientConfig, error) {
	var config ClientConfig

	if configPath != "" {
		// Загрузка из YAML файла с автоматическим применением env переменных
		err := cleanenv.ReadConfig(configPath, &config)
		if err != nil {
			return config, fmt.Errorf("failed to read config from %s: %w", configPath, err)
		}
	} else {
		// Загрузка только из env переменных с defaults
		err := cleanenv.ReadEnv(&config)
		if err != nil {
			return config, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if !strings.HasPrefix(c.Endpoint, "https://") && !strings.HasPrefix(c.Endpoint, "http://") {
		return fmt.Errorf("endpoint must be an absolute http(s) URL")
	}

	if c.APIToken == "" {
		return fmt.Errorf("api_token cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}

	if c.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive")
	}

	return nil
}
