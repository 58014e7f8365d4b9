package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"cloudformation-dynatrace-resource-providers/internal/application/lifecycle"
	"cloudformation-dynatrace-resource-providers/internal/infrastructure/dynatrace"
)

type (
	// Config - основная конфигурация провайдера
	Config struct {
		App      `yaml:"app"`
		Log      `yaml:"logger"`
		API      dynatrace.ClientConfig  `yaml:"api"`
		Handlers lifecycle.HandlerConfig `yaml:"handlers"`
	}

	// App - конфигурация приложения
	App struct {
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	}

	// Log - конфигурация логирования
	Log struct {
		Level string `yaml:"log-level" env:"LOG_LEVEL"`
	}
)

// NewConfig создает новую конфигурацию
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	// Установка значений по умолчанию
	cfg.App.Name = "cloudformation-dynatrace-resource-providers"
	cfg.App.Version = "v1.0.0"
	cfg.Log.Level = "info"
	cfg.API.RequestTimeout = 30 * time.Second
	cfg.API.RateLimit = 10.0
	cfg.API.RateBurst = 20
	cfg.Handlers = lifecycle.DefaultHandlerConfig()

	// Загрузка из файла конфигурации
	if path != "" {
		err := cleanenv.ReadConfig(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	// Загрузка из переменных окружения
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetConfigUsage возвращает описание всех конфигурационных параметров
func GetConfigUsage() string {
	var cfg Config
	usage, _ := cleanenv.GetDescription(&cfg, nil)
	return usage
}

// Validate валидирует конфигурацию
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}

	if err := c.Handlers.Validate(); err != nil {
		return fmt.Errorf("handlers config validation failed: %w", err)
	}

	return nil
}
