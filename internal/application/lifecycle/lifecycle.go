package lifecycle

import (
	"context"
	"fmt"
	"time"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

// Gateway performs the actual remote calls against the monitoring backend.
// Every call is a single request/response with no internal retry; failures
// surface as (status, vendor code, message) faults.
type Gateway interface {
	GetMonitor(ctx context.Context, entityID string) (*models.SyntheticMonitor, float64, error)
	CreateMonitor(ctx context.Context, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error)
	UpdateMonitor(ctx context.Context, entityID string, desired *models.SyntheticMonitor) (*models.SyntheticMonitor, error)
	DeleteMonitor(ctx context.Context, entityID string) error
	ListMonitors(ctx context.Context) ([]models.SyntheticMonitor, error)
}

// HandlerConfig is the immutable tuning of the lifecycle state machines,
// fixed at construction time
type HandlerConfig struct {
	// MaxRetries bounds stabilization attempts per operation; exceeding it
	// always surfaces NotStabilized
	MaxRetries int `yaml:"max_retries" env:"HANDLER_MAX_RETRIES" env-default:"10" env-description:"Maximum stabilization attempts per operation"`

	// StabilizationThreshold is the number of consecutive successful reads
	// create requires before declaring success
	StabilizationThreshold int `yaml:"stabilization_threshold" env:"HANDLER_STABILIZATION_THRESHOLD" env-default:"5" env-description:"Consecutive successful reads required to stabilize a create"`

	// BaseBackoff and MaxBackoff bound the advisory re-invocation delay
	BaseBackoff time.Duration `yaml:"base_backoff" env:"HANDLER_BASE_BACKOFF" env-default:"2s" env-description:"Initial re-invocation delay"`
	MaxBackoff  time.Duration `yaml:"max_backoff" env:"HANDLER_MAX_BACKOFF" env-default:"60s" env-description:"Re-invocation delay cap"`

	// JitterFactor spreads delays symmetrically around the exponential base
	JitterFactor float64 `yaml:"jitter_factor" env:"HANDLER_JITTER_FACTOR" env-default:"0.5" env-description:"Backoff randomization factor in [0,1)"`
}

// DefaultHandlerConfig возвращает стандартную конфигурацию хендлеров
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		MaxRetries:             10,
		StabilizationThreshold: 5,
		BaseBackoff:            2 * time.Second,
		MaxBackoff:             60 * time.Second,
		JitterFactor:           0.5,
	}
}

// Validate проверяет корректность конфигурации
func (c *HandlerConfig) Validate() error {
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive")
	}
	if c.StabilizationThreshold <= 0 {
		return fmt.Errorf("stabilization_threshold must be positive")
	}
	if c.BaseBackoff <= 0 {
		return fmt.Errorf("base_backoff must be positive")
	}
	if c.MaxBackoff < c.BaseBackoff {
		return fmt.Errorf("max_backoff must be at least base_backoff")
	}
	if c.JitterFactor < 0 || c.JitterFactor >= 1 {
		return fmt.Errorf("jitter_factor must be in [0, 1)")
	}
	return nil
}

// Request is one handler invocation: the declared desired state plus the
// callback state the host re-delivered (zero value on the first call)
type Request struct {
	Desired  *models.SyntheticMonitor
	Callback models.CallbackState
}

// MonitorLifecycle drives one synthetic-monitor resource through its
// lifecycle. Each method is a single state-machine transition: it performs at
// most one remote call per phase step and returns either a terminal outcome
// or an in-progress event carrying the next callback state and delay.
type MonitorLifecycle struct {
	gateway   Gateway
	config    HandlerConfig
	scheduler *BackoffScheduler
}

// NewMonitorLifecycle creates a new MonitorLifecycle
func NewMonitorLifecycle(gateway Gateway, config HandlerConfig) (*MonitorLifecycle, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid handler config: %w", err)
	}

	return &MonitorLifecycle{
		gateway:   gateway,
		config:    config,
		scheduler: NewBackoffScheduler(config.BaseBackoff, config.MaxBackoff, config.JitterFactor),
	}, nil
}
