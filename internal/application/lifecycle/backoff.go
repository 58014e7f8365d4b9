package lifecycle

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BackoffScheduler computes the advisory delay before the host re-invokes a
// handler. The delay grows as 2^(retry/2) from Base up to Max, with a single
// symmetric jitter factor; growth and jitter are delegated to the backoff
// library so the cap and randomization behave the same way they do in the
// rest of the codebase.
type BackoffScheduler struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// NewBackoffScheduler returns a scheduler with the given base delay, cap and
// jitter factor in [0, 1)
func NewBackoffScheduler(base, max time.Duration, jitter float64) *BackoffScheduler {
	if base <= 0 {
		base = 2 * time.Second
	}
	if max < base {
		max = base
	}
	if jitter < 0 || jitter >= 1 {
		jitter = 0.5
	}
	return &BackoffScheduler{Base: base, Max: max, Jitter: jitter}
}

// Delay returns the advisory delay for the given retry counter. The result
// is always non-negative and its expectation is non-decreasing in retry.
func (s *BackoffScheduler) Delay(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.Base
	policy.Multiplier = math.Sqrt2
	policy.RandomizationFactor = s.Jitter
	policy.MaxInterval = s.Max
	policy.MaxElapsedTime = 0
	policy.Reset()

	// Шагаем политику до нужного счетчика; retry ограничен бюджетом операции
	delay := policy.NextBackOff()
	for i := 0; i < retry; i++ {
		delay = policy.NextBackOff()
	}
	return delay
}

// DelaySeconds returns Delay rounded up to whole seconds, never below one
// second, which is the granularity of the host's callback delay
func (s *BackoffScheduler) DelaySeconds(retry int) int64 {
	seconds := int64(math.Ceil(s.Delay(retry).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
