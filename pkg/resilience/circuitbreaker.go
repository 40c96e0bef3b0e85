package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is refusing calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreakerConfig tunes trip and recovery behavior. Zero values take
// defaults.
type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxRequests int
}

func (cfg CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	return cfg
}

// CircuitBreaker trips open after a run of consecutive failures, refuses
// calls for a cool-down, then admits probe requests half-open until one
// succeeds.
type CircuitBreaker struct {
	name   string
	cfg    CircuitBreakerConfig
	logger *slog.Logger

	mu           sync.Mutex
	state        breakerState
	failures     int
	lastFailure  time.Time
	halfOpenSent int
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg.withDefaults(),
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

// Execute runs fn if the breaker admits the call and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case stateOpen:
		remaining := cb.cfg.ResetTimeout - time.Since(cb.lastFailure)
		if remaining > 0 {
			return fmt.Errorf("%w: %s (retry in %v)", ErrCircuitOpen, cb.name, remaining)
		}
		cb.state = stateHalfOpen
		cb.halfOpenSent = 1
		cb.logger.Info("circuit half-open, sending probe")
		return nil
	case stateHalfOpen:
		if cb.halfOpenSent >= cb.cfg.HalfOpenMaxRequests {
			return fmt.Errorf("%w: %s (probe in flight)", ErrCircuitOpen, cb.name)
		}
		cb.halfOpenSent++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil {
		if cb.state == stateHalfOpen {
			cb.logger.Info("circuit closed, store recovered")
		}
		cb.state = stateClosed
		cb.failures = 0
		cb.halfOpenSent = 0
		return
	}

	cb.failures++
	cb.lastFailure = time.Now()
	switch cb.state {
	case stateClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = stateOpen
			cb.logger.Warn("circuit opened", "consecutive_failures", cb.failures)
		}
	case stateHalfOpen:
		cb.state = stateOpen
		cb.logger.Warn("circuit re-opened, probe failed")
	}
}
