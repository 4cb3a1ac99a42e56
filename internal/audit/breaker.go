package audit

import (
	"sync"
	"time"
)

const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = time.Minute
)

// CircuitBreaker stops sink writes after consecutive failures so a dead
// broker does not stall the worker on every batch. After the cooldown one
// probe batch is let through; its outcome closes or reopens the circuit.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	threshold   int
	cooldown    time.Duration
	openedAt    time.Time
	open        bool
	halfOpenCap int
}

// NewCircuitBreaker returns a breaker that opens after threshold consecutive
// failures and allows a probe after cooldown. Zero values take defaults.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Allow reports whether a write may proceed. While open it admits a single
// half-open probe once the cooldown has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.open {
		return true
	}

	if time.Since(cb.openedAt) >= cb.cooldown {
		if cb.halfOpenCap == 0 {
			cb.halfOpenCap = 1
			return true
		}
		return false
	}

	return false
}

// RecordSuccess closes the circuit and clears the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.open = false
	cb.halfOpenCap = 0
}

// RecordFailure counts a failed write and opens the circuit at the threshold.
// A failed half-open probe reopens immediately and restarts the cooldown.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.failures >= cb.threshold || cb.halfOpenCap > 0 {
		cb.open = true
		cb.openedAt = time.Now()
		cb.halfOpenCap = 0
	}
}

// IsOpen reports whether the circuit is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.open
}
