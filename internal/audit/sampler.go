package audit

import (
	"math/rand"
	"sync"
)

// Sampler decides which operations events are recorded. Compliance events
// bypass sampling entirely; the publisher enforces that, not the sampler.
type Sampler struct {
	mu           sync.RWMutex
	defaultRate  float64
	rateByAction map[Action]float64
}

// NewSampler returns a sampler recording the given fraction of events.
// Rates are clamped to [0, 1].
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate:  clampRate(defaultRate),
		rateByAction: make(map[Action]float64),
	}
}

// SetRate overrides the sampling rate for one action.
func (s *Sampler) SetRate(action Action, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByAction[action] = clampRate(rate)
}

// ShouldSample reports whether an event for the action should be recorded.
func (s *Sampler) ShouldSample(action Action) bool {
	s.mu.RLock()
	rate, ok := s.rateByAction[action]
	if !ok {
		rate = s.defaultRate
	}
	s.mu.RUnlock()

	if rate >= 1.0 {
		return true
	}
	if rate <= 0.0 {
		return false
	}

	return rand.Float64() < rate //nolint:gosec // sampling does not need crypto randomness
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
