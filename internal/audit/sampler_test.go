package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerFullRateAlwaysRecords(t *testing.T) {
	s := NewSampler(1.0)
	for range 100 {
		assert.True(t, s.ShouldSample(ActionDossierRequested))
	}
}

func TestSamplerZeroRateNeverRecords(t *testing.T) {
	s := NewSampler(0)
	for range 100 {
		assert.False(t, s.ShouldSample(ActionDossierRequested))
	}
}

func TestSamplerPerActionOverride(t *testing.T) {
	s := NewSampler(0)
	s.SetRate(ActionCollaboratorFailed, 1.0)

	assert.True(t, s.ShouldSample(ActionCollaboratorFailed))
	assert.False(t, s.ShouldSample(ActionDossierRequested))
}

func TestSamplerClampsRates(t *testing.T) {
	assert.True(t, NewSampler(7.5).ShouldSample(ActionDossierRequested))
	assert.False(t, NewSampler(-3).ShouldSample(ActionDossierRequested))

	s := NewSampler(0)
	s.SetRate(ActionDossierRequested, 42)
	assert.True(t, s.ShouldSample(ActionDossierRequested))
}
