package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/config"
)

// TestDefaultsMatchConfig verifies the search starts at the shipped tuning.
func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	pv := NewParamVector()
	assert.Equal(t, pv.DefaultVector(), pv.Extract(cfg.BotParams()))

	for _, spec := range pv.Specs {
		assert.Less(t, spec.Min, spec.Max, spec.Name)
		assert.GreaterOrEqual(t, spec.Default, spec.Min, spec.Name)
		assert.LessOrEqual(t, spec.Default, spec.Max, spec.Name)
	}
}

// TestNormalizeBounds verifies the bounds map to 0 and 1.
func TestNormalizeBounds(t *testing.T) {
	pv := NewParamVector()
	lo := make([]float64, pv.Dim())
	hi := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		lo[i], hi[i] = spec.Min, spec.Max
	}

	for _, v := range pv.Normalize(lo) {
		assert.InDelta(t, 0, v, 1e-12)
	}
	for _, v := range pv.Normalize(hi) {
		assert.InDelta(t, 1, v, 1e-12)
	}
}

// TestApplyClampsAndKeepsOthers verifies out-of-range values are clamped and
// untuned thresholds pass through.
func TestApplyClampsAndKeepsOthers(t *testing.T) {
	pv := NewParamVector()
	base := bot.DefaultConfig()

	got := pv.Apply(base, []float64{-5, 1000, 5, 2, 0.5, 0.5})

	assert.Equal(t, pv.Specs[0].Min, got.EngagementDistance)
	assert.Equal(t, pv.Specs[1].Max, got.StoppingDistance)
	assert.Equal(t, 5.0, got.ObstacleProbeDistance)
	assert.Equal(t, 2.0, got.SideProbeDistance)
	assert.Equal(t, 0.5, got.AvoidanceTurnStrength)
	assert.Equal(t, 0.5, got.FireCooldown)

	assert.Equal(t, base.RunAwayDuration, got.RunAwayDuration)
	assert.Equal(t, base.FireForce, got.FireForce)
	assert.Equal(t, base.StuckInterval, got.StuckInterval)
}
