package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/botarena/telemetry"
)

// TestSystemRegistryMatchesPhases verifies every perf phase has a registered system.
func TestSystemRegistryMatchesPhases(t *testing.T) {
	reg := NewSystemRegistry()

	var ids []string
	for _, info := range reg.All() {
		ids = append(ids, info.ID)
		assert.NotEmpty(t, info.Name, info.ID)
		assert.NotEmpty(t, info.Category, info.ID)
	}
	assert.Equal(t, telemetry.Phases, ids)
}

func TestSystemRegistryLookup(t *testing.T) {
	reg := NewSystemRegistry()

	assert.Equal(t, "Projectiles", reg.GetName(telemetry.PhaseProjectiles))
	assert.Equal(t, "unknown_phase", reg.GetName("unknown_phase"))
	assert.Equal(t, []string{"ai", "physics", "core", "combat", "internal"}, reg.Categories())

	var ids []string
	for _, info := range reg.ByCategory("ai") {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{telemetry.PhaseControl, telemetry.PhaseFiring}, ids)

	reg.Register(SystemInfo{ID: "extra", Name: "Extra", Category: "debug"})
	assert.Len(t, reg.All(), len(telemetry.Phases)+1)
}
