package systems

import "github.com/pthm-cable/botarena/telemetry"

// SystemInfo describes a simulation system for perf reports.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "physics", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so logs and the perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all arena systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all arena systems in execution order.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Decision making
	r.Register(SystemInfo{ID: telemetry.PhaseControl, Name: "Control", Description: "Runs every bot controller tick", Category: "ai"})
	r.Register(SystemInfo{ID: telemetry.PhaseFiring, Name: "Firing", Description: "Runs controller fixed ticks and spawns shots", Category: "ai"})

	// Physics and movement
	r.Register(SystemInfo{ID: telemetry.PhaseVehicles, Name: "Vehicles", Description: "Applies drive inputs and integrates cars", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseSpatialGrid, Name: "Spatial Grid", Description: "Rebuilds the combatant lookup grid", Category: "core"})
	r.Register(SystemInfo{ID: telemetry.PhaseProjectiles, Name: "Projectiles", Description: "Moves projectiles and resolves hits", Category: "physics"})

	// Combat outcome
	r.Register(SystemInfo{ID: telemetry.PhaseDamage, Name: "Damage", Description: "Applies hits, kills and scoring", Category: "combat"})
	r.Register(SystemInfo{ID: telemetry.PhaseCleanup, Name: "Cleanup", Description: "Removes dead cars", Category: "core"})
	r.Register(SystemInfo{ID: telemetry.PhaseRespawn, Name: "Respawn", Description: "Returns dead cars to the arena", Category: "core"})

	// Data collection (internal)
	r.Register(SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Flushes stats windows", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}
