package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/botarena/components"
)

// Damage is the outcome of one hit after it was applied.
type Damage struct {
	Hit
	Remaining float64
	Killed    bool
}

// HealthSystem applies projectile hits to combatant health.
type HealthSystem struct {
	index *Combatants
	hpMap *ecs.Map[components.Health]
}

// NewHealthSystem creates a health system resolving victims through index.
func NewHealthSystem(w *ecs.World, index *Combatants) *HealthSystem {
	return &HealthSystem{
		index: index,
		hpMap: ecs.NewMap[components.Health](w),
	}
}

// Apply subtracts damage for each hit in order. Hits on unknown or already
// dead victims are dropped, so a combatant is killed at most once.
func (s *HealthSystem) Apply(hits []Hit) []Damage {
	out := make([]Damage, 0, len(hits))
	for _, h := range hits {
		e, ok := s.index.Entity(h.Victim)
		if !ok {
			continue
		}
		hp := s.hpMap.Get(e)
		if hp == nil || hp.Dead {
			continue
		}
		hp.Current -= h.Damage
		d := Damage{Hit: h, Remaining: hp.Current}
		if hp.Current <= 0 {
			hp.Current = 0
			hp.Dead = true
			d.Remaining = 0
			d.Killed = true
		}
		out = append(out, d)
	}
	return out
}
