package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
)

// Combatants indexes living combat-capable entities by identity and
// answers the controller's registry queries. The index is updated only by
// Add and Remove, which the game calls outside controller ticks.
type Combatants struct {
	world  *ecs.World
	filter *ecs.Filter3[components.Transform, components.Combatant, components.Health]
	tfMap  *ecs.Map[components.Transform]
	hpMap  *ecs.Map[components.Health]
	byID   map[uint32]ecs.Entity
}

// NewCombatants creates an empty index.
func NewCombatants(w *ecs.World) *Combatants {
	return &Combatants{
		world:  w,
		filter: ecs.NewFilter3[components.Transform, components.Combatant, components.Health](w),
		tfMap:  ecs.NewMap[components.Transform](w),
		hpMap:  ecs.NewMap[components.Health](w),
		byID:   make(map[uint32]ecs.Entity),
	}
}

// Add indexes an entity under id.
func (c *Combatants) Add(id uint32, e ecs.Entity) {
	c.byID[id] = e
}

// Remove drops id from the index.
func (c *Combatants) Remove(id uint32) {
	delete(c.byID, id)
}

// Entity resolves an identity to a live entity.
func (c *Combatants) Entity(id uint32) (ecs.Entity, bool) {
	e, ok := c.byID[id]
	if !ok || !c.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// Combatants lists every living combatant except exclude.
func (c *Combatants) Combatants(exclude bot.ID) []bot.Contact {
	var out []bot.Contact
	query := c.filter.Query()
	for query.Next() {
		tf, cb, hp := query.Get()
		if hp.Dead || bot.ID(cb.ID) == exclude {
			continue
		}
		out = append(out, bot.Contact{ID: bot.ID(cb.ID), Position: tf.Position})
	}
	return out
}

// Locate returns the current position of a living combatant.
func (c *Combatants) Locate(id bot.ID) (r3.Vec, bool) {
	e, ok := c.Entity(uint32(id))
	if !ok {
		return r3.Vec{}, false
	}
	if hp := c.hpMap.Get(e); hp == nil || hp.Dead {
		return r3.Vec{}, false
	}
	return c.tfMap.Get(e).Position, true
}
