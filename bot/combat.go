package bot

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// CombatActuator rate-limits firing and stamps every shot with its shooter.
type CombatActuator struct {
	spawner  Spawner
	cooldown float64
	force    float64
	since    float64
	shots    int
}

// NewCombatActuator creates an actuator that may fire immediately.
func NewCombatActuator(spawner Spawner, cfg Config) *CombatActuator {
	return &CombatActuator{
		spawner:  spawner,
		cooldown: cfg.FireCooldown,
		force:    cfg.FireForce,
		since:    cfg.FireCooldown,
	}
}

// Advance moves the cooldown clock forward.
func (a *CombatActuator) Advance(dt float64) {
	a.since += dt
}

// Ready reports whether the cooldown has elapsed.
func (a *CombatActuator) Ready() bool {
	return a.since >= a.cooldown
}

// Fire spawns a projectile from muzzle towards target if the cooldown has
// elapsed. A degenerate aim is skipped without resetting the cooldown.
func (a *CombatActuator) Fire(shooter ID, muzzle, target, inherited r3.Vec) (bool, error) {
	if !a.Ready() {
		return false, nil
	}
	if a.spawner == nil {
		return false, ErrNoSpawner
	}

	aim := r3.Sub(target, muzzle)
	if vmath.IsZero(aim) {
		return false, nil
	}

	shot := Shot{
		Origin:            muzzle,
		Direction:         r3.Unit(aim),
		InheritedVelocity: inherited,
		Impulse:           a.force,
		Shooter:           shooter,
	}
	if err := a.spawner.SpawnProjectile(shot); err != nil {
		return false, err
	}
	a.since = 0
	a.shots++
	return true, nil
}

// Shots returns the number of projectiles fired.
func (a *CombatActuator) Shots() int {
	return a.shots
}
