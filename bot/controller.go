// Package bot implements the per-tick controller of an autonomous combat
// vehicle: target acquisition, obstacle avoidance, stuck recovery, a
// Chase/Attack/RunAway behavior machine and a rate-limited gun.
//
// The controller owns no scheduling. A simulation driver calls Tick once per
// frame and FixedTick once per physics step, and reports damage through
// OnHit. Everything the controller touches in the world goes through the
// interfaces in types.go.
package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// Deps are the collaborators injected into a Controller.
type Deps struct {
	Body     Body
	Probe    Probe
	Registry Registry
	Spawner  Spawner
	Random   Random
}

// Controller drives one agent.
type Controller struct {
	id     ID
	cfg    Config
	deps   Deps
	logger *slog.Logger

	state State

	targets *TargetAcquisition
	sensor  *ObstacleSensor
	stuck   *StuckMonitor
	gun     *CombatActuator

	lastAttacker ID
	runAwayTimer float64

	transitions int
}

// New creates a controller in the Chase state. The config is sanitized;
// clamped fields are logged as warnings.
func New(id ID, deps Deps, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if clamped := cfg.Sanitize(); len(clamped) > 0 {
		logger.Warn("bot config clamped to defaults", "agent", id, "fields", clamped)
	}

	var start r3.Vec
	if deps.Body != nil {
		start = deps.Body.Position()
	}

	return &Controller{
		id:      id,
		cfg:     cfg,
		deps:    deps,
		logger:  logger,
		state:   Chase,
		targets: NewTargetAcquisition(cfg.TargetInterval),
		sensor:  NewObstacleSensor(deps.Probe, deps.Random, cfg),
		stuck:   NewStuckMonitor(cfg, start),
		gun:     NewCombatActuator(deps.Spawner, cfg),
	}
}

// Tick runs the logic update: target refresh, stuck check, state dispatch
// and transition check, in that order. Returned errors are diagnostics for
// missing collaborators; the agent keeps running with the affected logic
// skipped.
func (c *Controller) Tick(dt float64) error {
	body := c.deps.Body
	if body == nil {
		return c.wrap(ErrNoBody)
	}
	pos := body.Position()

	c.targets.Update(dt, c.id, pos, c.deps.Registry)
	targetPos, hasTarget := c.targets.Resolve(c.deps.Registry)

	if c.stuck.Update(dt, pos, body.Speed(), c.deps.Random) {
		c.logger.Debug("stuck", "agent", c.id, "pos", pos, "episode", c.stuck.Episodes())
	}

	if c.stuck.Active() {
		body.SetInputs(c.stuck.Command())
	} else {
		switch c.state {
		case Chase, Attack:
			c.seek(body, pos, targetPos, hasTarget)
		case RunAway:
			if !c.flee(body, pos) {
				c.setState(Chase)
				c.seek(body, pos, targetPos, hasTarget)
			}
		}
	}

	c.updateTransitions(dt, pos, targetPos, hasTarget)

	var errs []error
	if c.deps.Probe == nil {
		errs = append(errs, c.wrap(ErrNoProbe))
	}
	if c.deps.Registry == nil {
		errs = append(errs, c.wrap(ErrNoRegistry))
	}
	return errors.Join(errs...)
}

// FixedTick runs the physics-step update: the gun's cooldown clock and,
// in Attack, a shot at the current target. The cooldown keeps running when
// a collaborator is missing.
func (c *Controller) FixedTick(dt float64) error {
	c.gun.Advance(dt)
	if c.deps.Registry == nil {
		return c.wrap(ErrNoRegistry)
	}
	if !c.state.Fires() || !c.gun.Ready() {
		return nil
	}

	targetPos, ok := c.targets.Resolve(c.deps.Registry)
	if !ok {
		return nil
	}

	body := c.deps.Body
	if body == nil {
		return c.wrap(ErrNoBody)
	}
	muzzle, ok := body.FirePoint()
	if !ok {
		return c.wrap(ErrNoFirePoint)
	}

	fired, err := c.gun.Fire(c.id, muzzle, targetPos, body.Velocity())
	if err != nil {
		return c.wrap(err)
	}
	if fired {
		c.logger.Debug("fire", "agent", c.id, "target", c.targets.Target())
	}
	return nil
}

// OnHit records the attacker and forces RunAway. Hits reported against the
// agent itself are ignored.
func (c *Controller) OnHit(attacker ID) {
	if attacker == c.id || attacker == None {
		return
	}
	c.lastAttacker = attacker
	c.runAwayTimer = 0
	c.setState(RunAway)
}

// seek steers towards the target, deferring to obstacle avoidance.
func (c *Controller) seek(body Body, pos, targetPos r3.Vec, hasTarget bool) {
	if !hasTarget {
		body.SetInputs(0, 0)
		return
	}

	forward := body.Forward()
	if c.avoid(body, pos, forward) {
		return
	}

	dist := vmath.Distance(pos, targetPos)
	if dist <= c.cfg.EngagementDistance {
		body.SetInputs(0, 0)
		return
	}

	dir := vmath.SafeUnit(vmath.Flat(r3.Sub(targetPos, pos)), vmath.Flat(forward))
	turn := vmath.Sign(vmath.SignedAngle(forward, dir, vmath.Up))

	throttle := 0.0
	if r3.Dot(vmath.Flat(forward), dir) > 0 {
		throttle = 1
	}
	if dist <= c.cfg.StoppingDistance && body.Speed() > c.cfg.StoppingSpeed {
		throttle = -1
	}
	body.SetInputs(turn, throttle)
}

// flee drives straight away from the last attacker. It returns false when
// the attacker can no longer be resolved.
func (c *Controller) flee(body Body, pos r3.Vec) bool {
	attackerPos, ok := c.locateAttacker()
	if !ok {
		return false
	}

	forward := body.Forward()
	if c.avoid(body, pos, forward) {
		return true
	}

	away := vmath.Flat(r3.Sub(pos, attackerPos))
	turn := 0.0
	if !vmath.IsZero(away) {
		turn = vmath.ClampUnit(vmath.SignedAngle(forward, away, vmath.Up) / c.cfg.TurnAngleScale)
	}
	body.SetInputs(turn, 1)
	return true
}

// avoid consults the obstacle sensor. It returns true when the sensor took
// over steering for this tick.
func (c *Controller) avoid(body Body, pos, forward r3.Vec) bool {
	av := c.sensor.Sense(pos, forward, body.IsGrounded())
	if av.Jump {
		body.Jump()
	}
	if !av.Blocked {
		return false
	}
	body.SetInputs(av.Turn, av.Throttle)
	return true
}

func (c *Controller) updateTransitions(dt float64, pos, targetPos r3.Vec, hasTarget bool) {
	c.runAwayTimer += dt

	if c.state == RunAway {
		if _, ok := c.locateAttacker(); !ok || c.runAwayTimer >= c.cfg.RunAwayDuration {
			c.setState(Chase)
		}
		return
	}

	dist := math.Inf(1)
	if hasTarget {
		dist = vmath.Distance(pos, targetPos)
	}
	switch {
	case c.state == Chase && dist <= c.cfg.EngagementDistance:
		c.setState(Attack)
	case c.state == Attack && dist > c.cfg.EngagementDistance:
		c.setState(Chase)
	}
}

func (c *Controller) locateAttacker() (r3.Vec, bool) {
	if c.lastAttacker == None || c.deps.Registry == nil {
		return r3.Vec{}, false
	}
	pos, ok := c.deps.Registry.Locate(c.lastAttacker)
	if !ok {
		c.lastAttacker = None
	}
	return pos, ok
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	c.logger.Debug("state change", "agent", c.id, "from", c.state.String(), "to", s.String())
	c.state = s
	c.transitions++
}

func (c *Controller) wrap(err error) error {
	return fmt.Errorf("agent %d: %w", c.id, err)
}

// ID returns the agent's identity.
func (c *Controller) ID() ID { return c.id }

// State returns the current behavior state.
func (c *Controller) State() State { return c.state }

// Target returns the engaged target, None when idle.
func (c *Controller) Target() ID { return c.targets.Target() }

// LastAttacker returns the agent being fled from, None if none.
func (c *Controller) LastAttacker() ID { return c.lastAttacker }

// Unstuck reports whether the stuck override is active.
func (c *Controller) Unstuck() bool { return c.stuck.Active() }

// StuckEpisodes returns the number of stuck episodes so far.
func (c *Controller) StuckEpisodes() int { return c.stuck.Episodes() }

// Shots returns the number of projectiles fired.
func (c *Controller) Shots() int { return c.gun.Shots() }

// Transitions returns the number of state changes so far.
func (c *Controller) Transitions() int { return c.transitions }

// Config returns the sanitized configuration.
func (c *Controller) Config() Config { return c.cfg }
