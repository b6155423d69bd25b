package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
	"github.com/pthm-cable/botarena/config"
	"github.com/pthm-cable/botarena/systems"
)

// respawn is a combatant waiting to re-enter the arena.
type respawn struct {
	id  uint32
	tag components.Tag
	at  float64 // sim time
}

// spawnPicker hands out spawn points at random without repetition until
// every point has been used, then starts over.
type spawnPicker struct {
	points []config.SpawnConfig
	bag    []int
	rng    *rand.Rand
}

func newSpawnPicker(points []config.SpawnConfig, rng *rand.Rand) *spawnPicker {
	return &spawnPicker{points: points, rng: rng}
}

// Next returns a position and yaw in radians. With no spawn points it
// returns the arena origin.
func (p *spawnPicker) Next() (r3.Vec, float64) {
	if len(p.points) == 0 {
		return r3.Vec{}, 0
	}
	if len(p.bag) == 0 {
		p.bag = p.rng.Perm(len(p.points))
	}
	i := p.bag[len(p.bag)-1]
	p.bag = p.bag[:len(p.bag)-1]

	sp := p.points[i]
	return sp.Position.Vec(), sp.Yaw * math.Pi / 180
}

// buildArena creates the static obstacle entities.
func (g *Game) buildArena() {
	for _, o := range g.cfg.Arena.Obstacles {
		obs := components.Obstacle{Box: r3.Box{Min: o.Min.Vec(), Max: o.Max.Vec()}}
		g.obstacleMapper.NewEntity(&obs)
	}
}

// spawnInitialCars creates the bots and the training dummies.
func (g *Game) spawnInitialCars() {
	for slot := 0; slot < g.cfg.Match.Bots; slot++ {
		id := g.nextID
		g.nextID++

		pos, yaw := g.spawns.Next()
		e := g.spawnCar(id, components.TagBot, pos, yaw)
		a := &agent{id: id, slot: slot}
		g.attachController(a, e)
		g.addAgent(a)
		g.scoreboard.Register(id, components.TagBot.String(), g.tick)
	}

	for _, p := range g.cfg.Arena.Dummies {
		id := g.nextID
		g.nextID++

		g.dummies[id] = p
		g.spawnCar(id, components.TagDummy, p.Vec(), 0)
		g.scoreboard.Register(id, components.TagDummy.String(), g.tick)
	}
}

// spawnCar creates a car entity at full health and indexes it.
func (g *Game) spawnCar(id uint32, tag components.Tag, pos r3.Vec, yaw float64) ecs.Entity {
	tf := components.Transform{Position: pos, Yaw: yaw}
	mo := components.Motion{}
	drive := components.Drive{}
	chassis := components.ChassisFromConfig(g.cfg)
	hp := components.Health{Current: g.cfg.Derived.MaxHealth, Max: g.cfg.Derived.MaxHealth}
	cb := components.Combatant{ID: id, Tag: tag}

	e := g.carMapper.NewEntity(&tf, &mo, &drive, &chassis, &hp, &cb)
	g.index.Add(id, e)
	return e
}

// attachController gives a bot a fresh controller bound to entity e.
func (g *Game) attachController(a *agent, e ecs.Entity) {
	params := g.cfg.BotParams()
	if g.botParams != nil {
		params = g.botParams(a.slot)
	}

	a.body = &carBody{g: g, e: e}
	a.ctrl = bot.New(bot.ID(a.id), bot.Deps{
		Body:     a.body,
		Probe:    g.ray.Probe(systems.LayerObstacles),
		Registry: g.index,
		Spawner:  g.projectiles,
		Random:   rand.New(rand.NewSource(g.rng.Int63())),
	}, params, g.logger.With("agent", a.id))
	a.lastState = a.ctrl.State()
	a.lastStuck = 0
	a.lastShots = 0
	a.lastDiag = ""
}

// cleanupDead removes dead cars and queues their respawn.
func (g *Game) cleanupDead() {
	// First pass: collect dead entities (must complete before modifying)
	type deadInfo struct {
		entity ecs.Entity
		id     uint32
		tag    components.Tag
	}
	var toRemove []deadInfo

	query := g.combatFilter.Query()
	for query.Next() {
		cb, hp := query.Get()
		if hp.Dead {
			toRemove = append(toRemove, deadInfo{entity: query.Entity(), id: cb.ID, tag: cb.Tag})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, dead := range toRemove {
		g.index.Remove(dead.id)
		g.world.RemoveEntity(dead.entity)
		g.pending = append(g.pending, respawn{
			id:  dead.id,
			tag: dead.tag,
			at:  g.simTime + g.cfg.Match.RespawnDelay,
		})
	}
}

// processRespawns brings back every queued combatant whose delay is over.
func (g *Game) processRespawns() {
	if len(g.pending) == 0 {
		return
	}

	kept := g.pending[:0]
	for _, r := range g.pending {
		if r.at > g.simTime {
			kept = append(kept, r)
			continue
		}
		g.respawnCar(r)
	}
	g.pending = kept
}

func (g *Game) respawnCar(r respawn) {
	var pos r3.Vec
	var yaw float64
	if p, ok := g.dummies[r.id]; ok {
		pos = p.Vec()
	} else {
		pos, yaw = g.spawns.Next()
	}

	e := g.spawnCar(r.id, r.tag, pos, yaw)
	if a := g.agents[r.id]; a != nil {
		g.attachController(a, e)
	}

	g.scoreboard.RecordRespawn(r.id, g.tick)
	g.recordRespawn(r.id, pos)
}
