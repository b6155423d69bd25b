package telemetry

import "sort"

// ScoreEntry tracks one combatant's match statistics across respawns.
type ScoreEntry struct {
	ID        uint32  `csv:"id"`
	Tag       string  `csv:"tag"`
	Kills     int     `csv:"kills"`
	Deaths    int     `csv:"deaths"`
	Shots     int     `csv:"shots"`
	Hits      int     `csv:"hits"`
	Damage    float64 `csv:"damage"`
	Stuck     int     `csv:"stuck"`
	TimeAlive float64 `csv:"time_alive"`

	spawnTick int32 `csv:"-"`
	alive     bool  `csv:"-"`
}

// KillRecord is one row of kills.csv.
type KillRecord struct {
	Tick      int32   `csv:"tick"`
	Time      float64 `csv:"time"`
	Killer    uint32  `csv:"killer"`
	KillerTag string  `csv:"killer_tag"`
	Victim    uint32  `csv:"victim"`
	VictimTag string  `csv:"victim_tag"`
}

// Scoreboard manages per-combatant scores keyed by identity.
type Scoreboard struct {
	entries map[uint32]*ScoreEntry
	dt      float64
}

// NewScoreboard creates an empty scoreboard. dt converts ticks to seconds.
func NewScoreboard(dt float64) *Scoreboard {
	return &Scoreboard{
		entries: make(map[uint32]*ScoreEntry),
		dt:      dt,
	}
}

// Register creates the entry for a combatant entering the match.
// Registering a known identity keeps its score.
func (sb *Scoreboard) Register(id uint32, tag string, tick int32) {
	if e := sb.entries[id]; e != nil {
		sb.RecordRespawn(id, tick)
		return
	}
	sb.entries[id] = &ScoreEntry{ID: id, Tag: tag, spawnTick: tick, alive: true}
}

// Get returns the entry for id, or nil if not found.
func (sb *Scoreboard) Get(id uint32) *ScoreEntry {
	return sb.entries[id]
}

// RecordShot increments the shot count.
func (sb *Scoreboard) RecordShot(id uint32) {
	if e := sb.entries[id]; e != nil {
		e.Shots++
	}
}

// RecordHit credits a hit and its damage to the shooter.
func (sb *Scoreboard) RecordHit(shooter uint32, damage float64) {
	if e := sb.entries[shooter]; e != nil {
		e.Hits++
		e.Damage += damage
	}
}

// RecordKill credits the killer and closes the victim's life.
// It returns the kill row for output.
func (sb *Scoreboard) RecordKill(killer, victim uint32, tick int32) KillRecord {
	rec := KillRecord{Tick: tick, Time: float64(tick) * sb.dt, Killer: killer, Victim: victim}
	if e := sb.entries[killer]; e != nil {
		e.Kills++
		rec.KillerTag = e.Tag
	}
	if e := sb.entries[victim]; e != nil {
		e.Deaths++
		rec.VictimTag = e.Tag
		if e.alive {
			e.TimeAlive += float64(tick-e.spawnTick) * sb.dt
			e.alive = false
		}
	}
	return rec
}

// RecordRespawn starts a new life for id.
func (sb *Scoreboard) RecordRespawn(id uint32, tick int32) {
	if e := sb.entries[id]; e != nil && !e.alive {
		e.spawnTick = tick
		e.alive = true
	}
}

// RecordStuck increments the stuck-episode count.
func (sb *Scoreboard) RecordStuck(id uint32) {
	if e := sb.entries[id]; e != nil {
		e.Stuck++
	}
}

// Finalize closes every open life at tick so TimeAlive is complete.
func (sb *Scoreboard) Finalize(tick int32) {
	for _, e := range sb.entries {
		if e.alive {
			e.TimeAlive += float64(tick-e.spawnTick) * sb.dt
			e.spawnTick = tick
		}
	}
}

// Entries returns all entries ranked by kills, then fewest deaths, then id.
func (sb *Scoreboard) Entries() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(sb.entries))
	for _, e := range sb.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.Deaths != b.Deaths {
			return a.Deaths < b.Deaths
		}
		return a.ID < b.ID
	})
	return out
}

// Leader returns the unique top scorer. ok is false when nobody has a kill
// or the lead is shared.
func (sb *Scoreboard) Leader() (id uint32, kills int, ok bool) {
	for _, e := range sb.entries {
		switch {
		case e.Kills > kills:
			id, kills, ok = e.ID, e.Kills, true
		case e.Kills == kills && kills > 0:
			ok = false
		}
	}
	return id, kills, ok
}

// KillsByTag sums kills per combatant tag.
func (sb *Scoreboard) KillsByTag() map[string]int {
	out := make(map[string]int)
	for _, e := range sb.entries {
		out[e.Tag] += e.Kills
	}
	return out
}

// Count returns the number of tracked combatants.
func (sb *Scoreboard) Count() int {
	return len(sb.entries)
}
