// Package telemetry provides match statistics, scoring, bookmarks and perf tracking.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventShot EventType = iota
	EventHit
	EventKill
	EventRespawn
	EventStuck
	EventStateChange
)

func (t EventType) String() string {
	switch t {
	case EventShot:
		return "shot"
	case EventHit:
		return "hit"
	case EventKill:
		return "kill"
	case EventRespawn:
		return "respawn"
	case EventStuck:
		return "stuck"
	case EventStateChange:
		return "state_change"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int32
	AgentID uint32

	// Optional fields depending on event type
	TargetID uint32  // victim for hit/kill events
	Amount   float64 // damage dealt (hit)
	State    string  // new state (state change)
}

// NewShotEvent creates a shot event.
func NewShotEvent(tick int32, shooterID uint32) Event {
	return Event{Type: EventShot, Tick: tick, AgentID: shooterID}
}

// NewHitEvent creates a projectile hit event.
func NewHitEvent(tick int32, shooterID, victimID uint32, damage float64) Event {
	return Event{
		Type:     EventHit,
		Tick:     tick,
		AgentID:  shooterID,
		TargetID: victimID,
		Amount:   damage,
	}
}

// NewKillEvent creates a kill event.
func NewKillEvent(tick int32, killerID, victimID uint32) Event {
	return Event{
		Type:     EventKill,
		Tick:     tick,
		AgentID:  killerID,
		TargetID: victimID,
	}
}

// NewRespawnEvent creates a respawn event.
func NewRespawnEvent(tick int32, id uint32) Event {
	return Event{Type: EventRespawn, Tick: tick, AgentID: id}
}

// NewStuckEvent creates a stuck-episode event.
func NewStuckEvent(tick int32, id uint32) Event {
	return Event{Type: EventStuck, Tick: tick, AgentID: id}
}

// NewStateChangeEvent creates a behavior state change event.
func NewStateChangeEvent(tick int32, id uint32, state string) Event {
	return Event{Type: EventStateChange, Tick: tick, AgentID: id, State: state}
}
