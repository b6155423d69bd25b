package bot

// State is a behavior state. Unstuck is not a State: it is an override
// owned by the StuckMonitor.
type State uint8

const (
	Chase State = iota
	Attack
	RunAway
)

func (s State) String() string {
	switch s {
	case Chase:
		return "chase"
	case Attack:
		return "attack"
	case RunAway:
		return "run_away"
	}
	return "unknown"
}

// Fires reports whether the state licenses the combat actuator.
func (s State) Fires() bool {
	return s == Attack
}
