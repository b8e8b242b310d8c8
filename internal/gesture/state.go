package gesture

// State is the classifier's current interpretation of the head pose.
// Exactly one instance exists per classifier and only the classifier's own
// transition function mutates it.
type State int

const (
	StateNeutral State = iota
	StateTurningRight
	StateTurningLeft
	StateTiltingUp
	StateTiltingDown
	StateSpecialGesture
	StateCooldown
)

// String returns a human-readable state name for logs and the API.
func (s State) String() string {
	switch s {
	case StateNeutral:
		return "neutral"
	case StateTurningRight:
		return "turning-right"
	case StateTurningLeft:
		return "turning-left"
	case StateTiltingUp:
		return "tilting-up"
	case StateTiltingDown:
		return "tilting-down"
	case StateSpecialGesture:
		return "special-gesture"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}
