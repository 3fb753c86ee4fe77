// state.go — Node lifecycle states and the admissible transition table.
package lifecycle

// State is one of the eleven node lifecycle states.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Exiting
	Stopping
	Updating
	Updated
	Crashed
	Errored
	Unrecoverable
	UpdateFailed
)

var stateNames = map[State]string{
	Stopped:       "stopped",
	Starting:      "starting",
	Running:       "running",
	Exiting:       "exiting",
	Stopping:      "stopping",
	Updating:      "updating",
	Updated:       "updated",
	Crashed:       "crashed",
	Errored:       "errored",
	Unrecoverable: "unrecoverable",
	UpdateFailed:  "update_failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether the state can only be left via a forced
// restart.
func (s State) Terminal() bool {
	return s == Unrecoverable || s == UpdateFailed
}

// Startable reports whether an unforced start may leave this state.
func (s State) Startable() bool {
	switch s {
	case Stopped, Crashed, Updated, Errored:
		return true
	}
	return false
}

// transitions maps each state to the states reachable from it. Errored
// is reachable from every live state because a channel error may arrive
// at any point while a child exists.
var transitions = map[State][]State{
	Stopped:       {Starting},
	Starting:      {Running, Stopping, Exiting, Crashed, Errored, Unrecoverable},
	Running:       {Exiting, Stopping, Updating, Errored},
	Exiting:       {Stopped, Crashed, Updated, Unrecoverable, Errored},
	Stopping:      {Stopped, Crashed, Errored},
	Updating:      {Updated, UpdateFailed, Exiting, Stopping, Crashed, Unrecoverable, Errored},
	Updated:       {Starting},
	Crashed:       {Starting},
	Errored:       {Starting},
	Unrecoverable: {Starting},
	UpdateFailed:  {Starting},
}

// Admissible reports whether from → to is a legal transition.
func Admissible(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
