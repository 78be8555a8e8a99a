package orchestrator

import "fmt"

// State is a phase of a command run.
type State int

const (
	Idle State = iota
	ServerStarting
	SessionOpen
	Preparing
	Executing
	TearingDown
	Done
	numStates
)

var stateNames = [...]string{
	Idle:           "Idle",
	ServerStarting: "ServerStarting",
	SessionOpen:    "SessionOpen",
	Preparing:      "Preparing",
	Executing:      "Executing",
	TearingDown:    "TearingDown",
	Done:           "Done",
}

func _() {
	var x [1]struct{}
	_ = x[len(stateNames)-int(numStates)]
}

func (s State) String() string {
	if s < 0 || s >= numStates {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}
