package model

// State is a stage of a publish run.
type State string

const (
	Validating     State = "Validating"
	Archiving      State = "Archiving"
	CreatingRecord State = "CreatingRecord"
	Uploading      State = "Uploading"
	CleaningUp     State = "CleaningUp"

	Success State = "Success"
	Failed  State = "Failed"
)

// States lists the working states in the order a run visits them.
var States = []State{Validating, Archiving, CreatingRecord, Uploading, CleaningUp}

// IsTerminal reports whether s ends a run.
func (s State) IsTerminal() bool {
	return s == Success || s == Failed
}

func (s State) String() string {
	return string(s)
}

// StateInfo describes a state as seen by publish options.
type StateInfo struct {
	State State
	// Index is the position of the state in States, -1 for start and end.
	Index int
}

// Name returns the name used to identify the state in measures and drawings.
func (si *StateInfo) Name() string {
	return string(si.State)
}

var (
	StartState = &StateInfo{State: "start", Index: -1}
	EndState   = &StateInfo{State: "end", Index: -1}
)

// NewStateInfo returns the StateInfo of a working state.
func NewStateInfo(state State) *StateInfo {
	for i, s := range States {
		if s == state {
			return &StateInfo{State: state, Index: i}
		}
	}

	return &StateInfo{State: state, Index: -1}
}
