package orchestrator

// State is a step of the decision stage.
type State int

const (
	StateAwaitingDecision State = iota
	StateRetrieving
	StateSkippingRetrieval
	StatePromptAssembled
)

func (s State) String() string {
	names := [...]string{
		"awaiting-decision",
		"retrieving",
		"skipping-retrieval",
		"prompt-assembled",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Terminal reports whether s ends the decision stage.
func (s State) Terminal() bool {
	return s == StatePromptAssembled
}

// ProgressEvent is emitted on every state transition.
type ProgressEvent struct {
	RunID   string
	State   State
	Message string
}
