package state

// stateless object, just used for state computing
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	InProcess Category = iota + 1
	OnHold
	Done
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

// AvailableTransitions lists transitions leaving fromState and entering toState. An empty name matches any state.
func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From.Name) && (toState == "" || toState == transition.To.Name) {
			r = append(r, transition)
		}
	}
	return r
}

// Fire finds the transition named action that may leave fromState.
func (sm *StateMachine) Fire(action string, fromState string) (Transition, bool) {
	for _, transition := range sm.Transitions {
		if transition.Name == action && transition.From.Name == fromState {
			return transition, true
		}
	}
	return Transition{}, false
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// IsTerminal reports whether no transition other than the named exceptions leaves the state.
func (sm *StateMachine) IsTerminal(name string, exceptions ...string) bool {
	for _, transition := range sm.AvailableTransitions(name, "") {
		excepted := false
		for _, e := range exceptions {
			if transition.Name == e {
				excepted = true
				break
			}
		}
		if !excepted {
			return false
		}
	}
	return true
}
