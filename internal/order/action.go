package order

// Action is what the requester wants done with the domains.
type Action string

const (
	ActionTest Action = "test"
	ActionWork Action = "work"
	ActionEdit Action = "edit"
	ActionStop Action = "stop"
)

// Actions lists the actions in menu order.
var Actions = []Action{ActionTest, ActionWork, ActionEdit, ActionStop}

// ParseAction maps callback data to an Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionTest, ActionWork, ActionEdit, ActionStop:
		return a, true
	}
	return "", false
}

func (a Action) String() string { return string(a) }
