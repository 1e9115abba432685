package model

// Action is a user request reported by a renderer's input polling
type Action int

const (
	ActionNothing Action = iota
	ActionQuit
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionReset:
		return "reset"
	default:
		return "nothing"
	}
}
