package core

import (
	"encoding/json"
	"errors"
	"time"
)

// ActionKind classifies a game action by the shape of its payload.
type ActionKind int

const (
	ActionNone     ActionKind = iota
	ActionClick               // {"type":"click"} - reaction time
	ActionPosition            // {"position":n} - tic-tac-toe move, mole hit
	ActionChoice              // {"choice":"rock"} - rock-paper-scissors
)

// String returns a human-readable name for the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "None"
	case ActionClick:
		return "Click"
	case ActionPosition:
		return "Position"
	case ActionChoice:
		return "Choice"
	default:
		return "Unknown"
	}
}

// NoPosition marks an action without a target cell.
const NoPosition = -1

// ErrUnknownAction is returned when a payload matches no known action shape.
var ErrUnknownAction = errors.New("core: unrecognized action payload")

// Action is a decoded game action from one player.
type Action struct {
	Kind     ActionKind
	Position int
	Choice   string

	// At is the server receive time stamped by the transport.
	// Zero means the engine should use its clock.
	At time.Time
}

// Click builds a click action.
func Click() Action {
	return Action{Kind: ActionClick, Position: NoPosition}
}

// Place builds a position action.
func Place(pos int) Action {
	return Action{Kind: ActionPosition, Position: pos}
}

// Choose builds a choice action.
func Choose(choice string) Action {
	return Action{Kind: ActionChoice, Position: NoPosition, Choice: choice}
}

type rawAction struct {
	Type     string  `json:"type"`
	Position *int    `json:"position"`
	Choice   *string `json:"choice"`
}

// ParseAction classifies a game-action payload by shape.
// Validation of the values themselves is left to the engines.
func ParseAction(data json.RawMessage) (Action, error) {
	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return Action{}, err
	}

	switch {
	case raw.Choice != nil:
		return Choose(*raw.Choice), nil
	case raw.Position != nil:
		return Place(*raw.Position), nil
	case raw.Type == "click":
		return Click(), nil
	}
	return Action{}, ErrUnknownAction
}
