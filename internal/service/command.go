package service

import (
	"errors"
	"strings"
)

// Action enumerates recognized operator command keywords.
type Action string

const (
	ActionComplete Action = "complete"
	ActionStart    Action = "start"
	ActionHold     Action = "hold"
	ActionProblem  Action = "problem"
	ActionStatus   Action = "status"
)

// actionAliases maps accepted keywords (including the Spanish shorthand
// operators actually type) onto canonical actions.
var actionAliases = map[string]Action{
	"complete":  ActionComplete,
	"listo":     ActionComplete,
	"terminado": ActionComplete,
	"start":     ActionStart,
	"resume":    ActionStart,
	"iniciar":   ActionStart,
	"retomo":    ActionStart,
	"hold":      ActionHold,
	"espera":    ActionHold,
	"repuestos": ActionHold,
	"problem":   ActionProblem,
	"problema":  ActionProblem,
	"status":    ActionStatus,
	"estado":    ActionStatus,
}

// Command is a parsed operator reply: an action keyword, the document
// number it targets, and an optional free-text remainder.
type Command struct {
	Action Action
	Number string
	Detail string
}

// ErrNotCommand marks text that does not start with a known action keyword.
var ErrNotCommand = errors.New("not an operator command")

// ErrMissingNumber marks a recognized action without a document number.
var ErrMissingNumber = errors.New("command is missing a document number")

// ParseCommand parses an operator reply into a typed command. Parsing
// is case-insensitive; the document number is normalized to upper case.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return Command{}, ErrNotCommand
	}

	action, ok := actionAliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, ErrNotCommand
	}

	cmd := Command{Action: action}
	if action == ActionStatus {
		return cmd, nil
	}
	if len(fields) < 2 {
		return Command{}, ErrMissingNumber
	}
	cmd.Number = strings.ToUpper(fields[1])
	if len(fields) > 2 {
		cmd.Detail = strings.Join(fields[2:], " ")
	}
	return cmd, nil
}
