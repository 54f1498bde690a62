// Package notify delivers trade alerts to the operator and relays
// their commands back to the engine.
package notify

import (
	"context"
	"strings"
)

// Actions an operator can send in reply to an alert.
const (
	ActionHold      = "hold"
	ActionExit      = "exit"
	ActionSmartStop = "smart-stop"
	ActionStatus    = "status"
)

// Command is an operator instruction parsed from a chat message.
type Command struct {
	Action string
	Ticker string
}

// Notifier delivers messages to the operator.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }

// ParseCommand interprets an operator message. Recognized forms are
// "/hold TICKER", "/exit TICKER", "/smart-stop TICKER" and "/status"
// with an optional ticker. The leading slash and a "@botname" suffix
// are both tolerated.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}

	action := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.Index(action, "@"); i >= 0 {
		action = action[:i]
	}
	if action == "smartstop" {
		action = ActionSmartStop
	}

	switch action {
	case ActionHold, ActionExit, ActionSmartStop, ActionStatus:
	default:
		return Command{}, false
	}

	cmd := Command{Action: action}
	if len(fields) > 1 {
		cmd.Ticker = strings.ToUpper(fields[1])
	}
	if cmd.Action != ActionStatus && cmd.Ticker == "" {
		return Command{}, false
	}
	return cmd, true
}
