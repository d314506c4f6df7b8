package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Action is the closed set of verbs the bot understands.
type Action int

const (
	ActionNone Action = iota // no command token found in the text
	ActionBlacklist
	ActionWhitelist
	ActionSuggestion
	ActionIgnoreMe
	ActionUnknown // a command token was found but the verb is not recognised
)

// String returns the lowercase verb for logging.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionBlacklist:
		return "blacklist"
	case ActionWhitelist:
		return "whitelist"
	case ActionSuggestion:
		return "suggestion"
	case ActionIgnoreMe:
		return "ignoreme"
	default:
		return "unknown"
	}
}

// Command is a parsed moderator instruction. It is constructed per inbound
// message, consumed by the dispatcher and discarded.
type Command struct {
	Action Action
	// TargetName is the raw community name to the right of the colon,
	// before any existence check. Empty when the verb stood alone.
	TargetName string
}

// ErrMalformedCommand is returned when a command token carries more than one
// colon, which the grammar does not define.
var ErrMalformedCommand = errors.New("malformed command token")

// commandToken matches "!verb" or "!verb:target" at a word boundary that is
// not preceded by another word character.
var commandToken = regexp.MustCompile(`\B!([a-zA-Z]+(?::[a-zA-Z]+)*)\b`)

// ParseCommand extracts the first command token from free text.
//
// No token yields a zero Command with ActionNone. A token whose verb is not
// in the action set yields ActionUnknown. Verb lookup is case-insensitive.
func ParseCommand(text string) (Command, error) {
	m := commandToken.FindStringSubmatch(text)
	if m == nil {
		return Command{Action: ActionNone}, nil
	}

	parts := strings.Split(m[1], ":")
	if len(parts) > 2 {
		return Command{}, ErrMalformedCommand
	}

	cmd := Command{Action: lookupAction(parts[0])}
	if len(parts) == 2 {
		cmd.TargetName = parts[1]
	}
	return cmd, nil
}

func lookupAction(verb string) Action {
	switch strings.ToLower(verb) {
	case "blacklist":
		return ActionBlacklist
	case "whitelist":
		return ActionWhitelist
	case "suggestion":
		return ActionSuggestion
	case "ignoreme":
		return ActionIgnoreMe
	default:
		return ActionUnknown
	}
}
