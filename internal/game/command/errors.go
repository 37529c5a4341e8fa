package command

import (
	"errors"
	"fmt"
)

// Kind classifies why a command failed.
type Kind int

// Error kinds.
const (
	// KindParse means the line had no valid player name or separator.
	KindParse Kind = iota + 1
	// KindNoTrigger means no verb or action trigger was recognised.
	KindNoTrigger
	// KindAmbiguous means the utterance matched several actions, or mixed
	// a built-in verb with unrelated words.
	KindAmbiguous
	// KindArgument means a built-in verb got the wrong subjects.
	KindArgument
	// KindAvailability means a required subject is not within the player's reach.
	KindAvailability
	// KindCrossPlayer means another player's name appeared in the utterance.
	KindCrossPlayer
)

// String returns a short lowercase label, suitable for metrics attributes.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindNoTrigger:
		return "no_trigger"
	case KindAmbiguous:
		return "ambiguous"
	case KindArgument:
		return "argument"
	case KindAvailability:
		return "availability"
	case KindCrossPlayer:
		return "cross_player"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failed command. The world is never mutated by a command that
// returns an Error.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements error.
func (e *Error) Error() string { return e.Message }

// Errorf builds an Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err if it is, or wraps, an *Error.
//
// Postcondition: Returns (kind, true) for command errors, or (0, false).
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
