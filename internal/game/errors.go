// internal/game/errors.go
package game

import "errors"

// RuleError is a client-caused validation failure: the request was understood
// but the rules forbid it. The message is safe to display to the player and
// never leaks internal state. Anything else coming out of an operation is an
// infrastructure failure and gets a generic response upstream.
type RuleError struct {
	msg string
}

func (e *RuleError) Error() string { return e.msg }

// IsRuleError reports whether err is (or wraps) a rule violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

var (
	ErrGameNotFound   = &RuleError{"game does not exist"}
	ErrAlreadyStarted = &RuleError{"the game has already started"}
	ErrNotInProgress  = &RuleError{"the game is not in progress"}
	ErrAlreadyJoined  = &RuleError{"you have already joined this game"}
	ErrGameFull       = &RuleError{"the game is full"}
	ErrNotHost        = &RuleError{"only the host can start the game"}
	ErrTooFewPlayers  = &RuleError{"at least 2 players are needed to start"}
	ErrNotInGame      = &RuleError{"you are not a player in this game"}
	ErrNotYourTurn    = &RuleError{"it's not your turn"}
	ErrCardNotInHand  = &RuleError{"that card is not in your hand"}
	ErrIllegalCard    = &RuleError{"that card cannot be played on the current discard"}
	ErrColorRequired  = &RuleError{"a color must be chosen for a wild card"}
	ErrInvalidColor   = &RuleError{"the chosen color is not playable"}
	ErrDeckExhausted  = &RuleError{"no cards left to draw"}
	ErrMessageTooLong = &RuleError{"chat messages are limited to 512 characters"}
	ErrMessageEmpty   = &RuleError{"chat message is empty"}
)
