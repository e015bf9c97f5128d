package models

import "github.com/google/uuid"

// UserState tracks a player's standing within one game.
type UserState string

const (
	StatePlaying UserState = "PLAYING"
	StateWon     UserState = "WON"
	StateLost    UserState = "LOST"
)

// Direction is the sense of turn rotation around the table.
type Direction string

const (
	Clockwise        Direction = "CLOCKWISE"
	CounterClockwise Direction = "COUNTERCLOCKWISE"
)

// Step returns the seat increment one turn advances by in this direction.
func (d Direction) Step() int {
	if d == CounterClockwise {
		return -1
	}
	return 1
}

// Flip returns the opposite rotation.
func (d Direction) Flip() Direction {
	if d == CounterClockwise {
		return Clockwise
	}
	return CounterClockwise
}

// Game is the persisted row for one game instance. CurrentSeat is the
// seat_order of the player who acts next; WildColor is the color declared for
// the most recently played wild card and is meaningful only while the top of
// the discard pile is BLACK.
type Game struct {
	ID          uuid.UUID  `json:"game_id"`
	Started     bool       `json:"started"`
	Ended       bool       `json:"ended"`
	CurrentSeat int        `json:"current_seat"`
	Direction   Direction  `json:"direction"`
	WildColor   *CardColor `json:"chosen_wildcard_color,omitempty"`
}

// GameUser is one player's membership in a game. SeatOrder equals join order
// until the game starts, at which point a random rotation offset is applied.
// Exactly one player per game has IsHost set, fixed at creation.
type GameUser struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	SeatOrder int       `json:"seat_order"`
	State     UserState `json:"state"`
	IsHost    bool      `json:"is_host"`
}

// GameState is the full, unsanitized truth for one game, assembled
// transactionally from the game, game_users and cards rows. It is never sent
// to a client as-is; see game.Sanitize.
type GameState struct {
	Started   bool        `json:"started"`
	Ended     bool        `json:"ended"`
	WildColor *CardColor  `json:"chosen_wildcard_color,omitempty"`
	Users     []*GameUser `json:"users"`
	Cards     []*Card     `json:"cards"`
}
