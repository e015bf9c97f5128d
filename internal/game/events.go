// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/unoarcade/uno-service/internal/models"
)

// EventType identifies a discrete game notification pushed to clients.
type EventType string

const (
	EventUserConnected    EventType = "USER_CONNECTED"
	EventUserDisconnected EventType = "USER_DISCONNECTED"
	EventPlayerJoined     EventType = "PLAYER_JOINED"
	EventPlayerLeft       EventType = "PLAYER_LEFT"
	EventPlayerForfeit    EventType = "PLAYER_FORFEIT"
	EventDeckShuffled     EventType = "DECK_SHUFFLED"
	EventDealtCard        EventType = "DEALT_CARD"
	EventGameStarted      EventType = "GAME_STARTED"
	EventGameDeleted      EventType = "GAME_DELETED"
	EventGameEnded        EventType = "GAME_ENDED"
	EventCardPlayed       EventType = "CARD_PLAYED"
	EventSkippedTurn      EventType = "SKIPPED_TURN"
	EventReversedTurns    EventType = "REVERSED_TURNS"
	EventChatMessage      EventType = "chat_message"
)

// Event is an opaque notification record broadcast verbatim to every socket
// of a game. Events never carry hidden information: card fields are only set
// once the card is already face-up on the discard pile.
type Event struct {
	Type      EventType        `json:"type"`
	UserID    *uuid.UUID       `json:"user_id,omitempty"`
	Username  string           `json:"username,omitempty"`
	CardColor models.CardColor `json:"card_color,omitempty"`
	CardValue models.CardValue `json:"card_value,omitempty"`
	Message   string           `json:"message,omitempty"`
}

func userEvent(t EventType, userID uuid.UUID) Event {
	return Event{Type: t, UserID: &userID}
}

// statePush is the envelope for full sanitized state snapshots. It rides the
// same socket as events but is keyed "game_state" so clients can tell the two
// channels apart.
type statePush struct {
	Type  string          `json:"type"`
	State *SanitizedState `json:"state"`
}
