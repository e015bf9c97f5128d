// internal/game/session.go
package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unoarcade/uno-service/internal/models"
)

const (
	// MinPlayers and MaxPlayers bound the player set while the game is open.
	MinPlayers = 2
	MaxPlayers = 4

	// MaxChatLen is the chat message length limit in characters.
	MaxChatLen = 512
)

// ActionLog receives a record of every committed operation, e.g. for the
// replay/audit queue. Implementations must not block game progress.
type ActionLog interface {
	Publish(ctx context.Context, gameID, actorID uuid.UUID, action string, payload map[string]interface{})
}

// Session is the composition root for one active game: it owns the game's
// connection registry and drives every rule-engine operation through the
// store's per-game transaction. A transaction always commits before any
// broadcast is attempted; on a rule violation nothing is persisted and no
// event is emitted.
type Session struct {
	ID uuid.UUID

	store   Store
	reg     *Registry
	log     *logrus.Entry
	actions ActionLog

	// evict removes this session from its manager once the game row is gone.
	evict func()

	// BroadcastFn pushes one event record to every connected socket of this
	// game. Defaults to the registry fan-out; tests swap in a collector.
	BroadcastFn func(ev Event)
}

func newSession(id uuid.UUID, store Store, log *logrus.Logger, actions ActionLog) *Session {
	s := &Session{
		ID:      id,
		store:   store,
		reg:     newRegistry(),
		log:     log.WithField("game_id", id),
		actions: actions,
		evict:   func() {},
	}
	s.BroadcastFn = s.fanout
	return s
}

// fanout marshals an event once and writes it to every live socket,
// isolating write failures per connection.
func (s *Session) fanout(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Errorf("marshal event %s: %v", ev.Type, err)
		return
	}
	for _, c := range s.reg.snapshot() {
		c.write(data, s.log)
	}
}

func (s *Session) broadcast(evs ...Event) {
	for _, ev := range evs {
		s.BroadcastFn(ev)
	}
}

func (s *Session) logAction(ctx context.Context, actorID uuid.UUID, action string, payload map[string]interface{}) {
	if s.actions != nil {
		s.actions.Publish(ctx, s.ID, actorID, action, payload)
	}
}

// Join adds a player to a not-yet-started game.
func (s *Session) Join(ctx context.Context, userID uuid.UUID, username string) error {
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		g, err := tx.Game(ctx)
		if err != nil {
			return err
		}
		if g.Started {
			return ErrAlreadyStarted
		}
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.UserID == userID {
				return ErrAlreadyJoined
			}
		}
		if len(users) >= MaxPlayers {
			return ErrGameFull
		}
		return tx.AddUser(ctx, &models.GameUser{
			UserID:    userID,
			Username:  username,
			SeatOrder: len(users),
			State:     models.StatePlaying,
		})
	})
	if err != nil {
		return err
	}
	s.logAction(ctx, userID, "player_joined", nil)
	s.broadcast(userEvent(EventPlayerJoined, userID))
	s.BroadcastState(ctx)
	return nil
}

// Leave removes a player. Before the game starts the membership row is
// deleted, and the game itself is deleted once the last player is gone.
// After start the player forfeits: they are marked LOST and nothing else
// changes — seats, host and their hand stay as they are.
func (s *Session) Leave(ctx context.Context, userID uuid.UUID) error {
	var deleted, forfeited bool
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		deleted, forfeited = false, false
		g, err := tx.Game(ctx)
		if err != nil {
			return err
		}
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		var me *models.GameUser
		for _, u := range users {
			if u.UserID == userID {
				me = u
			}
		}
		if me == nil {
			return ErrNotInGame
		}
		if g.Started {
			me.State = models.StateLost
			forfeited = true
			return tx.SaveUser(ctx, me)
		}
		if err := tx.RemoveUser(ctx, userID); err != nil {
			return err
		}
		// Re-pack join-order seats so the start rotation stays contiguous.
		seat := 0
		for _, u := range users {
			if u.UserID == userID {
				continue
			}
			if u.SeatOrder != seat {
				u.SeatOrder = seat
				if err := tx.SaveUser(ctx, u); err != nil {
					return err
				}
			}
			seat++
		}
		if seat == 0 {
			deleted = true
			return tx.Destroy(ctx)
		}
		return nil
	})
	if err != nil {
		return err
	}
	switch {
	case deleted:
		s.logAction(ctx, userID, "game_deleted", map[string]interface{}{"reason": "last player left"})
		s.broadcast(Event{Type: EventGameDeleted})
		s.reg.closeAll(websocket.StatusGoingAway, "game deleted")
		s.evict()
	case forfeited:
		s.logAction(ctx, userID, "player_forfeit", nil)
		s.broadcast(userEvent(EventPlayerForfeit, userID))
		s.BroadcastState(ctx)
	default:
		s.logAction(ctx, userID, "player_left", nil)
		s.broadcast(userEvent(EventPlayerLeft, userID))
		s.BroadcastState(ctx)
	}
	return nil
}

// Start begins the game: host-only, needs at least two players. The deck is
// shuffled, every player receives seven cards, and a uniformly random
// rotation offset is applied to the seats so the starting player is random
// while relative join order is preserved.
func (s *Session) Start(ctx context.Context, userID uuid.UUID) error {
	var evs []Event
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		evs = evs[:0]
		g, err := tx.Game(ctx)
		if err != nil {
			return err
		}
		if g.Started {
			return ErrAlreadyStarted
		}
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		var me *models.GameUser
		for _, u := range users {
			if u.UserID == userID {
				me = u
			}
		}
		if me == nil {
			return ErrNotInGame
		}
		if !me.IsHost {
			return ErrNotHost
		}
		if len(users) < MinPlayers {
			return ErrTooFewPlayers
		}

		g.Started = true
		g.CurrentSeat = 0
		g.Direction = models.Clockwise
		if err := tx.SaveGame(ctx, g); err != nil {
			return err
		}

		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		offset := r.Intn(len(users))
		for _, u := range users {
			u.SeatOrder = (u.SeatOrder + offset) % len(users)
			if err := tx.SaveUser(ctx, u); err != nil {
				return err
			}
		}

		if err := shuffleDeck(ctx, tx, g); err != nil {
			return err
		}
		evs = append(evs, Event{Type: EventDeckShuffled})

		for _, u := range users {
			for i := 0; i < HandSize; i++ {
				if _, _, err := dealCard(ctx, tx, g, u.UserID); err != nil {
					return err
				}
				evs = append(evs, userEvent(EventDealtCard, u.UserID))
			}
		}
		evs = append(evs, Event{Type: EventGameStarted})
		return nil
	})
	if err != nil {
		return err
	}
	s.logAction(ctx, userID, "game_started", nil)
	s.broadcast(evs...)
	s.BroadcastState(ctx)
	return nil
}

// IsHost reports whether userID is the game's host.
func (s *Session) IsHost(ctx context.Context, userID uuid.UUID) (bool, error) {
	var host bool
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.UserID == userID {
				host = u.IsHost
				return nil
			}
		}
		return ErrNotInGame
	})
	return host, err
}

// Delete removes the game and all of its rows, then force-terminates every
// live socket. No graceful drain.
func (s *Session) Delete(ctx context.Context) error {
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		return tx.Destroy(ctx)
	})
	if err != nil {
		return err
	}
	s.logAction(ctx, uuid.Nil, "game_deleted", nil)
	s.broadcast(Event{Type: EventGameDeleted})
	s.reg.closeAll(websocket.StatusGoingAway, "game deleted")
	s.evict()
	return nil
}

// Chat relays a message to every connection of the game. The sender must be
// a player; messages are capped at MaxChatLen characters.
func (s *Session) Chat(ctx context.Context, userID uuid.UUID, message string) error {
	if message == "" {
		return ErrMessageEmpty
	}
	if utf8.RuneCountInString(message) > MaxChatLen {
		return ErrMessageTooLong
	}
	var username string
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.UserID == userID {
				username = u.Username
				return nil
			}
		}
		return ErrNotInGame
	})
	if err != nil {
		return err
	}
	s.broadcast(Event{Type: EventChatMessage, Username: username, Message: message})
	return nil
}

// Connect binds an accepted socket to this game for one authenticated
// player, immediately sends them their sanitized snapshot, and announces the
// connection. Returns the connection id to hand back to Disconnect.
func (s *Session) Connect(ctx context.Context, userID uuid.UUID, sock *websocket.Conn) (uuid.UUID, error) {
	var username string
	var st *models.GameState
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		found := false
		for _, u := range users {
			if u.UserID == userID {
				username = u.Username
				found = true
			}
		}
		if !found {
			return ErrNotInGame
		}
		st, err = readState(ctx, tx)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	conn := NewConn(userID, username, sock)
	s.reg.add(conn)

	data, err := json.Marshal(statePush{Type: "game_state", State: Sanitize(st, userID)})
	if err != nil {
		s.log.Errorf("marshal initial state: %v", err)
	} else {
		conn.write(data, s.log)
	}
	s.broadcast(Event{Type: EventUserConnected, UserID: &userID, Username: username})
	return conn.ID, nil
}

// Disconnect unbinds a connection and notifies the remaining ones.
func (s *Session) Disconnect(connID uuid.UUID) {
	c := s.reg.remove(connID)
	if c == nil {
		return
	}
	s.broadcast(Event{Type: EventUserDisconnected, UserID: &c.UserID, Username: c.Username})
}

// BroadcastState reads the committed state once, sanitizes it once per
// distinct connected player, and pushes the result to each of that player's
// sockets.
func (s *Session) BroadcastState(ctx context.Context) {
	conns := s.reg.snapshot()
	if len(conns) == 0 {
		return
	}
	var st *models.GameState
	err := s.store.WithGame(ctx, s.ID, func(tx Tx) error {
		var err error
		st, err = readState(ctx, tx)
		return err
	})
	if err != nil {
		s.log.Warnf("state broadcast read failed: %v", err)
		return
	}

	byUser := make(map[uuid.UUID][]*Conn)
	for _, c := range conns {
		byUser[c.UserID] = append(byUser[c.UserID], c)
	}
	for userID, cs := range byUser {
		data, err := json.Marshal(statePush{Type: "game_state", State: Sanitize(st, userID)})
		if err != nil {
			s.log.Errorf("marshal state for %s: %v", userID, err)
			continue
		}
		for _, c := range cs {
			c.write(data, s.log)
		}
	}
}
