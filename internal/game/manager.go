// internal/game/manager.go
package game

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unoarcade/uno-service/internal/models"
)

// Manager holds the process-wide set of live game sessions. A session is
// created on first reference to its game id and evicted when the game row is
// deleted. The sessions map only carries per-process artifacts (socket
// registries); the store stays the single source of truth, so access is a
// cheap map lookup and games never block each other.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	store   Store
	log     *logrus.Logger
	actions ActionLog
}

// NewManager wires a manager over the given store. actions may be nil.
func NewManager(store Store, log *logrus.Logger, actions ActionLog) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		store:    store,
		log:      log,
		actions:  actions,
	}
}

// CreateGame persists a fresh game with its full deck and the creator as
// host, and returns the new game id.
func (m *Manager) CreateGame(ctx context.Context, hostID uuid.UUID, hostName string) (uuid.UUID, error) {
	g := &models.Game{
		ID:        uuid.New(),
		Direction: models.Clockwise,
	}
	host := &models.GameUser{
		UserID:   hostID,
		Username: hostName,
		State:    models.StatePlaying,
		IsHost:   true,
	}
	if err := m.store.CreateGame(ctx, g, host, NewDeck()); err != nil {
		return uuid.Nil, err
	}
	m.log.WithFields(logrus.Fields{"game_id": g.ID, "host": hostID}).Info("game created")
	return g.ID, nil
}

// Session returns the live session for a game id, creating it on first
// reference. The game's existence is only checked when an operation runs, so
// unknown ids surface as ErrGameNotFound from the operation itself.
func (m *Manager) Session(gameID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[gameID]; ok {
		return s
	}
	s := newSession(gameID, m.store, m.log, m.actions)
	s.evict = func() { m.drop(gameID) }
	m.sessions[gameID] = s
	return s
}

func (m *Manager) drop(gameID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, gameID)
}

// Shutdown force-closes every socket of every session, e.g. on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.reg.closeAll(websocket.StatusGoingAway, "server shutting down")
	}
}
