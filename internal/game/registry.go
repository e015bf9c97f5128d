// internal/game/registry.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 3 * time.Second

// Conn is one live socket bound to a (game, player) pair for its lifetime.
// A player may hold several simultaneous connections.
type Conn struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Username string
	sock     *websocket.Conn
}

// NewConn wraps an accepted websocket for registration with a session.
func NewConn(userID uuid.UUID, username string, sock *websocket.Conn) *Conn {
	return &Conn{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		sock:     sock,
	}
}

// write pushes raw bytes with a bounded deadline. Failures are logged and
// swallowed: a dead socket must never fail the operation that triggered the
// broadcast, nor the delivery to any other connection.
func (c *Conn) write(data []byte, log *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.sock.Write(ctx, websocket.MessageText, data); err != nil {
		log.WithFields(logrus.Fields{
			"conn_id": c.ID,
			"user_id": c.UserID,
		}).Warnf("socket write failed: %v", err)
	}
}

// close terminates the underlying socket.
func (c *Conn) close(code websocket.StatusCode, reason string) {
	_ = c.sock.Close(code, reason)
}

// Registry maps live connections for a single game instance. It is purely
// in-memory, scoped to process uptime, and rebuilt as clients reconnect.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*Conn
}

func newRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*Conn)}
}

func (r *Registry) add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
}

// remove unbinds a connection and returns it, or nil if it was not present.
func (r *Registry) remove(connID uuid.UUID) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.conns[connID]
	delete(r.conns, connID)
	return c
}

// snapshot returns the current connections. Copy taken under lock so writers
// never hold the registry lock during socket I/O.
func (r *Registry) snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// closeAll force-terminates every socket, e.g. when the game is deleted.
func (r *Registry) closeAll(code websocket.StatusCode, reason string) {
	for _, c := range r.snapshot() {
		c.close(code, reason)
	}
	r.mu.Lock()
	r.conns = make(map[uuid.UUID]*Conn)
	r.mu.Unlock()
}
