// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/middleware"
	"github.com/unoarcade/uno-service/internal/models"
)

// GameMessage is the envelope for incoming WebSocket messages. Players can
// also drive these actions over HTTP; the socket exists so they receive
// events and state pushes, but play and chat are accepted on it too.
type GameMessage struct {
	Type string `json:"type"`

	// CardID and Color are used by play_card.
	CardID uuid.UUID `json:"card_id,omitempty"`
	Color  string    `json:"color,omitempty"`

	// Message is used by chat.
	Message string `json:"message,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to a WebSocket for one game.
// It authenticates the user from the auth_token cookie, binds the socket to
// the game session (which verifies membership and sends the initial state),
// and runs the read loop until the client goes away.
func GameWSHandler(logger *logrus.Logger, mgr *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// URL path: /game/ws/{game_id}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing game_id in path (/game/ws/{game_id})", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid game_id format", http.StatusBadRequest)
			return
		}

		userID, err := authenticateRequest(r)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error during handler exit")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		s := mgr.Session(gameID)
		connID, err := s.Connect(r.Context(), userID, c)
		if err != nil {
			logger.Warnf("User %s cannot connect to game %s: %v", userID, gameID, err)
			if errors.Is(err, game.ErrGameNotFound) {
				c.Close(websocket.StatusPolicyViolation, "game not found")
			} else {
				c.Close(websocket.StatusPolicyViolation, "you are not a player in this game")
			}
			return
		}
		defer s.Disconnect(connID)

		readErr := readGameMessages(r.Context(), c, s, userID, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readGameMessages reads client messages until the connection drops, routing
// play and chat actions into the session. Rule violations are reported back
// on the socket without killing the connection.
func readGameMessages(ctx context.Context, c *websocket.Conn, s *game.Session, userID uuid.UUID, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(c, "invalid JSON format")
			continue
		}
		logger.Debugf("Received action '%s' from user %s in game %s", msg.Type, userID, s.ID)

		switch msg.Type {
		case "play_card":
			var chosen *models.CardColor
			if msg.Color != "" {
				col := models.CardColor(msg.Color)
				chosen = &col
			}
			if err := s.PlayCard(ctx, userID, msg.CardID, chosen); err != nil {
				if game.IsRuleError(err) {
					sendWsError(c, err.Error())
				} else {
					logger.Errorf("play_card failed for user %s in game %s: %v", userID, s.ID, err)
					sendWsError(c, "internal server error")
				}
			}
		case "chat":
			if err := s.Chat(ctx, userID, msg.Message); err != nil {
				if game.IsRuleError(err) {
					sendWsError(c, err.Error())
				} else {
					logger.Errorf("chat failed for user %s in game %s: %v", userID, s.ID, err)
					sendWsError(c, "internal server error")
				}
			}
		case "ping":
			sendWsMessage(c, map[string]string{"type": "pong"})
		default:
			sendWsError(c, "unknown action type: "+msg.Type)
		}
	}
}

// sendWsMessage marshals a message and writes it with a timeout. Write
// failures are left for the read loop to detect.
func sendWsMessage(c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("error marshaling WebSocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			logrus.Warnf("error writing WebSocket message: %v", err)
		}
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
