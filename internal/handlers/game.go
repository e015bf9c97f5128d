// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/models"
)

// CreateGameHandler creates a new game with the caller as host and returns
// its id. The caller joins their own game automatically.
func CreateGameHandler(logger *logrus.Logger, users UserStore, mgr *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID, err := authenticateRequest(r)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		u, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}

		gameID, err := mgr.CreateGame(r.Context(), u.ID, u.Username)
		if err != nil {
			logger.Errorf("failed to create game: %v", err)
			http.Error(w, "error creating game", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"game_id": gameID})
	}
}

type playRequest struct {
	CardID uuid.UUID `json:"card_id"`
	Color  string    `json:"color,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// GameHandler routes /game/{game_id} and /game/{game_id}/{action}.
//
//	POST   /game/{id}/join
//	POST   /game/{id}/leave
//	POST   /game/{id}/start
//	POST   /game/{id}/play   {"card_id": "...", "color": "RED"}
//	POST   /game/{id}/chat   {"message": "..."}
//	DELETE /game/{id}        host only
func GameHandler(logger *logrus.Logger, users UserStore, mgr *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/"), "/")
		if len(parts) < 1 || parts[0] == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(parts[0])
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		userID, err := authenticateRequest(r)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		s := mgr.Session(gameID)

		if r.Method == http.MethodDelete && len(parts) == 1 {
			host, err := s.IsHost(r.Context(), userID)
			if err != nil {
				writeGameError(w, err)
				return
			}
			if !host {
				writeGameError(w, game.ErrNotHost)
				return
			}
			if err := s.Delete(r.Context()); err != nil {
				writeGameError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method != http.MethodPost || len(parts) < 2 {
			http.Error(w, "unsupported route", http.StatusNotFound)
			return
		}

		switch parts[1] {
		case "join":
			u, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				http.Error(w, "user not found", http.StatusForbidden)
				return
			}
			err = s.Join(r.Context(), u.ID, u.Username)
			respond(w, err)
		case "leave":
			respond(w, s.Leave(r.Context(), userID))
		case "start":
			respond(w, s.Start(r.Context(), userID))
		case "play":
			var req playRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			var chosen *models.CardColor
			if req.Color != "" {
				c := models.CardColor(req.Color)
				chosen = &c
			}
			respond(w, s.PlayCard(r.Context(), userID, req.CardID, chosen))
		case "chat":
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid payload", http.StatusBadRequest)
				return
			}
			respond(w, s.Chat(r.Context(), userID, req.Message))
		default:
			http.Error(w, "unsupported route", http.StatusNotFound)
		}
	}
}

func respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
