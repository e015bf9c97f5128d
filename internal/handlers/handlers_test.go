// internal/handlers/handlers_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unoarcade/uno-service/internal/auth"
	"github.com/unoarcade/uno-service/internal/database"
	"github.com/unoarcade/uno-service/internal/game"
	"github.com/unoarcade/uno-service/internal/handlers"
)

type testServer struct {
	ts  *httptest.Server
	mgr *game.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, auth.Init())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mem := database.NewMemory()
	mgr := game.NewManager(mem, logger, nil)

	mux := http.NewServeMux()
	mux.Handle("/user/create", handlers.CreateUserHandler(logger, mem))
	mux.Handle("/user/login", handlers.LoginHandler(logger, mem))
	mux.Handle("/game/create", handlers.CreateGameHandler(logger, mem, mgr))
	mux.Handle("/game/ws/", handlers.GameWSHandler(logger, mgr))
	mux.Handle("/game/", handlers.GameHandler(logger, mem, mgr))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &testServer{ts: ts, mgr: mgr}
}

// signup registers a user and returns their auth_token cookie value.
func (s *testServer) signup(t *testing.T, email, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email": email, "password": "pw", "username": username,
	})
	resp, err := http.Post(s.ts.URL+"/user/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, _ = json.Marshal(map[string]string{"email": email, "password": "pw"})
	resp, err = http.Post(s.ts.URL+"/user/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			return c.Value
		}
	}
	t.Fatal("no auth_token cookie in login response")
	return ""
}

// do issues an authenticated request and returns status and body.
func (s *testServer) do(t *testing.T, method, path, token string, payload interface{}) (int, string) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Cookie", "auth_token="+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func (s *testServer) createGame(t *testing.T, token string) uuid.UUID {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/game/create", token, nil)
	require.Equal(t, http.StatusCreated, status, body)
	var out struct {
		GameID uuid.UUID `json:"game_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out.GameID
}

func TestUserSignupAndLogin(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "a@b.c", "alice")
	assert.NotEmpty(t, token)

	// Duplicate email is rejected.
	body, _ := json.Marshal(map[string]string{
		"email": "a@b.c", "password": "pw", "username": "alice2",
	})
	resp, err := http.Post(s.ts.URL+"/user/create", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusCreated, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a@b.c", "alice")

	body, _ := json.Marshal(map[string]string{"email": "a@b.c", "password": "nope"})
	resp, err := http.Post(s.ts.URL+"/user/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "h@x.y", "host")
	p2 := s.signup(t, "p2@x.y", "p2")

	gameID := s.createGame(t, host)
	base := "/game/" + gameID.String()

	// Starting alone fails as a rule violation, not a server error.
	status, body := s.do(t, http.MethodPost, base+"/start", host, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "at least 2 players")

	status, _ = s.do(t, http.MethodPost, base+"/join", p2, nil)
	require.Equal(t, http.StatusOK, status)

	// Only the host can start.
	status, _ = s.do(t, http.MethodPost, base+"/start", p2, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodPost, base+"/start", host, nil)
	require.Equal(t, http.StatusOK, status)

	// Chat over HTTP.
	status, _ = s.do(t, http.MethodPost, base+"/chat", p2, map[string]string{"message": "glhf"})
	assert.Equal(t, http.StatusOK, status)

	// Playing a nonexistent card is a rule violation.
	status, _ = s.do(t, http.MethodPost, base+"/play", host, map[string]string{"card_id": uuid.New().String()})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestDeleteRequiresHost(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "h@x.y", "host")
	p2 := s.signup(t, "p2@x.y", "p2")

	gameID := s.createGame(t, host)
	base := "/game/" + gameID.String()

	status, _ := s.do(t, http.MethodPost, base+"/join", p2, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, base, p2, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodDelete, base, host, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Gone for everyone afterwards.
	status, _ = s.do(t, http.MethodPost, base+"/join", p2, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownGameIs404(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "a@b.c", "alice")

	status, _ := s.do(t, http.MethodPost, "/game/"+uuid.New().String()+"/join", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMissingTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/game/create", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestWebSocketReceivesStateAndChat(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "h@x.y", "host")

	gameID := s.createGame(t, host)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + s.ts.URL[len("http"):] + "/game/ws/" + gameID.String()
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"game"},
		HTTPHeader:   http.Header{"Cookie": []string{"auth_token=" + host}},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	// First frame is the personal sanitized snapshot.
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var push struct {
		Type  string `json:"type"`
		State struct {
			Started bool          `json:"started"`
			Cards   []interface{} `json:"cards"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(data, &push))
	assert.Equal(t, "game_state", push.Type)
	assert.False(t, push.State.Started)
	assert.Len(t, push.State.Cards, game.DeckSize)

	// Then the connection announcement.
	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	var ev struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, string(game.EventUserConnected), ev.Type)

	// Chat sent on the socket comes back as a broadcast.
	msg, _ := json.Marshal(map[string]string{"type": "chat", "message": "hello"})
	require.NoError(t, c.Write(ctx, websocket.MessageText, msg))

	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	var chat struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &chat))
	assert.Equal(t, string(game.EventChatMessage), chat.Type)
	assert.Equal(t, "host", chat.Username)
	assert.Equal(t, "hello", chat.Message)
}

func TestWebSocketRejectsNonPlayer(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "h@x.y", "host")
	outsider := s.signup(t, "o@x.y", "outsider")

	gameID := s.createGame(t, host)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + s.ts.URL[len("http"):] + "/game/ws/" + gameID.String()
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"game"},
		HTTPHeader:   http.Header{"Cookie": []string{"auth_token=" + outsider}},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	// The server closes the socket with a policy violation.
	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestWebSocketRuleErrorKeepsConnection(t *testing.T) {
	s := newTestServer(t)
	host := s.signup(t, "h@x.y", "host")
	gameID := s.createGame(t, host)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + s.ts.URL[len("http"):] + "/game/ws/" + gameID.String()
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"game"},
		HTTPHeader:   http.Header{"Cookie": []string{"auth_token=" + host}},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "done")

	// Drain the snapshot and the connect announcement.
	for i := 0; i < 2; i++ {
		_, _, err = c.Read(ctx)
		require.NoError(t, err)
	}

	// Playing before the game starts is refused but the socket stays up.
	msg, _ := json.Marshal(map[string]string{
		"type": "play_card", "card_id": uuid.New().String(),
	})
	require.NoError(t, c.Write(ctx, websocket.MessageText, msg))

	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var ev struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "error", ev.Type)
	assert.Contains(t, ev.Message, "not in progress")
}

func TestGameCreateRequiresPost(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "a@b.c", "alice")

	req, _ := http.NewRequest(http.MethodGet, s.ts.URL+"/game/create", nil)
	req.Header.Set("Cookie", "auth_token="+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
