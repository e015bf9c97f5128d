// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game handlers. These give the
// client more specific reasons for closure than the standard codes.
const (
	BadSubprotocolError   websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError websocket.StatusCode = 3001 // Provided auth token was invalid or expired.
	InvalidGameIDError    websocket.StatusCode = 3002 // Target game id in the WS URL was malformed or unknown.
)
