// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes. These give more specific reasons for closure
// than the standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client offered subprotocols, none of them ours.
	ServerShutdownError websocket.StatusCode = 3001 // The dispatch loop stopped while the client was connected.
)

// Subprotocol is the optional websocket subprotocol clients may negotiate.
const Subprotocol = "tictactoe"
