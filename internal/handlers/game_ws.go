// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/Luckmuc/TicTacToe/internal/middleware"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// WSHandler upgrades the connection, gives it a fresh participant id and pumps
// frames between the socket and the dispatch loop until either side goes away.
// Closing the socket is the disconnect.
func WSHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.CloseNow()

		if len(r.Header.Values("Sec-WebSocket-Protocol")) > 0 && c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the tictactoe subprotocol")
			return
		}

		client := newClient(r.RemoteAddr, gs.OutBuffer, gs.Logger)
		middleware.LogWebSocketConnect(gs.Logger, client.ID, client.Remote)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, c, client, gs.PingInterval)
		go func() {
			select {
			case <-gs.Hub.Done():
				c.Close(ServerShutdownError, "server shutting down")
			case <-ctx.Done():
			}
		}()

		err = readPump(ctx, c, client, gs)

		gs.Hub.Post(func() { gs.Registry.Remove(client.ID) })
		middleware.LogWebSocketDisconnect(gs.Logger, client.ID, client.Remote, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump decodes inbound frames until the connection fails. A clean close
// returns nil.
func readPump(ctx context.Context, c *websocket.Conn, client *Client, gs *GameServer) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			client.logger.Warnf("Received non-text message type %d. Ignoring.", typ)
			continue
		}

		var env Envelope[json.RawMessage]
		if err := json.Unmarshal(data, &env); err != nil {
			client.logger.WithError(err).Debug("invalid JSON frame ignored")
			continue
		}
		handleMessage(gs, client, env)
	}
}

// writePump drains the client's queue onto the socket and keeps it alive with
// pings.
func writePump(ctx context.Context, c *websocket.Conn, client *Client, pingEvery time.Duration) {
	if pingEvery <= 0 {
		pingEvery = 30 * time.Second
	}
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-client.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, c, msg)
			cancel()
			if err != nil {
				client.logger.WithError(err).Warn("failed to write to websocket")
				c.CloseNow()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				client.logger.WithError(err).Warn("failed to ping, assuming disconnect")
				c.CloseNow()
				return
			}
		}
	}
}

// handleMessage decodes the payload for env.Type and posts the matching
// registry call onto the dispatch loop. Malformed payloads are dropped.
func handleMessage(gs *GameServer, client *Client, env Envelope[json.RawMessage]) {
	reg, id := gs.Registry, client.ID
	log := client.logger.WithField("event", env.Type)

	decode := func(v any) bool {
		if err := json.Unmarshal(env.Data, v); err != nil {
			log.WithError(err).Debug("malformed payload ignored")
			return false
		}
		return true
	}

	switch env.Type {
	case game.EventPing:
		client.Send(game.EventPong, nil)

	case game.EventRegister:
		var name registerData
		if !decode(&name) {
			return
		}
		username, ok := game.NormalizeName(string(name))
		if !ok {
			log.Debug("empty username rejected")
			return
		}
		gs.Hub.Post(func() { reg.Register(game.Participant{ID: id, Name: username, Sender: client}) })

	case game.EventPlayBot:
		opts, ok := optionalOptions(env.Data, log)
		if !ok {
			return
		}
		gs.Hub.Post(func() { reg.PlayBot(id, opts) })

	case game.EventSearchMatch:
		opts, ok := optionalOptions(env.Data, log)
		if !ok {
			return
		}
		gs.Hub.Post(func() { reg.SearchMatch(id, opts) })

	case game.EventCancelSearch:
		gs.Hub.Post(func() { reg.CancelSearch(id) })

	case game.EventUpdateSettings:
		var msg settingsData
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.UpdateSettings(msg.LobbyID, id, msg.Settings) })

	case game.EventSetReady:
		var msg readyData
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.SetReady(msg.LobbyID, id, msg.Ready) })

	case game.EventLeaveLobby:
		var msg lobbyRef
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.LeaveLobby(msg.LobbyID, id) })

	case game.EventMakeMove:
		var msg moveData
		if !decode(&msg) || msg.Position == nil {
			return
		}
		gs.Hub.Post(func() { reg.SubmitMove(msg.GameID, id, *msg.Position) })

	case game.EventLeaveGame:
		var msg gameRef
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.LeaveGame(msg.GameID, id) })

	case game.EventSearchParkour:
		gs.Hub.Post(func() { reg.SearchParkour(id) })

	case game.EventCancelParkourSearch:
		gs.Hub.Post(func() { reg.CancelParkourSearch(id) })

	case game.EventParkourMove:
		var msg parkourMoveData
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.ParkourMove(msg.GameID, id, msg.ParkourMove) })

	case game.EventParkourLevelComplete:
		var msg gameRef
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.ParkourLevelComplete(msg.GameID, id) })

	case game.EventLeaveParkour:
		var msg gameRef
		if !decode(&msg) {
			return
		}
		gs.Hub.Post(func() { reg.LeaveParkour(msg.GameID, id) })

	default:
		log.Debug("unknown event ignored")
	}
}

// optionalOptions decodes series options; absent or null data means none.
func optionalOptions(raw json.RawMessage, log logrus.FieldLogger) (*game.Options, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	var opts game.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		log.WithError(err).Debug("malformed options ignored")
		return nil, false
	}
	return &opts, true
}
