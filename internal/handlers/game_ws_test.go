package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/Luckmuc/TicTacToe/internal/hub"
	"github.com/Luckmuc/TicTacToe/internal/rules"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResults struct {
	results []game.SeriesResult
	asked   atomic.Int64
}

func (f *fakeResults) Recent(_ context.Context, n int64) ([]game.SeriesResult, error) {
	f.asked.Store(n)
	return f.results, nil
}

func newTestServer(t *testing.T, results ResultReader) (*GameServer, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	h := hub.New(64, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	cfg := game.DefaultConfig()
	cfg.BotDelay = 10 * time.Millisecond
	cfg.SeriesDelay = 10 * time.Millisecond
	reg := game.NewRegistry(cfg, h, logger)

	gs := NewGameServer(h, reg, logger)
	gs.Results = results
	srv := httptest.NewServer(gs.Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return gs, srv
}

func dial(t *testing.T, srv *httptest.Server, subprotocols ...string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: subprotocols})
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func send(t *testing.T, c *websocket.Conn, ev game.EventType, data any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, c, Envelope[any]{Type: ev, Data: data}))
}

// expect reads frames until one of type ev arrives and decodes its data.
func expect[T any](t *testing.T, c *websocket.Conn, ev game.EventType) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var env Envelope[json.RawMessage]
		require.NoError(t, wsjson.Read(ctx, c, &env), "waiting for %s", ev)
		if env.Type != ev {
			continue
		}
		var out T
		if len(env.Data) > 0 {
			require.NoError(t, json.Unmarshal(env.Data, &out))
		}
		return out
	}
}

func TestPingPong(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv)

	send(t, c, game.EventPing, nil)
	expect[json.RawMessage](t, c, game.EventPong)
}

func TestBotGameOverWebsocket(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv, Subprotocol)
	assert.Equal(t, Subprotocol, c.Subprotocol())

	send(t, c, game.EventRegister, "  alice  ")
	reg := expect[game.RegisteredPayload](t, c, game.EventRegistered)
	assert.Equal(t, "alice", reg.Name)

	send(t, c, game.EventPlayBot, nil)
	start := expect[game.GameStartPayload](t, c, game.EventGameStart)
	assert.Equal(t, game.KindBot, start.Mode)
	assert.Equal(t, game.BotName, start.OpponentUsername)

	if start.Symbol == rules.O {
		expect[game.MoveMadePayload](t, c, game.EventMoveMade)
	}
	// the bot opens in the center, so a corner is always free here
	send(t, c, game.EventMakeMove, map[string]any{"gameId": start.GameID, "position": 0})
	move := expect[game.MoveMadePayload](t, c, game.EventMoveMade)
	assert.Equal(t, start.Symbol, move.Symbol)

	bot := expect[game.MoveMadePayload](t, c, game.EventMoveMade)
	assert.NotEqual(t, start.Symbol, bot.Symbol)
}

func TestLobbyFlowOverWebsocket(t *testing.T) {
	_, srv := newTestServer(t, nil)
	a, b := dial(t, srv), dial(t, srv)

	send(t, a, game.EventRegister, map[string]string{"username": "alice"})
	expect[game.RegisteredPayload](t, a, game.EventRegistered)
	send(t, b, game.EventRegister, "bob")
	expect[game.RegisteredPayload](t, b, game.EventRegistered)

	send(t, a, game.EventSearchMatch, nil)
	expect[json.RawMessage](t, a, game.EventSearching)
	send(t, b, game.EventSearchMatch, nil)

	joinedA := expect[game.LobbyJoinedPayload](t, a, game.EventLobbyJoined)
	joinedB := expect[game.LobbyJoinedPayload](t, b, game.EventLobbyJoined)
	assert.Equal(t, joinedA.LobbyID, joinedB.LobbyID)
	assert.True(t, joinedA.IsPlayer1)
	assert.Equal(t, "bob", joinedA.Opponent)

	send(t, a, game.EventSetReady, map[string]any{"lobbyId": joinedA.LobbyID, "ready": true})
	send(t, b, game.EventSetReady, map[string]any{"lobbyId": joinedA.LobbyID, "ready": true})

	startA := expect[game.GameStartPayload](t, a, game.EventGameStart)
	startB := expect[game.GameStartPayload](t, b, game.EventGameStart)
	require.Equal(t, startA.GameID, startB.GameID)

	x, o := a, b
	if startB.Symbol == rules.X {
		x, o = b, a
	}
	moves := []struct {
		c    *websocket.Conn
		cell int
	}{{x, 0}, {o, 3}, {x, 1}, {o, 4}, {x, 2}}
	for _, m := range moves {
		send(t, m.c, game.EventMakeMove, map[string]any{"gameId": startA.GameID, "position": m.cell})
		for _, c := range []*websocket.Conn{a, b} {
			move := expect[game.MoveMadePayload](t, c, game.EventMoveMade)
			require.Equal(t, m.cell, move.Position)
		}
	}

	end := expect[game.GameEndPayload](t, o, game.EventGameEnd)
	require.NotNil(t, end.Winner)
	assert.Equal(t, rules.X, *end.Winner)
	assert.Equal(t, &rules.Line{0, 1, 2}, end.WinningLine)
}

func TestDisconnectNotifiesLobbyPartner(t *testing.T) {
	_, srv := newTestServer(t, nil)
	a, b := dial(t, srv), dial(t, srv)
	send(t, a, game.EventRegister, "alice")
	send(t, b, game.EventRegister, "bob")
	expect[game.RegisteredPayload](t, a, game.EventRegistered)
	expect[game.RegisteredPayload](t, b, game.EventRegistered)

	send(t, a, game.EventSearchMatch, nil)
	expect[json.RawMessage](t, a, game.EventSearching)
	send(t, b, game.EventSearchMatch, nil)
	expect[game.LobbyJoinedPayload](t, b, game.EventLobbyJoined)

	require.NoError(t, a.Close(websocket.StatusNormalClosure, "bye"))
	expect[json.RawMessage](t, b, game.EventOpponentLeftLobby)
}

func TestBadSubprotocolIsClosed(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv, "chat")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	assert.Equal(t, BadSubprotocolError, websocket.CloseStatus(err))
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t, nil)
	c := dial(t, srv)
	send(t, c, game.EventRegister, "alice")
	expect[game.RegisteredPayload](t, c, game.EventRegistered)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string     `json:"status"`
		Stats  game.Stats `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Stats.Participants)
}

func TestRecentResultsDisabled(t *testing.T) {
	_, srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/results/recent")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecentResults(t *testing.T) {
	results := &fakeResults{results: []game.SeriesResult{{RoleAName: "alice", RoleBName: "bob"}}}
	_, srv := newTestServer(t, results)

	resp, err := http.Get(srv.URL + "/results/recent?limit=500")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, maxRecentLimit, results.asked.Load())

	var got []game.SeriesResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].RoleAName)

	bad, err := http.Get(srv.URL + "/results/recent?limit=zero")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
