// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/Luckmuc/TicTacToe/internal/hub"
	"github.com/Luckmuc/TicTacToe/internal/middleware"
	"github.com/sirupsen/logrus"
)

// ResultReader lists recently finished sessions, newest first.
type ResultReader interface {
	Recent(ctx context.Context, n int64) ([]game.SeriesResult, error)
}

// GameServer ties the websocket endpoint to the dispatch loop and the registry
// it owns.
type GameServer struct {
	Hub      *hub.Hub
	Registry *game.Registry
	Logger   logrus.FieldLogger

	// Results backs /results/recent; nil disables the endpoint.
	Results ResultReader
	// OutBuffer is the per-connection outbound queue length.
	OutBuffer int
	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
}

func NewGameServer(h *hub.Hub, reg *game.Registry, logger logrus.FieldLogger) *GameServer {
	return &GameServer{
		Hub:          h,
		Registry:     reg,
		Logger:       logger,
		OutBuffer:    32,
		PingInterval: 30 * time.Second,
	}
}

// Routes builds the HTTP mux for the server.
func (gs *GameServer) Routes() http.Handler {
	logged := middleware.LogMiddleware(gs.Logger)

	mux := http.NewServeMux()
	mux.Handle("GET /ws", logged(WSHandler(gs)))
	mux.Handle("GET /healthz", logged(HealthHandler(gs)))
	mux.Handle("GET /results/recent", logged(RecentResultsHandler(gs)))
	return mux
}

// HealthHandler reports liveness plus live counts read on the dispatch loop.
func HealthHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var stats game.Stats
		if err := gs.Hub.Call(ctx, func() { stats = gs.Registry.Stats() }); err != nil {
			http.Error(w, "dispatch loop unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{"status": "ok", "stats": stats})
	}
}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// RecentResultsHandler lists finished sessions from the results store.
func RecentResultsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gs.Results == nil {
			http.Error(w, "results are not recorded", http.StatusNotFound)
			return
		}

		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxRecentLimit)
		}

		results, err := gs.Results.Recent(r.Context(), int64(limit))
		if err != nil {
			gs.Logger.WithError(err).Warn("failed to read recent results")
			http.Error(w, "failed to read results", http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []game.SeriesResult{}
		}
		writeJSON(w, results)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
