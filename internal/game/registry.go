// internal/game/registry.go
package game

import (
	"math/rand/v2"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/bot"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PairingMode decides what a matched pair of searchers gets.
type PairingMode string

const (
	// PairLobby opens a lobby where the pair negotiates settings first.
	PairLobby PairingMode = "lobby"
	// PairDirect starts a session straight away with the requested options.
	PairDirect PairingMode = "direct"
)

// Config holds the timing and pairing knobs of a Registry.
type Config struct {
	Mode            PairingMode
	StaleAfter      time.Duration
	SweepEvery      time.Duration
	BotDelay        time.Duration
	SeriesDelay     time.Duration
	ParkourMaxLevel int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Mode:            PairLobby,
		StaleAfter:      5 * time.Minute,
		SweepEvery:      time.Minute,
		BotDelay:        500 * time.Millisecond,
		SeriesDelay:     3 * time.Second,
		ParkourMaxLevel: 3,
	}
}

// Registry owns every participant, queue, lobby and session. All methods must
// be called from the single dispatch loop that also runs Scheduler callbacks.
type Registry struct {
	cfg   Config
	log   logrus.FieldLogger
	sched Scheduler

	// Bot plays the bot seat of every bot session.
	Bot bot.Selector
	// Recorder, if set, receives a summary of every ended session.
	Recorder Recorder
	// Now and Coin are replaceable for deterministic tests.
	Now  func() time.Time
	Coin func() bool

	participants map[uuid.UUID]*Participant
	sessions     *SessionStore
	lobbies      *LobbyStore
	parkour      *ParkourStore
	matchQueue   *Queue[Options]
	parkourQueue *Queue[struct{}]

	sweeper Timer
}

// NewRegistry builds an empty registry.
func NewRegistry(cfg Config, sched Scheduler, logger logrus.FieldLogger) *Registry {
	return &Registry{
		cfg:          cfg,
		log:          logger,
		sched:        sched,
		Bot:          bot.NewHeuristic(nil),
		Now:          time.Now,
		Coin:         func() bool { return rand.IntN(2) == 0 },
		participants: make(map[uuid.UUID]*Participant),
		sessions:     NewSessionStore(),
		lobbies:      NewLobbyStore(),
		parkour:      NewParkourStore(),
		matchQueue:   NewQueue[Options](cfg.StaleAfter),
		parkourQueue: NewQueue[struct{}](cfg.StaleAfter),
	}
}

// Register binds p to its id, replacing any earlier binding for the same id.
func (r *Registry) Register(p Participant) {
	r.participants[p.ID] = &p
	r.log.WithFields(logrus.Fields{"participant": p.ID, "name": p.Name}).Info("participant registered")
	r.send(p.ID, EventRegistered, RegisteredPayload{ID: p.ID, Name: p.Name})
}

// Participant looks up a registered participant.
func (r *Registry) Participant(id uuid.UUID) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// Session looks up a live match session.
func (r *Registry) Session(id uuid.UUID) (*Session, bool) {
	return r.sessions.Get(id)
}

// Lobby looks up an open lobby.
func (r *Registry) Lobby(id uuid.UUID) (*Lobby, bool) {
	return r.lobbies.Get(id)
}

// Parkour looks up a live parkour session.
func (r *Registry) Parkour(id uuid.UUID) (*ParkourSession, bool) {
	return r.parkour.Get(id)
}

// Remove disconnects id: it leaves both queues, abandons its lobbies and tears
// down its sessions, notifying whoever remains, and is then forgotten.
// Removing an unknown id does nothing.
func (r *Registry) Remove(id uuid.UUID) {
	if _, ok := r.participants[id]; !ok {
		return
	}
	r.matchQueue.Cancel(id)
	r.parkourQueue.Cancel(id)

	for _, l := range r.lobbies.FindByParticipant(id) {
		r.abandonLobby(l, id)
	}
	for _, s := range r.sessions.FindByParticipant(id) {
		r.abandonSession(s, id, ReasonDisconnect)
	}
	for _, p := range r.parkour.FindByParticipant(id) {
		r.abandonParkour(p, id)
	}

	delete(r.participants, id)
	r.log.WithField("participant", id).Info("participant removed")
}

// Stats is a point-in-time count of live state.
type Stats struct {
	Participants   int `json:"participants"`
	Searching      int `json:"searching"`
	Lobbies        int `json:"lobbies"`
	Sessions       int `json:"sessions"`
	ParkourWaiting int `json:"parkourWaiting"`
	Parkour        int `json:"parkour"`
}

func (r *Registry) Stats() Stats {
	return Stats{
		Participants:   len(r.participants),
		Searching:      r.matchQueue.Len(),
		Lobbies:        r.lobbies.Len(),
		Sessions:       r.sessions.Len(),
		ParkourWaiting: r.parkourQueue.Len(),
		Parkour:        r.parkour.Len(),
	}
}

// StartSweeper schedules Sweep every SweepEvery until Close.
func (r *Registry) StartSweeper() {
	if r.cfg.SweepEvery <= 0 {
		return
	}
	r.sweeper = r.sched.AfterFunc(r.cfg.SweepEvery, func() {
		r.Sweep()
		if r.sweeper != nil {
			r.StartSweeper()
		}
	})
}

// Sweep evicts stale searchers from both queues and tells them why.
func (r *Registry) Sweep() {
	now := r.Now()
	for _, e := range r.matchQueue.Sweep(now) {
		r.send(e.ParticipantID, EventSearchCancelled, SearchCancelledPayload{Reason: CancelReasonExpired})
	}
	for _, e := range r.parkourQueue.Sweep(now) {
		r.send(e.ParticipantID, EventParkourSearchCancelled, SearchCancelledPayload{Reason: CancelReasonExpired})
	}
}

// Close stops the sweeper and every pending session task.
func (r *Registry) Close() {
	if r.sweeper != nil {
		r.sweeper.Stop()
		r.sweeper = nil
	}
	for _, s := range r.sessions.sessions {
		s.stopTimer()
	}
}

// send delivers to id if it is still registered.
func (r *Registry) send(id uuid.UUID, ev EventType, payload any) {
	p, ok := r.participants[id]
	if !ok || p.Sender == nil {
		return
	}
	p.Sender.Send(ev, payload)
}

func (r *Registry) nameOf(id uuid.UUID) string {
	if p, ok := r.participants[id]; ok {
		return p.Name
	}
	return ""
}

func (r *Registry) inLobbyOrSession(id uuid.UUID) bool {
	return len(r.lobbies.FindByParticipant(id)) > 0 || len(r.sessions.FindByParticipant(id)) > 0
}
