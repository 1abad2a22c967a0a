// internal/game/lobby.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LobbyState tracks settings negotiation between two matched participants.
type LobbyState int

const (
	LobbyNegotiating LobbyState = iota
	LobbyReadyPending
	LobbyPromoted
	LobbyAbandoned
)

func (s LobbyState) String() string {
	switch s {
	case LobbyNegotiating:
		return "negotiating"
	case LobbyReadyPending:
		return "ready-pending"
	case LobbyPromoted:
		return "promoted"
	case LobbyAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Lobby pairs two participants while they agree on settings. Players[0] is the
// participant that was waiting first and becomes role A.
type Lobby struct {
	ID        uuid.UUID
	Players   [2]uuid.UUID
	Settings  Options
	Ready     [2]bool
	State     LobbyState
	CreatedAt time.Time
}

// member returns the slot of id, or -1.
func (l *Lobby) member(id uuid.UUID) int {
	for i, p := range l.Players {
		if p == id {
			return i
		}
	}
	return -1
}

func (l *Lobby) refreshState() {
	if l.Ready[0] || l.Ready[1] {
		l.State = LobbyReadyPending
	} else {
		l.State = LobbyNegotiating
	}
}

// openLobby creates a lobby for a freshly matched pair and tells both sides.
func (r *Registry) openLobby(first, second uuid.UUID, settings Options) *Lobby {
	l := &Lobby{
		ID:        uuid.New(),
		Players:   [2]uuid.UUID{first, second},
		Settings:  settings,
		State:     LobbyNegotiating,
		CreatedAt: r.Now(),
	}
	r.lobbies.Add(l)

	r.log.WithFields(logrus.Fields{"lobby": l.ID, "player1": first, "player2": second}).Info("lobby opened")

	for i, id := range l.Players {
		r.send(id, EventLobbyJoined, LobbyJoinedPayload{
			LobbyID:      l.ID,
			Role:         roleOf(i),
			IsPlayer1:    i == 0,
			Opponent:     r.nameOf(l.Players[1-i]),
			YourUsername: r.nameOf(id),
			Settings:     l.Settings,
		})
	}
	return l
}

// UpdateSettings replaces the lobby settings and clears both ready flags.
func (r *Registry) UpdateSettings(lobbyID, actor uuid.UUID, settings Options) {
	l, ok := r.lobbies.Get(lobbyID)
	if !ok || l.member(actor) < 0 {
		return
	}
	if !settings.Valid() {
		r.log.WithFields(logrus.Fields{"lobby": lobbyID, "participant": actor}).Debug("malformed lobby settings ignored")
		return
	}
	l.Settings = settings
	l.Ready = [2]bool{}
	l.refreshState()

	r.lobbyBroadcast(l, EventSettingsUpdated, SettingsUpdatedPayload{
		Settings:  settings,
		UpdatedBy: r.nameOf(actor),
	})
}

// SetReady records actor's ready flag. When both sides are ready the lobby is
// promoted to a session.
func (r *Registry) SetReady(lobbyID, actor uuid.UUID, ready bool) {
	l, ok := r.lobbies.Get(lobbyID)
	if !ok {
		return
	}
	slot := l.member(actor)
	if slot < 0 {
		return
	}
	l.Ready[slot] = ready
	l.refreshState()

	r.lobbyBroadcast(l, EventReadyStatusUpdated, ReadyStatusPayload{
		Player1Ready: l.Ready[0],
		Player2Ready: l.Ready[1],
		Player1Name:  r.nameOf(l.Players[0]),
		Player2Name:  r.nameOf(l.Players[1]),
	})

	if l.Ready[0] && l.Ready[1] {
		r.promote(l)
	}
}

func (r *Registry) promote(l *Lobby) {
	l.State = LobbyPromoted
	r.lobbies.Delete(l.ID)

	var seats [2]Seat
	for i, id := range l.Players {
		seats[i] = HumanSeat{ParticipantID: id, Name: r.nameOf(id)}
	}
	r.startSession(KindPair, seats, l.Settings)
}

// LeaveLobby deletes the lobby and tells the other member.
func (r *Registry) LeaveLobby(lobbyID, actor uuid.UUID) {
	l, ok := r.lobbies.Get(lobbyID)
	if !ok || l.member(actor) < 0 {
		return
	}
	r.abandonLobby(l, actor)
}

func (r *Registry) abandonLobby(l *Lobby, leaver uuid.UUID) {
	l.State = LobbyAbandoned
	r.lobbies.Delete(l.ID)
	for _, id := range l.Players {
		if id != leaver {
			r.send(id, EventOpponentLeftLobby, nil)
		}
	}
	r.log.WithFields(logrus.Fields{"lobby": l.ID, "participant": leaver}).Info("lobby abandoned")
}

func (r *Registry) lobbyBroadcast(l *Lobby, ev EventType, payload any) {
	for _, id := range l.Players {
		r.send(id, ev, payload)
	}
}
