// internal/game/parkour.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ParkourSession is a two-player co-op run through a fixed number of levels.
type ParkourSession struct {
	ID        uuid.UUID
	Players   [2]uuid.UUID
	Level     int
	StartedAt time.Time
}

func (p *ParkourSession) member(id uuid.UUID) int {
	for i, m := range p.Players {
		if m == id {
			return i
		}
	}
	return -1
}

// SearchParkour queues id for a co-op partner; any two waiting participants pair.
func (r *Registry) SearchParkour(id uuid.UUID) {
	if _, ok := r.participants[id]; !ok {
		return
	}
	if len(r.parkour.FindByParticipant(id)) > 0 || r.parkourQueue.Contains(id) {
		return
	}
	partner, matched := r.parkourQueue.Enqueue(id, struct{}{}, r.Now())
	if !matched {
		r.send(id, EventParkourSearching, nil)
		return
	}
	r.startParkour(partner.ParticipantID, id)
}

// CancelParkourSearch drops id from the parkour queue.
func (r *Registry) CancelParkourSearch(id uuid.UUID) {
	if r.parkourQueue.Cancel(id) {
		r.send(id, EventParkourSearchCancelled, nil)
	}
}

func (r *Registry) startParkour(first, second uuid.UUID) *ParkourSession {
	p := &ParkourSession{
		ID:        uuid.New(),
		Players:   [2]uuid.UUID{first, second},
		Level:     1,
		StartedAt: r.Now(),
	}
	r.parkour.Add(p)

	r.log.WithFields(logrus.Fields{"parkour": p.ID, "player1": first, "player2": second}).Info("parkour session started")

	for i, id := range p.Players {
		r.send(id, EventParkourGameStart, ParkourGameStartPayload{
			GameID:      p.ID,
			Player1ID:   p.Players[0],
			Player2ID:   p.Players[1],
			Player1Name: r.nameOf(p.Players[0]),
			Player2Name: r.nameOf(p.Players[1]),
			Teammate:    r.nameOf(p.Players[1-i]),
		})
	}
	return p
}

// ParkourMove relays actor's position to the teammate unchanged.
func (r *Registry) ParkourMove(gameID, actor uuid.UUID, move ParkourMove) {
	p, ok := r.parkour.Get(gameID)
	if !ok {
		return
	}
	slot := p.member(actor)
	if slot < 0 {
		return
	}
	r.send(p.Players[1-slot], EventParkourPlayerMove, ParkourPlayerMovePayload{
		PlayerID:    actor,
		ParkourMove: move,
	})
}

// ParkourLevelComplete advances the shared level. Finishing the last level ends
// the session for both members.
func (r *Registry) ParkourLevelComplete(gameID, actor uuid.UUID) {
	p, ok := r.parkour.Get(gameID)
	if !ok || p.member(actor) < 0 {
		return
	}
	p.Level++
	if p.Level > r.cfg.ParkourMaxLevel {
		r.parkour.Delete(p.ID)
		for _, id := range p.Players {
			r.send(id, EventParkourGameComplete, ParkourGameCompletePayload{GameID: p.ID, Levels: r.cfg.ParkourMaxLevel})
		}
		r.log.WithField("parkour", p.ID).Info("parkour session complete")
		return
	}
	for _, id := range p.Players {
		r.send(id, EventParkourNextLevel, ParkourNextLevelPayload{Level: p.Level})
	}
}

// LeaveParkour ends the session and tells the teammate.
func (r *Registry) LeaveParkour(gameID, actor uuid.UUID) {
	p, ok := r.parkour.Get(gameID)
	if !ok || p.member(actor) < 0 {
		return
	}
	r.abandonParkour(p, actor)
}

func (r *Registry) abandonParkour(p *ParkourSession, leaver uuid.UUID) {
	r.parkour.Delete(p.ID)
	for _, id := range p.Players {
		if id != leaver {
			r.send(id, EventParkourOpponentLeft, nil)
		}
	}
}
