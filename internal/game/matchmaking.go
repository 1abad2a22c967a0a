package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SearchMatch queues id for a human opponent with the same options. A nil opts
// searches for a single untracked game.
func (r *Registry) SearchMatch(id uuid.UUID, opts *Options) {
	if _, ok := r.participants[id]; !ok {
		return
	}
	key, ok := OptionsOrDefault(opts)
	if !ok {
		r.log.WithField("participant", id).Debug("searchMatch with malformed options ignored")
		return
	}
	if r.inLobbyOrSession(id) {
		r.log.WithField("participant", id).Debug("searchMatch while busy ignored")
		return
	}

	opponent, matched := r.matchQueue.Enqueue(id, key, r.Now())
	if !matched {
		r.send(id, EventSearching, SearchingPayload{Options: key})
		return
	}

	r.log.WithFields(logrus.Fields{
		"player1": opponent.ParticipantID,
		"player2": id,
		"mode":    r.cfg.Mode,
	}).Info("searchers paired")

	// The participant who waited longest takes the first slot.
	switch r.cfg.Mode {
	case PairDirect:
		var seats [2]Seat
		for i, pid := range [2]uuid.UUID{opponent.ParticipantID, id} {
			seats[i] = HumanSeat{ParticipantID: pid, Name: r.nameOf(pid)}
		}
		r.startSession(KindPair, seats, key)
	default:
		r.openLobby(opponent.ParticipantID, id, key)
	}
}

// CancelSearch drops id from the match queue. Cancelling when not queued does
// nothing.
func (r *Registry) CancelSearch(id uuid.UUID) {
	if r.matchQueue.Cancel(id) {
		r.send(id, EventSearchCancelled, SearchCancelledPayload{})
	}
}
