// internal/game/queue.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one participant waiting in a Queue.
type Entry[K comparable] struct {
	ParticipantID uuid.UUID
	Key           K
	EnqueuedAt    time.Time
}

// Queue is a FIFO of waiting participants. Two entries pair only when their
// keys are equal. Queue is not safe for concurrent use; the Registry owns it.
type Queue[K comparable] struct {
	entries    []Entry[K]
	staleAfter time.Duration
}

// NewQueue returns an empty queue whose entries expire after staleAfter.
func NewQueue[K comparable](staleAfter time.Duration) *Queue[K] {
	return &Queue[K]{staleAfter: staleAfter}
}

// Enqueue pairs id with the earliest waiting entry of an equal key, removing and
// returning that entry. Otherwise id is appended and matched is false.
// A participant that is already waiting has its previous entry replaced.
func (q *Queue[K]) Enqueue(id uuid.UUID, key K, now time.Time) (opponent Entry[K], matched bool) {
	q.Cancel(id)
	for i, e := range q.entries {
		if e.Key == key && e.ParticipantID != id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e, true
		}
	}
	q.entries = append(q.entries, Entry[K]{ParticipantID: id, Key: key, EnqueuedAt: now})
	return Entry[K]{}, false
}

// Cancel removes id's entry. It reports whether an entry was removed.
func (q *Queue[K]) Cancel(id uuid.UUID) bool {
	for i, e := range q.entries {
		if e.ParticipantID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether id is waiting.
func (q *Queue[K]) Contains(id uuid.UUID) bool {
	for _, e := range q.entries {
		if e.ParticipantID == id {
			return true
		}
	}
	return false
}

// Len returns the number of waiting entries.
func (q *Queue[K]) Len() int { return len(q.entries) }

// Sweep removes and returns every entry that has waited staleAfter or longer.
func (q *Queue[K]) Sweep(now time.Time) []Entry[K] {
	var expired []Entry[K]
	kept := q.entries[:0]
	for _, e := range q.entries {
		if now.Sub(e.EnqueuedAt) >= q.staleAfter {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(q.entries[len(kept):])
	q.entries = kept
	return expired
}
