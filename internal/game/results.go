package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonCompleted  Reason = "completed"
	ReasonDisconnect Reason = "disconnect"
	ReasonLeft       Reason = "left"
)

// SeriesResult is the summary written when a session ends.
type SeriesResult struct {
	SessionID     uuid.UUID `json:"sessionId"`
	Kind          Kind      `json:"mode"`
	RoleAName     string    `json:"roleAName"`
	RoleBName     string    `json:"roleBName"`
	Options       Options   `json:"options"`
	Scores        Scores    `json:"scores"`
	MatchesPlayed int       `json:"matchesPlayed"`
	Reason        Reason    `json:"reason"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
}

// Recorder persists finished sessions. It is called off the dispatch loop.
type Recorder interface {
	RecordResult(ctx context.Context, res SeriesResult) error
}

// Recorders fans a result out to several recorders and joins their errors.
type Recorders []Recorder

func (rs Recorders) RecordResult(ctx context.Context, res SeriesResult) error {
	var errs []error
	for _, rec := range rs {
		if err := rec.RecordResult(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordTimeout bounds a single RecordResult call.
const RecordTimeout = 5 * time.Second

func (r *Registry) record(s *Session, reason Reason) {
	if r.Recorder == nil {
		return
	}
	res := SeriesResult{
		SessionID:     s.ID,
		Kind:          s.Kind,
		RoleAName:     s.seatName(0),
		RoleBName:     s.seatName(1),
		Options:       s.Options,
		Scores:        s.Scores,
		MatchesPlayed: s.played,
		Reason:        reason,
		StartedAt:     s.StartedAt,
		EndedAt:       r.Now(),
	}
	rec, log := r.Recorder, r.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), RecordTimeout)
		defer cancel()
		if err := rec.RecordResult(ctx, res); err != nil {
			log.WithFields(logrus.Fields{"session": res.SessionID, "error": err}).Warn("failed to record result")
		}
	}()
}
