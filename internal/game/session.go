// internal/game/session.go
package game

import (
	"time"

	"github.com/Luckmuc/TicTacToe/internal/bot"
	"github.com/Luckmuc/TicTacToe/internal/rules"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind distinguishes sessions against the bot from sessions between two people.
type Kind string

const (
	KindBot  Kind = "bot"
	KindPair Kind = "multiplayer"
)

// Role is a fixed position in a session. Scores are credited by role because
// marks are reassigned every match.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

// BotRole is the seat the bot always takes; the human is role A.
const BotRole = RoleB

// BotName is the display name of the bot seat.
const BotName = "Bot"

func roleOf(seat int) Role {
	if seat == 0 {
		return RoleA
	}
	return RoleB
}

func seatIndex(r Role) int {
	if r == RoleA {
		return 0
	}
	return 1
}

// Seat is either a HumanSeat or a BotSeat.
type Seat interface {
	isSeat()
}

// HumanSeat is held by a registered participant. Name is captured when the
// session starts.
type HumanSeat struct {
	ParticipantID uuid.UUID
	Name          string
}

// BotSeat is played by a move selector.
type BotSeat struct {
	Selector bot.Selector
}

func (HumanSeat) isSeat() {}
func (BotSeat) isSeat()   {}

// SessionState tracks where a session is in its match lifecycle.
type SessionState int

const (
	// StateAwaiting waits for the mark in Turn to move.
	StateAwaiting SessionState = iota
	// StateResolved holds a finished match until the series continues or ends.
	StateResolved
	// StateEnded is terminal; the session is no longer in the store.
	StateEnded
)

func (s SessionState) String() string {
	switch s {
	case StateAwaiting:
		return "awaiting"
	case StateResolved:
		return "resolved"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session is the authoritative state of one match or series.
type Session struct {
	ID        uuid.UUID
	Kind      Kind
	Options   Options
	Seats     [2]Seat
	Marks     [2]rules.Mark
	Board     rules.Board
	Turn      rules.Mark
	Match     int // zero-based index of the current match
	Scores    Scores
	State     SessionState
	StartedAt time.Time

	played int

	// gen changes whenever a scheduled task must no longer fire.
	gen   uint64
	timer Timer
}

// seatOf returns the seat index held by a human participant.
func (s *Session) seatOf(id uuid.UUID) (int, bool) {
	for i, seat := range s.Seats {
		if h, ok := seat.(HumanSeat); ok && h.ParticipantID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Session) seatForMark(m rules.Mark) int {
	if s.Marks[0] == m {
		return 0
	}
	return 1
}

func (s *Session) seatName(i int) string {
	switch seat := s.Seats[i].(type) {
	case HumanSeat:
		return seat.Name
	default:
		return BotName
	}
}

func (s *Session) humans() []HumanSeat {
	out := make([]HumanSeat, 0, 2)
	for _, seat := range s.Seats {
		if h, ok := seat.(HumanSeat); ok {
			out = append(out, h)
		}
	}
	return out
}

func (s *Session) stopTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// PlayBot starts a session between id and the bot. A nil opts plays a single
// untracked game.
func (r *Registry) PlayBot(id uuid.UUID, opts *Options) {
	p, ok := r.participants[id]
	if !ok {
		return
	}
	settings, ok := OptionsOrDefault(opts)
	if !ok {
		r.log.WithField("participant", id).Debug("playBot with malformed options ignored")
		return
	}
	if r.inLobbyOrSession(id) {
		r.log.WithField("participant", id).Debug("playBot while busy ignored")
		return
	}
	if r.matchQueue.Cancel(id) {
		r.send(id, EventSearchCancelled, SearchCancelledPayload{})
	}

	var seats [2]Seat
	seats[seatIndex(BotRole)] = BotSeat{Selector: r.Bot}
	seats[1-seatIndex(BotRole)] = HumanSeat{ParticipantID: id, Name: p.Name}
	r.startSession(KindBot, seats, settings)
}

// startSession stores a new session, announces it to every human seat and hands
// the first turn to the bot when it holds X.
func (r *Registry) startSession(kind Kind, seats [2]Seat, opts Options) *Session {
	s := &Session{
		ID:        uuid.New(),
		Kind:      kind,
		Options:   opts,
		Seats:     seats,
		StartedAt: r.Now(),
	}
	r.assignMarks(s)
	r.sessions.Add(s)

	r.log.WithFields(logrus.Fields{
		"session":    s.ID,
		"mode":       kind,
		"matchCount": opts.MatchCount,
	}).Info("session started")

	for i := range s.Seats {
		h, ok := s.Seats[i].(HumanSeat)
		if !ok {
			continue
		}
		r.send(h.ParticipantID, EventGameStart, GameStartPayload{
			GameID:           s.ID,
			Symbol:           s.Marks[i],
			Mode:             kind,
			Opponent:         s.seatName(1 - i),
			OpponentUsername: s.seatName(1 - i),
			YourUsername:     h.Name,
			MatchCount:       opts.MatchCount,
			Competitive:      opts.Competitive,
			Role:             roleOf(i),
			IsPlayer1:        i == 0,
		})
	}
	r.afterTurn(s)
	return s
}

// assignMarks clears the board and flips a coin for who plays X. X always moves
// first.
func (r *Registry) assignMarks(s *Session) {
	s.Board = rules.Board{}
	s.Turn = rules.X
	s.State = StateAwaiting
	if r.Coin() {
		s.Marks = [2]rules.Mark{rules.X, rules.O}
	} else {
		s.Marks = [2]rules.Mark{rules.O, rules.X}
	}
}

// SubmitMove places actor's mark at cell. Unknown sessions, strangers, moves
// out of turn and occupied or out of range cells are ignored.
func (r *Registry) SubmitMove(sessionID, actor uuid.UUID, cell int) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return
	}
	seat, ok := s.seatOf(actor)
	if !ok {
		r.log.WithFields(logrus.Fields{"participant": actor, "session": sessionID}).Debug("move from non-member ignored")
		return
	}
	r.applyMove(s, seat, cell)
}

// applyMove is the single mutation path for human and bot moves alike.
func (r *Registry) applyMove(s *Session, seat, cell int) bool {
	if s.State != StateAwaiting || s.Marks[seat] != s.Turn || !s.Board.Free(cell) {
		return false
	}
	mark := s.Marks[seat]
	s.Board[cell] = mark
	outcome := rules.Evaluate(s.Board)

	r.broadcast(s, EventMoveMade, MoveMadePayload{Position: cell, Symbol: mark, Board: s.Board})

	if outcome.Terminal() {
		r.resolve(s, outcome)
		return true
	}
	s.Turn = s.Turn.Other()
	r.afterTurn(s)
	return true
}

// afterTurn schedules a bot move when the bot holds the turn.
func (r *Registry) afterTurn(s *Session) {
	if _, isBot := s.Seats[s.seatForMark(s.Turn)].(BotSeat); !isBot {
		return
	}
	r.schedule(s, r.cfg.BotDelay, r.botMove)
}

func (r *Registry) botMove(s *Session) {
	if s.State != StateAwaiting {
		return
	}
	seat := s.seatForMark(s.Turn)
	b, ok := s.Seats[seat].(BotSeat)
	if !ok {
		return
	}
	cell, ok := b.Selector.Move(s.Board, s.Turn, s.Turn.Other())
	if !ok {
		return
	}
	if !r.applyMove(s, seat, cell) {
		r.log.WithFields(logrus.Fields{"session": s.ID, "cell": cell}).Warn("bot selected an illegal cell")
	}
}

// schedule runs fn on s after d unless the session is gone or has moved on.
func (r *Registry) schedule(s *Session, d time.Duration, fn func(*Session)) {
	s.stopTimer()
	id, gen := s.ID, s.gen
	s.timer = r.sched.AfterFunc(d, func() {
		cur, ok := r.sessions.Get(id)
		if !ok || cur != s || cur.gen != gen {
			return
		}
		cur.timer = nil
		fn(cur)
	})
}

// resolve scores a finished match and either queues the next one or ends the
// session.
func (r *Registry) resolve(s *Session, outcome rules.Outcome) {
	s.State = StateResolved
	s.played++

	end := GameEndPayload{Draw: outcome.Draw}
	if outcome.Winner != rules.Empty {
		winner := outcome.Winner
		name := s.seatName(s.seatForMark(winner))
		end.Winner = &winner
		end.WinningLine = outcome.WinningLine
		end.WinnerName = &name
	}

	if s.Options.Competitive {
		switch {
		case outcome.Draw:
			s.Scores.Draws++
		case s.seatForMark(outcome.Winner) == 0:
			s.Scores.RoleA++
		default:
			s.Scores.RoleB++
		}
	}

	r.broadcast(s, EventGameEnd, end)

	if !s.Options.Series() {
		r.endSession(s, ReasonCompleted)
		return
	}
	s.Match++
	if s.Match < s.Options.MatchCount {
		r.schedule(s, r.cfg.SeriesDelay, r.nextMatch)
		return
	}
	r.schedule(s, r.cfg.SeriesDelay, r.finishSeries)
}

func (r *Registry) nextMatch(s *Session) {
	if s.State != StateResolved {
		return
	}
	r.assignMarks(s)
	for i := range s.Seats {
		h, ok := s.Seats[i].(HumanSeat)
		if !ok {
			continue
		}
		r.send(h.ParticipantID, EventNextMatch, NextMatchPayload{
			MatchNumber:  s.Match + 1,
			TotalMatches: s.Options.MatchCount,
			Scores:       s.Scores,
			Symbol:       s.Marks[i],
			IsPlayer1:    i == 0,
		})
	}
	r.afterTurn(s)
}

func (r *Registry) finishSeries(s *Session) {
	if s.State != StateResolved {
		return
	}
	r.broadcast(s, EventSeriesEnd, SeriesEndPayload{
		Scores:      s.Scores,
		Player1Name: s.seatName(0),
		Player2Name: s.seatName(1),
	})
	r.endSession(s, ReasonCompleted)
}

// LeaveGame ends the session on actor's request. The other human, if any, is
// told the opponent disconnected.
func (r *Registry) LeaveGame(sessionID, actor uuid.UUID) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return
	}
	if _, ok := s.seatOf(actor); !ok {
		return
	}
	r.abandonSession(s, actor, ReasonLeft)
}

// abandonSession tears s down because leaver is gone.
func (r *Registry) abandonSession(s *Session, leaver uuid.UUID, reason Reason) {
	for _, h := range s.humans() {
		if h.ParticipantID != leaver {
			r.send(h.ParticipantID, EventOpponentDisconnected, OpponentDisconnectedPayload{GameID: s.ID})
		}
	}
	r.endSession(s, reason)
}

// endSession removes s, cancels its pending task and records the result.
func (r *Registry) endSession(s *Session, reason Reason) {
	if s.State == StateEnded {
		return
	}
	s.stopTimer()
	s.State = StateEnded
	r.sessions.Delete(s.ID)

	r.log.WithFields(logrus.Fields{
		"session": s.ID,
		"reason":  reason,
		"scores":  s.Scores,
	}).Info("session ended")

	r.record(s, reason)
}

// broadcast sends the same event to every human seat.
func (r *Registry) broadcast(s *Session, ev EventType, payload any) {
	for _, h := range s.humans() {
		r.send(h.ParticipantID, ev, payload)
	}
}
