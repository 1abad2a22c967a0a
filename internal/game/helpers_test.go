package game

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires tasks only when the test advances its clock.
type manualScheduler struct {
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *manualScheduler) Now() time.Time { return m.now }

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.seq++
	t := &manualTask{at: m.now.Add(d), seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward, running due tasks in order. Tasks scheduled
// by a callback run too if they fall inside the window.
func (m *manualScheduler) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		var pending []*manualTask
		for _, t := range m.tasks {
			if !t.stopped && !t.fired && !t.at.After(target) {
				pending = append(pending, t)
			}
		}
		if len(pending) == 0 {
			break
		}
		sort.Slice(pending, func(i, j int) bool {
			if pending[i].at.Equal(pending[j].at) {
				return pending[i].seq < pending[j].seq
			}
			return pending[i].at.Before(pending[j].at)
		})
		next := pending[0]
		m.now = next.at
		next.fired = true
		next.f()
	}
	m.now = target
}

func (m *manualScheduler) pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sentEvent struct {
	Type    EventType
	Payload any
}

// recordingSender collects events instead of writing them to a socket.
type recordingSender struct {
	events []sentEvent
}

func (s *recordingSender) Send(ev EventType, payload any) {
	s.events = append(s.events, sentEvent{Type: ev, Payload: payload})
}

func (s *recordingSender) ofType(ev EventType) []sentEvent {
	var out []sentEvent
	for _, e := range s.events {
		if e.Type == ev {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSender) count(ev EventType) int { return len(s.ofType(ev)) }

func (s *recordingSender) last(ev EventType) (sentEvent, bool) {
	evs := s.ofType(ev)
	if len(evs) == 0 {
		return sentEvent{}, false
	}
	return evs[len(evs)-1], true
}

func (s *recordingSender) clear() { s.events = nil }

// fakeRecorder collects results; RecordResult runs on its own goroutine.
type fakeRecorder struct {
	mu      sync.Mutex
	results []SeriesResult
}

func (f *fakeRecorder) RecordResult(_ context.Context, res SeriesResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	return nil
}

func (f *fakeRecorder) snapshot() []SeriesResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SeriesResult(nil), f.results...)
}

type harness struct {
	reg     *Registry
	sched   *manualScheduler
	senders map[uuid.UUID]*recordingSender
	results *fakeRecorder
}

// newHarness builds a registry whose coin always gives role A the X mark.
func newHarness(t *testing.T, tweak func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	logger, _ := test.NewNullLogger()
	sched := newManualScheduler()
	reg := NewRegistry(cfg, sched, logger)
	reg.Now = sched.Now
	reg.Coin = func() bool { return true }
	results := &fakeRecorder{}
	reg.Recorder = results
	return &harness{reg: reg, sched: sched, senders: make(map[uuid.UUID]*recordingSender), results: results}
}

func (h *harness) join(name string) uuid.UUID {
	id := uuid.New()
	s := &recordingSender{}
	h.senders[id] = s
	h.reg.Register(Participant{ID: id, Name: name, Sender: s})
	return id
}

func (h *harness) to(id uuid.UUID) *recordingSender { return h.senders[id] }

// gameStart returns the gameStart payload id received last.
func (h *harness) gameStart(t *testing.T, id uuid.UUID) GameStartPayload {
	t.Helper()
	ev, ok := h.to(id).last(EventGameStart)
	require.True(t, ok, "no gameStart for %s", id)
	return ev.Payload.(GameStartPayload)
}

// startPair pairs two fresh participants straight into a session.
func startPair(t *testing.T, h *harness, opts *Options) (a, b uuid.UUID, s *Session) {
	t.Helper()
	h.reg.cfg.Mode = PairDirect
	a = h.join("alice")
	b = h.join("bob")
	h.reg.SearchMatch(a, opts)
	h.reg.SearchMatch(b, opts)

	start := h.gameStart(t, a)
	s, ok := h.reg.Session(start.GameID)
	require.True(t, ok)
	return a, b, s
}

// play submits alternating moves starting with whoever holds X.
func play(h *harness, s *Session, x, o uuid.UUID, cells ...int) {
	for i, c := range cells {
		if i%2 == 0 {
			h.reg.SubmitMove(s.ID, x, c)
		} else {
			h.reg.SubmitMove(s.ID, o, c)
		}
	}
}
