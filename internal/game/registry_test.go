package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotentAndRenames(t *testing.T) {
	h := newHarness(t, nil)
	id := h.join("alice")

	h.reg.Register(Participant{ID: id, Name: "alicia", Sender: h.to(id)})

	p, ok := h.reg.Participant(id)
	require.True(t, ok)
	assert.Equal(t, "alicia", p.Name)
	assert.Equal(t, 1, h.reg.Stats().Participants)
	ev, _ := h.to(id).last(EventRegistered)
	assert.Equal(t, RegisteredPayload{ID: id, Name: "alicia"}, ev.Payload)
}

func TestUnregisteredParticipantsAreIgnored(t *testing.T) {
	h := newHarness(t, nil)
	ghost := h.join("ghost")
	h.reg.Remove(ghost)
	h.to(ghost).clear()

	h.reg.SearchMatch(ghost, nil)
	h.reg.PlayBot(ghost, nil)
	h.reg.SearchParkour(ghost)

	assert.Empty(t, h.to(ghost).events)
	assert.Equal(t, Stats{}, h.reg.Stats())
}

func TestDisconnectNotifiesOpponentExactlyOnce(t *testing.T) {
	h := newHarness(t, nil)
	a, b, s := startPair(t, h, &Options{MatchCount: 3, Competitive: true})
	play(h, s, a, b, 0, 3, 1, 4, 2)

	h.reg.Remove(a)
	h.reg.Remove(a)
	h.sched.Advance(10 * time.Second)

	assert.Equal(t, 1, h.to(b).count(EventOpponentDisconnected))
	assert.Zero(t, h.to(b).count(EventNextMatch), "pending next match is cancelled")
	_, live := h.reg.Session(s.ID)
	assert.False(t, live)
	_, still := h.reg.Participant(a)
	assert.False(t, still)

	assert.Eventually(t, func() bool { return len(h.results.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	res := h.results.snapshot()[0]
	assert.Equal(t, ReasonDisconnect, res.Reason)
	assert.Equal(t, 1, res.MatchesPlayed)
	assert.Equal(t, Scores{RoleA: 1}, res.Scores)
}

func TestDisconnectCascadesOverEveryHolding(t *testing.T) {
	h := newHarness(t, nil)
	a, b, _ := openTestLobby(t, h)
	c := h.join("carol")
	h.reg.SearchParkour(a)
	h.reg.SearchParkour(c)

	h.reg.Remove(a)

	assert.Equal(t, 1, h.to(b).count(EventOpponentLeftLobby))
	assert.Equal(t, 1, h.to(c).count(EventParkourOpponentLeft))
	assert.Equal(t, Stats{Participants: 2}, h.reg.Stats())
}

func TestDisconnectWhileSearchingDropsEntry(t *testing.T) {
	h := newHarness(t, nil)
	a, b := h.join("alice"), h.join("bob")
	h.reg.SearchMatch(a, nil)

	h.reg.Remove(a)
	h.reg.SearchMatch(b, nil)

	assert.Zero(t, h.to(b).count(EventLobbyJoined))
	assert.Equal(t, 1, h.reg.Stats().Searching)
}

func TestBotSessionEndsSilentlyOnDisconnect(t *testing.T) {
	h := newHarness(t, nil)
	human := h.join("alice")
	h.reg.PlayBot(human, nil)
	start := h.gameStart(t, human)

	h.reg.Remove(human)

	_, live := h.reg.Session(start.GameID)
	assert.False(t, live)
	assert.Zero(t, h.to(human).count(EventOpponentDisconnected))
}

func TestSweepEvictsStaleSearchers(t *testing.T) {
	h := newHarness(t, nil)
	a := h.join("alice")
	h.reg.SearchMatch(a, nil)
	h.reg.StartSweeper()

	h.sched.Advance(4 * time.Minute)
	assert.Zero(t, h.to(a).count(EventSearchCancelled))

	h.sched.Advance(time.Minute)
	ev, ok := h.to(a).last(EventSearchCancelled)
	require.True(t, ok)
	assert.Equal(t, SearchCancelledPayload{Reason: CancelReasonExpired}, ev.Payload)
	assert.Zero(t, h.reg.Stats().Searching)

	h.reg.CancelSearch(a)
	assert.Equal(t, 1, h.to(a).count(EventSearchCancelled), "cancel after eviction is a no-op")

	h.reg.Close()
	assert.Zero(t, h.sched.pending())
}

func TestCancelSearch(t *testing.T) {
	h := newHarness(t, nil)
	a := h.join("alice")
	h.reg.SearchMatch(a, nil)

	h.reg.CancelSearch(a)
	h.reg.CancelSearch(a)

	assert.Equal(t, 1, h.to(a).count(EventSearchCancelled))
	assert.Zero(t, h.reg.Stats().Searching)
}

func TestPlayBotWhileSearchingCancelsSearch(t *testing.T) {
	h := newHarness(t, nil)
	a := h.join("alice")
	h.reg.SearchMatch(a, nil)

	h.reg.PlayBot(a, nil)

	assert.Equal(t, 1, h.to(a).count(EventSearchCancelled))
	assert.Equal(t, 1, h.to(a).count(EventGameStart))
	assert.Zero(t, h.reg.Stats().Searching)
}

func TestDirectModeSkipsLobby(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.Mode = PairDirect })
	a, b := h.join("alice"), h.join("bob")
	opts := &Options{MatchCount: 2}

	h.reg.SearchMatch(a, opts)
	h.reg.SearchMatch(b, opts)

	assert.Zero(t, h.to(a).count(EventLobbyJoined))
	start := h.gameStart(t, a)
	assert.Equal(t, RoleA, start.Role, "the longest waiter is role A")
	assert.Equal(t, 2, start.MatchCount)
	assert.Equal(t, Stats{Participants: 2, Sessions: 1}, h.reg.Stats())
}
