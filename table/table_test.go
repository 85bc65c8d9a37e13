package table

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-tourney/card"
	"holdem-tourney/holdem"
	"holdem-tourney/holdem/npc"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func testSeats(deciders ...npc.Decider) []Seat {
	out := make([]Seat, len(deciders))
	for i, d := range deciders {
		out[i] = Seat{
			State:   holdem.PlayerState{Seat: uint16(i), Name: d.Name(), Stack: 1000},
			Decider: d,
		}
	}
	return out
}

func testConfig() holdem.Config {
	cfg := holdem.DefaultConfig()
	cfg.Seed = 7
	return cfg
}

func total(players []holdem.PlayerState) int64 {
	var sum int64
	for _, p := range players {
		sum += p.Stack
	}
	return sum
}

// countingBrain returns the same decision forever and counts calls.
type countingBrain struct {
	d     npc.Decision
	calls int
	net   int64
}

func (b *countingBrain) Name() string { return "counting" }

func (b *countingBrain) Decide(holdem.Observation) npc.Decision {
	b.calls++
	return b.d
}

func (b *countingBrain) HandFinished(_ uint16, net int64) { b.net += net }

func TestPlayHand_ScenarioShowdown(t *testing.T) {
	cfg := testConfig()
	cfg.DeckOverride = card.MustParseList("2c As 3d Ah Ad 5s 9c 9h 2s")
	rec := &recorder{}
	c := New(cfg, WithObserver(rec), WithTableID("t1"))

	s, players, err := c.PlayHand(context.Background(),
		testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B")), 0)
	require.NoError(t, err)

	assert.Equal(t, holdem.OutcomeShowdown, s.Outcome)
	assert.Equal(t, []uint16{0}, s.Winners)
	assert.Equal(t, int64(1040), players[0].Stack)
	assert.Equal(t, int64(960), players[1].Stack)

	types := rec.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventHandStarted, types[0])
	assert.Equal(t, EventHandSettled, types[len(types)-1])
	assert.Contains(t, types, EventStreetAdvanced)

	var streets int
	for i, e := range rec.events {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, "t1", e.TableID)
		assert.Equal(t, "t1_r1", e.HandID)
		if e.Type == EventStreetAdvanced {
			streets++
		}
		if !e.Observation.Over {
			for _, p := range e.Observation.Players {
				assert.Nil(t, p.HoleCards, "spectator events hide hole cards")
			}
		}
	}
	assert.Equal(t, 3, streets)
	last := rec.events[len(rec.events)-1]
	require.NotNil(t, last.Settlement)
	p, _ := last.Observation.Player(1)
	assert.Len(t, p.HoleCards, 2, "showdown reveals")
}

func TestPlayHand_AllInRunOutAdvancesEveryStreet(t *testing.T) {
	cfg := testConfig()
	cfg.DeckOverride = card.MustParseList("2c As 3d Ah Ad 5s 9c 9h 2s")
	rec := &recorder{}
	c := New(cfg, WithObserver(rec))

	seats := testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B"))
	// the small blind calls for the rest of its stack
	seats[0].State.Stack = 40
	s, players, err := c.PlayHand(context.Background(), seats, 0)
	require.NoError(t, err)
	assert.Equal(t, holdem.OutcomeShowdown, s.Outcome)
	assert.Equal(t, int64(80), players[0].Stack)
	assert.Equal(t, int64(1040), total(players))

	var got []holdem.Street
	var boards []int
	lastAction := -1
	for i, e := range rec.events {
		switch e.Type {
		case EventActionApplied:
			lastAction = i
		case EventStreetAdvanced:
			require.Greater(t, i, lastAction)
			got = append(got, e.Observation.Street)
			boards = append(boards, len(e.Observation.Board))
			assert.False(t, e.Observation.Over)
			for _, p := range e.Observation.Players {
				assert.Nil(t, p.HoleCards)
			}
		}
	}
	assert.Equal(t, []holdem.Street{holdem.StreetFlop, holdem.StreetTurn, holdem.StreetRiver}, got)
	assert.Equal(t, []int{3, 4, 5}, boards)
	assert.Equal(t, EventHandSettled, rec.events[len(rec.events)-1].Type)
}

func TestStreetViews(t *testing.T) {
	obs := holdem.Observation{
		Seat:    holdem.InvalidSeat,
		Street:  holdem.StreetShowdown,
		Board:   card.MustParseList("Ad 5s 9c 9h 2s"),
		Over:    true,
		Outcome: holdem.OutcomeShowdown,
		Players: []holdem.SeatView{{Seat: 0, HoleCards: card.MustParseList("As Ah")}},
	}
	views := StreetViews(holdem.StreetFlop, obs)
	require.Len(t, views, 2)
	assert.Equal(t, holdem.StreetTurn, views[0].Street)
	assert.Equal(t, card.MustParseList("Ad 5s 9c 9h"), views[0].Board)
	assert.Equal(t, holdem.StreetRiver, views[1].Street)
	assert.Nil(t, views[1].Players[0].HoleCards)
	assert.NotNil(t, obs.Players[0].HoleCards, "source is untouched")

	// a fold leaves the board where it was
	assert.Empty(t, StreetViews(holdem.StreetRiver, obs))
	obs.Board = obs.Board[:3]
	assert.Empty(t, StreetViews(holdem.StreetFlop, obs))
}

func TestPlayHand_IllegalDecisionsAutoFold(t *testing.T) {
	bad := &countingBrain{d: npc.Decision{Kind: holdem.ActionKind(9)}}
	c := New(testConfig())

	// three-handed, button 0: seat 0 acts first facing the big blind
	s, players, err := c.PlayHand(context.Background(),
		testSeats(bad, npc.NewScriptedBrain("B"), npc.NewScriptedBrain("C")), 0)
	require.NoError(t, err)

	assert.Equal(t, defaultMaxIllegalAttempts, bad.calls)
	assert.Equal(t, int64(1000), players[0].Stack, "folded before putting chips in")
	assert.NotEqual(t, holdem.OutcomeAborted, s.Outcome)
	assert.Equal(t, int64(3000), total(players))
	assert.Zero(t, bad.net)
}

func TestPlayHand_IllegalDecisionsAutoCheckWhenFree(t *testing.T) {
	bad := &countingBrain{d: npc.Decision{Kind: holdem.ActionNone}}
	c := New(testConfig(), WithMaxIllegalAttempts(1))

	// heads-up: seat 1 is the big blind and may check preflop for free
	s, players, err := c.PlayHand(context.Background(),
		testSeats(npc.NewScriptedBrain("A"), bad), 0)
	require.NoError(t, err)
	assert.Equal(t, holdem.OutcomeShowdown, s.Outcome, "auto-checks through to showdown")
	assert.Equal(t, int64(2000), total(players))
	assert.Equal(t, 4, bad.calls)
}

func TestPlayHand_ContextCancelAborts(t *testing.T) {
	rec := &recorder{}
	c := New(testConfig(), WithObserver(rec))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, players, err := c.PlayHand(ctx, testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B")), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, s)
	assert.Equal(t, holdem.OutcomeAborted, s.Outcome)
	assert.Equal(t, int64(1000), players[0].Stack)
	assert.Equal(t, int64(1000), players[1].Stack)
	assert.Equal(t, []EventType{EventHandStarted, EventHandAborted}, rec.types())
}

func TestPlayHand_DecisionLatencyHonoursDeadline(t *testing.T) {
	c := New(testConfig(), WithDecisionLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	s, _, err := c.PlayHand(ctx, testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B")), 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, holdem.OutcomeAborted, s.Outcome)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPlayHand_NotEnoughPlayers(t *testing.T) {
	c := New(testConfig())
	seats := testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B"))
	seats[1].State.Stack = 0

	_, _, err := c.PlayHand(context.Background(), seats, 0)
	assert.ErrorIs(t, err, holdem.ErrNotEnoughPlayers)
}

func TestPlayHand_LearnersSeeNetResult(t *testing.T) {
	folder := &countingBrain{d: npc.Decision{Kind: holdem.ActionFold}}
	caller := &countingBrain{d: npc.Decision{Kind: holdem.ActionCheckCall}}
	c := New(testConfig())

	_, _, err := c.PlayHand(context.Background(), testSeats(folder, caller), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-20), folder.net)
	assert.Equal(t, int64(20), caller.net)
}

func TestPlayHand_ObserverPanicIsContained(t *testing.T) {
	c := New(testConfig(), WithObserver(ObserverFunc(func(Event) { panic("boom") })))
	s, _, err := c.PlayHand(context.Background(), testSeats(npc.NewScriptedBrain("A"), npc.NewScriptedBrain("B")), 0)
	require.NoError(t, err)
	assert.True(t, s.Outcome == holdem.OutcomeShowdown || s.Outcome == holdem.OutcomeEarlyFold)
}

func TestPlayHand_RandomBrainsConserveChips(t *testing.T) {
	c := New(testConfig())
	for i := 0; i < 30; i++ {
		seats := testSeats(
			npc.NewRandomBrain("r0", int64(i)),
			npc.NewRandomBrain("r1", int64(i+100)),
			npc.NewRandomBrain("r2", int64(i+200)),
			npc.NewRandomBrain("r3", int64(i+300)),
		)
		_, players, err := c.PlayHand(context.Background(), seats, uint16(i%4), HandSeed(int64(i+1)))
		require.NoError(t, err)
		assert.Equal(t, int64(4000), total(players))
	}
}
