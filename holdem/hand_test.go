package holdem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-tourney/card"
)

func seats(stacks ...int64) []PlayerState {
	out := make([]PlayerState, len(stacks))
	for i, s := range stacks {
		out[i] = PlayerState{Seat: uint16(i), Stack: s}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func mustHand(t *testing.T, cfg Config, players []PlayerState, button uint16) *Hand {
	t.Helper()
	h, err := NewHand(cfg, players, button)
	require.NoError(t, err)
	return h
}

func submit(t *testing.T, h *Hand, seat uint16, kind ActionKind) {
	t.Helper()
	_, err := h.SubmitAction(seat, kind, 0)
	require.NoError(t, err, "seat %d %s", seat, kind)
}

// checkDown calls/checks for whoever is to act until the hand ends.
func checkDown(t *testing.T, h *Hand) {
	t.Helper()
	for i := 0; !h.IsOver(); i++ {
		require.Less(t, i, 100, "hand did not finish")
		submit(t, h, h.CurrentActor(), ActionCheckCall)
	}
}

func TestHand_ScenarioAcesBeatTreyDeuce(t *testing.T) {
	cfg := testConfig()
	// heads-up, button 0: seat 1 is dealt first
	cfg.DeckOverride = card.MustParseList("2c As 3d Ah  Ad 5s 9c  9h  2s")
	h := mustHand(t, cfg, seats(1000, 1000), 0)

	checkDown(t, h)

	s := h.Settlement()
	require.NotNil(t, s)
	assert.Equal(t, OutcomeShowdown, s.Outcome)
	assert.Equal(t, []uint16{0}, s.Winners)
	assert.Equal(t, card.MustParseList("Ad 5s 9c 9h 2s"), s.Board)
	assert.Equal(t, int64(80), s.Pot)

	players := h.Players()
	assert.Equal(t, int64(1040), players[0].Stack)
	assert.Equal(t, int64(960), players[1].Stack)

	require.Len(t, s.Showdown, 2)
	assert.Equal(t, CategoryFullHouse, s.Showdown[0].Rank.Category)
	assert.Equal(t, CategoryTwoPair, s.Showdown[1].Rank.Category)
	assert.Equal(t, StateSettled, h.State())
}

func TestHand_HeadsUpButtonPostsSmallBlind(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000), 0)

	obs := h.SpectatorObservation()
	assert.Equal(t, uint16(0), obs.SmallBlindSeat)
	assert.Equal(t, uint16(1), obs.BigBlindSeat)
	assert.Equal(t, uint16(0), obs.CurrentActor, "button acts first preflop heads-up")
	assert.Equal(t, int64(60), obs.Pot)

	submit(t, h, 0, ActionCheckCall)
	submit(t, h, 1, ActionCheckCall)

	obs = h.SpectatorObservation()
	assert.Equal(t, StreetFlop, obs.Street)
	assert.Len(t, obs.Board, 3)
	assert.Equal(t, uint16(1), obs.CurrentActor, "big blind acts first after the flop")
}

func TestHand_BlindsAndFirstActorThreeHanded(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)

	obs := h.SpectatorObservation()
	assert.Equal(t, uint16(1), obs.SmallBlindSeat)
	assert.Equal(t, uint16(2), obs.BigBlindSeat)
	assert.Equal(t, uint16(0), obs.CurrentActor)
	assert.Equal(t, int64(40), obs.HighestBet)
}

func TestHand_FoldEndsHandEarly(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000), 0)

	submit(t, h, 0, ActionFold)

	require.True(t, h.IsOver())
	s := h.Settlement()
	assert.Equal(t, OutcomeEarlyFold, s.Outcome)
	assert.Equal(t, []uint16{1}, s.Winners)
	assert.Empty(t, s.Board)

	players := h.Players()
	assert.Equal(t, int64(980), players[0].Stack)
	assert.Equal(t, int64(1020), players[1].Stack)

	winners, ok := h.Winners()
	assert.True(t, ok)
	assert.Equal(t, []uint16{1}, winners)

	_, err := h.SubmitAction(1, ActionCheckCall, 0)
	assert.ErrorIs(t, err, ErrHandSettled)
	_, err = h.LegalActions(1)
	assert.ErrorIs(t, err, ErrHandSettled)
}

func TestHand_RaiseCapDowngradesToCall(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)

	submit(t, h, 0, ActionBetRaise) // 80
	submit(t, h, 1, ActionBetRaise) // 120

	obs := h.Observation(2)
	assert.Equal(t, 2, obs.RaisesThisStreet)
	assert.False(t, obs.CanRaise)
	assert.Contains(t, obs.LegalActions, ActionBetRaise)

	submit(t, h, 2, ActionBetRaise)

	actions := h.Actions()
	last := actions[len(actions)-1]
	assert.Equal(t, ActionBetRaise, last.Requested)
	assert.Equal(t, ActionCheckCall, last.Applied)
	assert.Equal(t, int64(80), last.Amount)
	assert.Equal(t, int64(120), last.HighestBet)

	obs = h.SpectatorObservation()
	assert.Equal(t, 2, obs.RaisesThisStreet)
	assert.Equal(t, uint16(0), obs.CurrentActor)
}

func TestHand_IllegalActionLeavesStateUnchanged(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)
	before := h.SpectatorObservation()

	_, err := h.SubmitAction(2, ActionCheckCall, 0)
	var iae *IllegalActionError
	require.ErrorAs(t, err, &iae)
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, uint16(2), iae.Seat)

	_, err = h.SubmitAction(0, ActionKind(9), 0)
	assert.ErrorIs(t, err, ErrIllegalAction)

	_, err = h.SubmitAction(7, ActionFold, 0)
	assert.ErrorIs(t, err, ErrIllegalAction)

	assert.Equal(t, before, h.SpectatorObservation())
	assert.Empty(t, h.Actions())
}

func TestHand_LegalActionsOnlyForActor(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)

	acts, err := h.LegalActions(0)
	require.NoError(t, err)
	assert.Equal(t, []ActionKind{ActionFold, ActionCheckCall, ActionBetRaise}, acts)

	acts, err = h.LegalActions(1)
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestHand_VariableRaiseBounds(t *testing.T) {
	cfg := testConfig()
	cfg.BetMode = BetVariable
	h := mustHand(t, cfg, seats(1000, 1000), 0)

	obs := h.Observation(0)
	assert.Equal(t, int64(20), obs.ToCall)
	assert.Equal(t, int64(40), obs.MinRaise)
	assert.Equal(t, int64(960), obs.MaxRaise)

	before := h.SpectatorObservation()
	_, err := h.SubmitAction(0, ActionBetRaise, 30)
	assert.ErrorIs(t, err, ErrIllegalAction)
	_, err = h.SubmitAction(0, ActionBetRaise, 961)
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, before, h.SpectatorObservation())

	_, err = h.SubmitAction(0, ActionBetRaise, 960)
	require.NoError(t, err)
	p, _ := h.SpectatorObservation().Player(0)
	assert.True(t, p.AllIn)

	// calling the shove runs the board out
	submit(t, h, 1, ActionCheckCall)
	require.True(t, h.IsOver())
	s := h.Settlement()
	assert.Equal(t, OutcomeShowdown, s.Outcome)
	assert.Len(t, s.Board, 5)
	assert.Equal(t, int64(2000), s.Pot)
	assert.Equal(t, int64(2000), h.ChipTotal())
}

func TestHand_ShortBigBlindRunsOut(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 30), 0)

	// seat 1 is all-in from the blind; only the button has a decision
	obs := h.Observation(0)
	assert.Equal(t, int64(10), obs.ToCall)
	assert.False(t, obs.CanRaise)

	submit(t, h, 0, ActionBetRaise)
	require.True(t, h.IsOver())
	actions := h.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, ActionCheckCall, actions[0].Applied)
	assert.Equal(t, int64(1030), h.ChipTotal())
}

func TestHand_SplitPotOddChip(t *testing.T) {
	cfg := testConfig()
	cfg.SmallBlind, cfg.BigBlind, cfg.Ante = 5, 10, 1
	// royal flush on board, everyone plays it
	cfg.DeckOverride = card.MustParseList("2c 3c 4c 2d 3d 4d As Ks Qs Js Ts")
	h := mustHand(t, cfg, seats(100, 100, 100), 0)

	submit(t, h, 0, ActionFold)
	checkDown(t, h)

	s := h.Settlement()
	require.Equal(t, OutcomeShowdown, s.Outcome)
	assert.Equal(t, []uint16{1, 2}, s.Winners)
	assert.Equal(t, int64(23), s.Pot)
	assert.Equal(t, []Payout{{Seat: 1, Amount: 12}, {Seat: 2, Amount: 11}}, s.Payouts)

	players := h.Players()
	assert.Equal(t, int64(99), players[0].Stack)
	assert.Equal(t, int64(101), players[1].Stack)
	assert.Equal(t, int64(100), players[2].Stack)
}

func TestHand_ObservationHidesHoleCards(t *testing.T) {
	cfg := testConfig()
	cfg.DeckOverride = card.MustParseList("2c As 3d Ah Ad 5s 9c 9h 2s")
	h := mustHand(t, cfg, seats(1000, 1000), 0)

	obs := h.Observation(0)
	assert.Equal(t, card.MustParseList("As Ah"), obs.HoleCards)
	other, ok := obs.Player(1)
	require.True(t, ok)
	assert.Nil(t, other.HoleCards)

	view := h.SpectatorObservation()
	for _, p := range view.Players {
		assert.Nil(t, p.HoleCards)
	}
	assert.Nil(t, view.LegalActions)

	checkDown(t, h)
	obs = h.Observation(1)
	other, _ = obs.Player(0)
	assert.Equal(t, card.MustParseList("As Ah"), other.HoleCards, "showdown reveals active hands")
}

func TestHand_FoldedCardsStayHidden(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 1000), 0)
	submit(t, h, 0, ActionFold)

	obs := h.Observation(1)
	p, _ := obs.Player(0)
	assert.Nil(t, p.HoleCards)
}

func TestHand_AbortRefundsContributions(t *testing.T) {
	h := mustHand(t, testConfig(), seats(1000, 800, 600), 0)
	submit(t, h, 0, ActionBetRaise)
	submit(t, h, 1, ActionCheckCall)

	require.NoError(t, h.Abort("table closed"))
	s := h.Settlement()
	assert.Equal(t, OutcomeAborted, s.Outcome)
	assert.Equal(t, "table closed", s.Reason)
	assert.Empty(t, s.Winners)
	assert.Zero(t, s.AmountWon(0))

	players := h.Players()
	assert.Equal(t, int64(1000), players[0].Stack)
	assert.Equal(t, int64(800), players[1].Stack)
	assert.Equal(t, int64(600), players[2].Stack)

	assert.ErrorIs(t, h.Abort("again"), ErrHandSettled)
}

func TestHand_SkipsEliminatedAndBrokeSeats(t *testing.T) {
	players := seats(0, 1000, 1000, 1000)
	players[3].Eliminated = true
	h := mustHand(t, testConfig(), players, 0)

	assert.Equal(t, uint16(1), h.Button())
	obs := h.SpectatorObservation()
	assert.Equal(t, uint16(1), obs.SmallBlindSeat)
	assert.Equal(t, uint16(2), obs.BigBlindSeat)

	ps := h.Players()
	assert.False(t, ps[0].Dealt)
	assert.Empty(t, ps[0].HoleCards)
	assert.False(t, ps[3].Dealt)

	_, err := h.SubmitAction(0, ActionFold, 0)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestNewHand_Rejects(t *testing.T) {
	_, err := NewHand(testConfig(), seats(1000, 0), 0)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	players := seats(1000, 1000)
	players[1].Seat = 0
	_, err = NewHand(testConfig(), players, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig()
	cfg.BigBlind = 0
	_, err = NewHand(cfg, seats(1000, 1000), 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.MaxPlayers = 2
	_, err = NewHand(cfg, seats(1000, 1000, 1000), 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.DeckOverride = card.MustParseList("As As")
	_, err = NewHand(cfg, seats(1000, 1000), 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestHand_SameSeedSameDeal(t *testing.T) {
	a := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)
	b := mustHand(t, testConfig(), seats(1000, 1000, 1000), 0)
	for seat := uint16(0); seat < 3; seat++ {
		assert.Equal(t, a.Observation(seat).HoleCards, b.Observation(seat).HoleCards)
	}
	assert.Equal(t, a.Seed(), b.Seed())
}

func TestHand_RandomPlayConservesChips(t *testing.T) {
	kinds := []ActionKind{ActionFold, ActionCheckCall, ActionCheckCall, ActionBetRaise}
	for seed := int64(1); seed <= 60; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 2 + rng.Intn(5)
		stacks := make([]int64, n)
		var total int64
		for i := range stacks {
			stacks[i] = int64(10 + rng.Intn(400))
			total += stacks[i]
		}
		cfg := testConfig()
		cfg.Seed = seed
		cfg.Ante = int64(rng.Intn(3))
		h := mustHand(t, cfg, seats(stacks...), uint16(rng.Intn(n)))

		for step := 0; !h.IsOver(); step++ {
			require.Less(t, step, 500, "seed %d did not finish", seed)
			require.Equal(t, total, h.ChipTotal(), "seed %d step %d", seed, step)
			_, err := h.SubmitAction(h.CurrentActor(), kinds[rng.Intn(len(kinds))], 0)
			require.NoError(t, err, "seed %d", seed)
		}

		s := h.Settlement()
		require.NotEqual(t, OutcomeAborted, s.Outcome, "seed %d: %s", seed, s.Reason)
		var after, paid int64
		for _, p := range h.Players() {
			require.GreaterOrEqual(t, p.Stack, int64(0))
			after += p.Stack
		}
		for _, p := range s.Payouts {
			paid += p.Amount
		}
		assert.Equal(t, total, after, "seed %d", seed)
		assert.Equal(t, s.Pot, paid, "seed %d", seed)

		left, dealt := h.DeckCount()
		assert.Equal(t, 52, left+dealt)
		assert.Equal(t, 2*n+len(s.Board), dealt)
	}
}
