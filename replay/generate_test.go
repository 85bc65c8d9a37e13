package replay

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"holdem-tourney/card"
	"holdem-tourney/holdem"
	"holdem-tourney/table"
)

func TestGenerate_IsDeterministic(t *testing.T) {
	spec := baseHandSpec()

	tapeA, err := Generate(spec)
	if err != nil {
		t.Fatalf("Generate A failed: %v", err)
	}
	tapeB, err := Generate(spec)
	if err != nil {
		t.Fatalf("Generate B failed: %v", err)
	}
	if !reflect.DeepEqual(tapeA, tapeB) {
		t.Fatalf("expected deterministic tape for the same HandSpec")
	}
	if len(tapeA.Events) == 0 {
		t.Fatalf("expected non-empty tape")
	}
	if tapeA.Events[0].Type != table.EventHandStarted {
		t.Fatalf("first event = %s", tapeA.Events[0].Type)
	}
	if last := tapeA.Events[len(tapeA.Events)-1]; last.Type != table.EventHandSettled || last.Settlement == nil {
		t.Fatalf("last event = %s, settlement=%v", last.Type, last.Settlement)
	}

	streets := 0
	for i, e := range tapeA.Events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, e.Seq)
		}
		if e.Type == table.EventStreetAdvanced {
			streets++
		}
	}
	if streets != 3 {
		t.Fatalf("street events = %d, want 3", streets)
	}
}

func TestGenerate_AcesFillUpOnPairedBoard(t *testing.T) {
	tape, err := Generate(baseHandSpec())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !tape.Complete {
		t.Fatalf("expected complete hand")
	}
	s := tape.Settlement
	if s.Outcome != holdem.OutcomeShowdown || !reflect.DeepEqual(s.Winners, []uint16{0}) {
		t.Fatalf("unexpected settlement: %s", s.Summary())
	}
	if got := s.Board; !reflect.DeepEqual(got, card.MustParseList("Ad 5s 9c 9h 2s")) {
		t.Fatalf("board = %v", got)
	}
	stacks := map[uint16]int64{}
	for _, p := range tape.Players {
		stacks[p.Seat] = p.Stack
	}
	if stacks[0] != 1040 || stacks[1] != 960 {
		t.Fatalf("stacks = %v", stacks)
	}
}

func TestGenerate_HeroSeesOwnCardsOnly(t *testing.T) {
	spec := baseHandSpec()
	spec.Seats[0].IsHero = true

	tape, err := Generate(spec)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if tape.HeroSeat != 0 {
		t.Fatalf("hero seat = %d", tape.HeroSeat)
	}
	start := tape.Events[0].Observation
	if !reflect.DeepEqual(start.HoleCards, card.MustParseList("As Ah")) {
		t.Fatalf("hero hole cards = %v", start.HoleCards)
	}
	villain, _ := start.Player(1)
	if len(villain.HoleCards) != 0 {
		t.Fatalf("villain cards leaked before showdown: %v", villain.HoleCards)
	}
}

func TestGenerate_ReturnsReplayErrorOnOutOfTurnAction(t *testing.T) {
	spec := baseHandSpec()
	spec.Actions[0].Seat = 1

	_, err := Generate(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError, got %T (%v)", err, err)
	}
	if replayErr.Reason != "out_of_turn" || replayErr.StepIndex != 0 {
		t.Fatalf("unexpected error: %v", replayErr)
	}
	if replayErr.Expected == nil || replayErr.Expected.Seat != 0 {
		t.Fatalf("expected state should point at seat 0: %+v", replayErr.Expected)
	}
	if replayErr.Expected.ToCall != 20 {
		t.Fatalf("small blind should owe 20, got %d", replayErr.Expected.ToCall)
	}
}

func TestGenerate_StreetMismatch(t *testing.T) {
	spec := baseHandSpec()
	spec.Actions[2].Street = "turn"

	_, err := Generate(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "street_mismatch" || replayErr.StepIndex != 2 {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayErr.Expected.Street != "flop" {
		t.Fatalf("expected street = %s", replayErr.Expected.Street)
	}
}

func TestGenerate_ActionAfterHandEnds(t *testing.T) {
	spec := baseHandSpec()
	spec.Actions = []ActionSpec{
		{Seat: 0, Type: "fold"},
		{Seat: 1, Type: "check"},
	}

	_, err := Generate(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "no_action_expected" || replayErr.StepIndex != 1 {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerate_PartialActionsLeaveHandOpen(t *testing.T) {
	spec := baseHandSpec()
	spec.Actions = spec.Actions[:3]

	tape, err := Generate(spec)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if tape.Complete || tape.Settlement != nil {
		t.Fatalf("hand should still be open")
	}
	if last := tape.Events[len(tape.Events)-1]; last.Type != table.EventActionApplied {
		t.Fatalf("last event = %s", last.Type)
	}
}

func TestGenerate_IllegalRaiseSize(t *testing.T) {
	spec := baseHandSpec()
	spec.Table.BetMode = "variable"
	spec.Actions[0] = ActionSpec{Street: "preflop", Seat: 0, Type: "RAISE", Amount: 5}

	_, err := Generate(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "illegal_action" {
		t.Fatalf("unexpected error: %v", err)
	}
	if replayErr.Expected.MinRaise != 40 {
		t.Fatalf("min raise = %d", replayErr.Expected.MinRaise)
	}
}

func TestGenerate_SpecErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*HandSpec)
		reason string
	}{
		{"one seat", func(s *HandSpec) { s.Seats = s.Seats[:1] }, "invalid_seats"},
		{"bad blinds", func(s *HandSpec) { s.Table.SB = 50 }, "invalid_blinds"},
		{"duplicate seat", func(s *HandSpec) { s.Seats[1].Seat = 0 }, "duplicate_seat"},
		{"board repeats hole card", func(s *HandSpec) { s.Board[0] = "As" }, "duplicate_cards"},
		{"short deck", func(s *HandSpec) { s.Deck = []string{"As"} }, "invalid_deck"},
		{"broke hero", func(s *HandSpec) {
			s.Seats = append(s.Seats, SeatSpec{Seat: 2, Stack: 0, IsHero: true})
		}, "invalid_hero"},
		{"unknown action", func(s *HandSpec) { s.Actions[0].Type = "shove" }, "invalid_action"},
		{"unknown bet mode", func(s *HandSpec) { s.Table.BetMode = "pot" }, "invalid_bet_mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseHandSpec()
			tc.mutate(&spec)
			_, err := Generate(spec)
			var replayErr *ReplayError
			if !errors.As(err, &replayErr) {
				t.Fatalf("expected ReplayError, got %v", err)
			}
			if replayErr.Reason != tc.reason {
				t.Fatalf("reason = %s, want %s (%s)", replayErr.Reason, tc.reason, replayErr.Message)
			}
		})
	}
}

func TestGenerate_ExplicitDeckMustMatchConstraints(t *testing.T) {
	top := card.MustParseList("2c As 3d Ah Ad 5s 9c 9h 2s")
	used := map[card.Card]bool{}
	deck := make([]string, 0, 52)
	for _, c := range top {
		used[c] = true
		deck = append(deck, c.Code())
	}
	for _, c := range card.FullDeck() {
		if !used[c] {
			deck = append(deck, c.Code())
		}
	}

	spec := baseHandSpec()
	spec.Deck = deck
	if _, err := Generate(spec); err != nil {
		t.Fatalf("matching deck rejected: %v", err)
	}

	spec.Seats[0].Hole = []string{"Kd", "Kh"}
	_, err := Generate(spec)
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "deck_constraint_mismatch" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeSpec(t *testing.T) {
	raw := `{"table":{"sb":20,"bb":40},"button":0,
		"seats":[{"seat":0,"stack":1000},{"seat":1,"stack":1000}],
		"actions":[{"seat":0,"type":"call"}]}`
	spec, err := DecodeSpec(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeSpec failed: %v", err)
	}
	if len(spec.Seats) != 2 || spec.Actions[0].Type != "call" {
		t.Fatalf("unexpected spec: %+v", spec)
	}

	_, err = DecodeSpec(strings.NewReader(`{"tables":{}}`))
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) || replayErr.Reason != "invalid_json" {
		t.Fatalf("unknown field accepted: %v", err)
	}
}

// baseHandSpec is heads-up with the button on seat 0: aces against 2-3
// offsuit, checked down to a showdown on Ad 5s 9c 9h 2s.
func baseHandSpec() HandSpec {
	return HandSpec{
		Table:  TableSpec{MaxPlayers: 6, SB: 20, BB: 40},
		Button: 0,
		Seats: []SeatSpec{
			{Seat: 0, Name: "YOU", Stack: 1000, Hole: []string{"As", "Ah"}},
			{Seat: 1, Name: "P1", Stack: 1000, Hole: []string{"2c", "3d"}},
		},
		Board: []string{"Ad", "5s", "9c", "9h", "2s"},
		Actions: []ActionSpec{
			{Street: "preflop", Seat: 0, Type: "call"},
			{Street: "preflop", Seat: 1, Type: "check"},
			{Street: "flop", Seat: 1, Type: "check"},
			{Street: "flop", Seat: 0, Type: "check"},
			{Street: "turn", Seat: 1, Type: "check"},
			{Street: "turn", Seat: 0, Type: "check"},
			{Street: "river", Seat: 1, Type: "check"},
			{Street: "river", Seat: 0, Type: "check"},
		},
		RNG: &RNGSpec{Seed: 42},
	}
}
