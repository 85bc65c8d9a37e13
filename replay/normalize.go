package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"

	"holdem-tourney/card"
	"holdem-tourney/holdem"
)

const deckSize = 52

type normalizedAction struct {
	street    holdem.Street
	hasStreet bool
	seat      uint16
	kind      holdem.ActionKind
	amount    int64
}

type normalizedSpec struct {
	cfg     holdem.Config
	players []holdem.PlayerState
	button  uint16
	hero    uint16
	actions []normalizedAction
}

// DecodeSpec reads a JSON HandSpec, rejecting unknown fields.
func DecodeSpec(r io.Reader) (HandSpec, error) {
	var spec HandSpec
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return spec, specError("invalid_json", "%v", err)
	}
	return spec, nil
}

func normalizeSpec(spec HandSpec) (normalizedSpec, error) {
	out := normalizedSpec{hero: holdem.InvalidSeat}

	cfg, err := tableConfig(spec.Table)
	if err != nil {
		return out, err
	}
	if len(spec.Seats) < 2 {
		return out, specError("invalid_seats", "at least 2 seats are required")
	}

	seen := make(map[uint16]bool, len(spec.Seats))
	holes := make(map[uint16][]card.Card, len(spec.Seats))
	heroCount := 0
	for i, s := range spec.Seats {
		if s.Seat == holdem.InvalidSeat || (cfg.MaxPlayers > 0 && int(s.Seat) >= cfg.MaxPlayers) {
			return out, specError("invalid_seat", "seat %d out of range", i)
		}
		if seen[s.Seat] {
			return out, specError("duplicate_seat", "duplicate seat %d", s.Seat)
		}
		seen[s.Seat] = true
		if s.Stack < 0 {
			return out, specError("invalid_stack", "seat %d stack must be >= 0", s.Seat)
		}
		hole, err := parseHoleCards(s.Hole)
		if err != nil {
			return out, specError("invalid_hole_cards", "seat %d: %v", s.Seat, err)
		}
		if len(hole) > 0 {
			holes[s.Seat] = hole
		}

		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = fmt.Sprintf("P%d", s.Seat)
		}
		id := s.ID
		if id == "" {
			id = strings.ToLower(name)
		}
		if s.IsHero {
			heroCount++
			out.hero = s.Seat
		}
		out.players = append(out.players, holdem.PlayerState{Seat: s.Seat, ID: id, Name: name, Stack: s.Stack})
	}
	sort.Slice(out.players, func(i, j int) bool { return out.players[i].Seat < out.players[j].Seat })

	dealt := dealtSeats(out.players)
	if len(dealt) < 2 {
		return out, specError("not_enough_players", "at least 2 seats with chips are required")
	}
	if heroCount > 1 {
		return out, specError("invalid_hero", "multiple seats marked as hero")
	}
	if heroCount == 1 && !containsSeat(dealt, out.hero) {
		return out, specError("invalid_hero", "hero seat must be dealt in")
	}
	for seat := range holes {
		if !containsSeat(dealt, seat) {
			return out, specError("invalid_hole_cards", "seat %d has no chips but has hole cards", seat)
		}
	}

	board, err := parseBoard(spec.Board)
	if err != nil {
		return out, err
	}
	out.button = buttonFor(dealt, spec.Button)
	constraints, err := slotConstraints(dealOrder(dealt, out.button), holes, board)
	if err != nil {
		return out, err
	}
	seed := seedFromSpec(spec.RNG)
	if cfg.DeckOverride, err = parseOrBuildDeck(spec.Deck, constraints, seed); err != nil {
		return out, err
	}
	// the whole deck is fixed; the hand seed only labels the replay
	cfg.Seed = seed
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	out.cfg = cfg

	out.actions = make([]normalizedAction, 0, len(spec.Actions))
	for i, a := range spec.Actions {
		na := normalizedAction{seat: a.Seat, amount: a.Amount}
		if a.Street != "" {
			st, ok := parseStreet(a.Street)
			if !ok {
				return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_street", Message: fmt.Sprintf("unknown street %q", a.Street)}
			}
			na.street, na.hasStreet = st, true
		}
		kind, ok := holdem.ParseActionKind(strings.ToLower(strings.TrimSpace(a.Type)))
		if !ok {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_action", Message: fmt.Sprintf("unknown action %q", a.Type)}
		}
		na.kind = kind
		if !seen[a.Seat] {
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_action_seat", Message: fmt.Sprintf("seat %d not seated", a.Seat)}
		}
		out.actions = append(out.actions, na)
	}
	return out, nil
}

func tableConfig(t TableSpec) (holdem.Config, error) {
	cfg := holdem.DefaultConfig()
	if t.MaxPlayers < 0 {
		return cfg, specError("invalid_table", "max_players must be >= 0")
	}
	if t.MaxPlayers > 0 {
		cfg.MaxPlayers = t.MaxPlayers
	}
	if t.BB <= 0 || t.SB < 0 || t.SB > t.BB || t.Ante < 0 {
		return cfg, specError("invalid_blinds", "invalid blinds: sb=%d bb=%d ante=%d", t.SB, t.BB, t.Ante)
	}
	cfg.SmallBlind, cfg.BigBlind, cfg.Ante = t.SB, t.BB, t.Ante
	switch strings.ToLower(t.BetMode) {
	case "", "fixed":
		cfg.BetMode = holdem.BetFixed
	case "variable":
		cfg.BetMode = holdem.BetVariable
	default:
		return cfg, specError("invalid_bet_mode", "unknown bet mode %q", t.BetMode)
	}
	cfg.RaiseIncrement = t.RaiseIncrement
	if t.MaxRaises != 0 {
		cfg.MaxRaisesPerStreet = t.MaxRaises
	}
	return cfg, nil
}

func parseOrBuildDeck(deck []string, constraints map[int]card.Card, seed int64) ([]card.Card, error) {
	if len(deck) > 0 {
		if len(deck) != deckSize {
			return nil, specError("invalid_deck", "deck must contain %d cards, got %d", deckSize, len(deck))
		}
		out := make([]card.Card, len(deck))
		seen := make(map[card.Card]bool, len(deck))
		for i, s := range deck {
			c, err := card.Parse(s)
			if err != nil {
				return nil, specError("invalid_deck_card", "deck[%d]: %v", i, err)
			}
			if seen[c] {
				return nil, specError("invalid_deck", "duplicate card in deck[%d]", i)
			}
			seen[c] = true
			out[i] = c
		}
		for idx, expected := range constraints {
			if out[idx] != expected {
				return nil, specError("deck_constraint_mismatch", "deck[%d] does not match constrained card %s", idx, expected)
			}
		}
		return out, nil
	}

	used := make(map[card.Card]bool, len(constraints))
	for _, c := range constraints {
		used[c] = true
	}
	remaining := make(card.CardList, 0, deckSize-len(constraints))
	for _, c := range card.FullDeck() {
		if !used[c] {
			remaining = append(remaining, c)
		}
	}
	if seed != 0 {
		remaining.Shuffle(rand.New(rand.NewSource(seed)))
	}

	out := make([]card.Card, deckSize)
	ri := 0
	for i := range out {
		if c, ok := constraints[i]; ok {
			out[i] = c
			continue
		}
		out[i] = remaining[ri]
		ri++
	}
	return out, nil
}

func parseHoleCards(hole []string) ([]card.Card, error) {
	if len(hole) == 0 {
		return nil, nil
	}
	if len(hole) != 2 {
		return nil, fmt.Errorf("hole cards must contain exactly 2 cards")
	}
	out := make([]card.Card, 2)
	for i, s := range hole {
		c, err := card.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("hole[%d]: %w", i, err)
		}
		out[i] = c
	}
	if out[0] == out[1] {
		return nil, fmt.Errorf("hole cards cannot duplicate")
	}
	return out, nil
}

func parseBoard(board []string) ([]card.Card, error) {
	if len(board) > 5 {
		return nil, specError("invalid_board", "board has %d cards", len(board))
	}
	out := make([]card.Card, len(board))
	for i, s := range board {
		c, err := card.Parse(s)
		if err != nil {
			return nil, specError("invalid_board_card", "board[%d]: %v", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// slotConstraints maps deck positions to required cards. Hole cards are
// dealt one at a time, twice round in order, then the board.
func slotConstraints(order []uint16, holes map[uint16][]card.Card, board []card.Card) (map[int]card.Card, error) {
	constraints := make(map[int]card.Card, len(order)*2+len(board))
	used := make(map[card.Card]bool, len(order)*2+len(board))
	assign := func(slot int, c card.Card) error {
		if used[c] {
			return specError("duplicate_cards", "card %s appears multiple times", c)
		}
		constraints[slot] = c
		used[c] = true
		return nil
	}

	n := len(order)
	for idx, seat := range order {
		hole, ok := holes[seat]
		if !ok {
			continue
		}
		for round := 0; round < 2; round++ {
			if err := assign(round*n+idx, hole[round]); err != nil {
				return nil, err
			}
		}
	}
	for i, c := range board {
		if err := assign(2*n+i, c); err != nil {
			return nil, err
		}
	}
	return constraints, nil
}

func dealtSeats(players []holdem.PlayerState) []uint16 {
	out := make([]uint16, 0, len(players))
	for _, p := range players {
		if p.Stack > 0 {
			out = append(out, p.Seat)
		}
	}
	return out
}

// buttonFor is the first dealt seat at or after button, wrapping. dealt is sorted.
func buttonFor(dealt []uint16, button uint16) uint16 {
	for _, s := range dealt {
		if s >= button {
			return s
		}
	}
	return dealt[0]
}

// dealOrder starts left of the button.
func dealOrder(dealt []uint16, button uint16) []uint16 {
	idx := 0
	for i, s := range dealt {
		if s == button {
			idx = i
			break
		}
	}
	out := make([]uint16, len(dealt))
	for i := range dealt {
		out[i] = dealt[(idx+1+i)%len(dealt)]
	}
	return out
}

func parseStreet(s string) (holdem.Street, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for st, name := range holdem.StreetDictionary {
		if name == s {
			return st, true
		}
	}
	return 0, false
}

func containsSeat(seats []uint16, seat uint16) bool {
	for _, s := range seats {
		if s == seat {
			return true
		}
	}
	return false
}

func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil {
		return 0
	}
	return rng.Seed
}
