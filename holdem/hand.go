package holdem

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"holdem-tourney/card"
)

// ActionRecord is one applied action. Requested differs from Applied when a
// BetRaise was played as CheckCall.
type ActionRecord struct {
	Seq        int        `json:"seq"`
	Street     Street     `json:"street"`
	Seat       uint16     `json:"seat"`
	Requested  ActionKind `json:"requested"`
	Applied    ActionKind `json:"applied"`
	Amount     int64      `json:"amount"`
	HighestBet int64      `json:"highest_bet"`
	AllIn      bool       `json:"all_in"`
}

// Hand drives one hand from the deal to settlement. Every exported method
// takes the hand mutex; methods ending in Locked expect it held.
type Hand struct {
	mu sync.Mutex

	cfg  Config
	seed int64

	players []*PlayerState // sorted by seat, including seats not dealt in
	bySeat  map[uint16]*PlayerState
	nodes   map[uint16]*seatNode

	deck   *card.Deck
	board  card.CardList
	ledger *Ledger

	button  uint16
	sbSeat  uint16
	bbSeat  uint16
	headsUp bool

	state   HandState
	street  Street
	round   *BettingRound
	actions []ActionRecord

	settlement *Settlement
}

// NewHand seats players, shuffles, deals hole cards and posts antes and
// blinds. Eliminated seats and seats with no chips sit the hand out. If
// button is not dealt in, the next dealt seat clockwise takes it.
func NewHand(cfg Config, players []PlayerState, button uint16) (*Hand, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(players) > cfg.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players for %d seats", ErrInvalidConfig, len(players), cfg.MaxPlayers)
	}

	h := &Hand{
		cfg:     cfg,
		players: make([]*PlayerState, 0, len(players)),
		bySeat:  make(map[uint16]*PlayerState, len(players)),
		state:   StateDealing,
	}
	dealt := 0
	for i := range players {
		p := players[i].clone()
		if p.Seat == InvalidSeat {
			return nil, fmt.Errorf("%w: invalid seat %d", ErrInvalidConfig, p.Seat)
		}
		if h.bySeat[p.Seat] != nil {
			return nil, fmt.Errorf("%w: seat %d listed twice", ErrInvalidConfig, p.Seat)
		}
		if p.Stack < 0 {
			return nil, fmt.Errorf("%w: seat %d has negative stack", ErrInvalidConfig, p.Seat)
		}
		p.resetForNewHand()
		if !p.Eliminated && p.Stack > 0 {
			p.Dealt = true
			dealt++
		}
		h.players = append(h.players, &p)
		h.bySeat[p.Seat] = &p
	}
	if dealt < 2 {
		return nil, fmt.Errorf("%w: %d can be dealt in", ErrNotEnoughPlayers, dealt)
	}
	sort.Slice(h.players, func(i, j int) bool { return h.players[i].Seat < h.players[j].Seat })
	h.nodes = buildRing(h.players)
	h.ledger = NewLedger(h.players)
	h.headsUp = dealt == 2

	h.seed = cfg.Seed
	if h.seed == 0 {
		h.seed = time.Now().UnixNano()
	}
	deck, err := card.NewStackedDeck(cfg.DeckOverride, h.seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	h.deck = deck

	h.selectButton(button)
	h.selectBlindsByButton()
	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}
	if err := h.postForcedBets(); err != nil {
		return nil, err
	}

	if err := h.startStreetLocked(StreetPreflop); err != nil {
		return nil, err
	}
	if err := h.advanceLocked(); err != nil {
		h.abortLocked(err.Error())
		return nil, err
	}
	return h, nil
}

func (h *Hand) selectButton(button uint16) {
	if _, ok := h.nodes[button]; ok {
		h.button = button
		return
	}
	best := -1
	for seat := range h.nodes {
		k := clockwiseKey(seat, button)
		if best < 0 || k < best {
			best = k
			h.button = seat
		}
	}
}

func (h *Hand) selectBlindsByButton() {
	btn := h.nodes[h.button]
	if h.headsUp {
		// Heads-Up: button posts the small blind
		h.sbSeat = btn.Seat
		h.bbSeat = btn.Next.Seat
		return
	}
	h.sbSeat = btn.Next.Seat
	h.bbSeat = btn.Next.Next.Seat
}

// dealHoleCards deals one card at a time, twice round, starting left of the button.
func (h *Hand) dealHoleCards() error {
	start := h.nodes[h.button].Next
	for i := 0; i < 2; i++ {
		var err error
		start.WalkAll(func(cur *seatNode) {
			if err != nil {
				return
			}
			var c card.Card
			if c, err = h.deck.DealOne(); err == nil {
				cur.Player.HoleCards = append(cur.Player.HoleCards, c)
			}
		})
		if err != nil {
			return fmt.Errorf("deal hole cards: %w", err)
		}
	}
	return nil
}

func (h *Hand) postForcedBets() error {
	if h.cfg.Ante > 0 {
		for _, p := range h.players {
			if !p.Dealt {
				continue
			}
			if _, err := h.ledger.Contribute(p.Seat, h.cfg.Ante); err != nil {
				return err
			}
		}
		// antes are dead money, not part of the preflop bet
		h.ledger.ResetStreet()
	}
	if h.cfg.SmallBlind > 0 {
		if _, err := h.ledger.Contribute(h.sbSeat, h.cfg.SmallBlind); err != nil {
			return err
		}
	}
	_, err := h.ledger.Contribute(h.bbSeat, h.cfg.BigBlind)
	return err
}

func (h *Hand) startStreetLocked(street Street) error {
	if street != StreetPreflop {
		h.ledger.ResetStreet()
		if n := boardCardsFor(street); n > 0 {
			cards, err := h.deck.Deal(n)
			if err != nil {
				return fmt.Errorf("deal %s: %w", street, err)
			}
			h.board.Add(cards...)
		}
	}
	h.street = street
	h.state = stateForStreet(street)

	var highest int64
	for _, p := range h.players {
		p.LastAction = ActionNone
		if p.Dealt && p.CurrentBet > highest {
			highest = p.CurrentBet
		}
	}
	h.round = newBettingRound(street, highest)
	h.round.open(h.players)

	start := h.nodes[h.button].Next
	if street == StreetPreflop {
		start = h.nodes[h.bbSeat].Next
	}
	h.round.CurrentActor = h.round.nextActor(start)
	return nil
}

// advanceLocked moves through every street whose betting is already
// settled, dealing the board, and settles the hand after the river.
func (h *Hand) advanceLocked() error {
	for h.round.Settled() {
		if h.street == StreetRiver {
			return h.showdownLocked()
		}
		if err := h.startStreetLocked(h.street + 1); err != nil {
			return err
		}
	}
	return nil
}

// LegalActions is a pure projection of current state. Seats other than the
// current actor get an empty set. BetRaise stays legal at the raise cap; it
// is then played as CheckCall.
func (h *Hand) LegalActions(seat uint16) ([]ActionKind, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settlement != nil {
		return nil, ErrHandSettled
	}
	return h.legalActionsLocked(seat), nil
}

func (h *Hand) legalActionsLocked(seat uint16) []ActionKind {
	if h.settlement != nil || h.round == nil || seat != h.round.CurrentActor {
		return nil
	}
	return []ActionKind{ActionFold, ActionCheckCall, ActionBetRaise}
}

// SubmitAction applies kind for seat. amount is only read for BetRaise in
// variable bet mode, where it is the raise size above the current highest bet.
func (h *Hand) SubmitAction(seat uint16, kind ActionKind, amount int64) (Observation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settlement != nil {
		return Observation{}, ErrHandSettled
	}
	p := h.bySeat[seat]
	if p == nil || !p.Dealt {
		return h.observationLocked(seat), illegal(seat, kind, "seat is not in the hand")
	}
	if seat != h.round.CurrentActor {
		return h.observationLocked(seat), illegal(seat, kind, "not this seat's turn (current %d)", h.round.CurrentActor)
	}
	if !kind.Valid() {
		return h.observationLocked(seat), illegal(seat, kind, "unknown action kind %d", kind)
	}

	applied := kind
	var raiseBy int64
	if kind == ActionBetRaise {
		if !h.canRaiseLocked(p) {
			applied = ActionCheckCall
		} else {
			var err error
			if raiseBy, err = h.raiseSizeLocked(p, amount); err != nil {
				return h.observationLocked(seat), err
			}
		}
	}

	rec := ActionRecord{
		Seq:       len(h.actions) + 1,
		Street:    h.street,
		Seat:      seat,
		Requested: kind,
		Applied:   applied,
	}
	if err := h.applyLocked(p, applied, raiseBy, &rec); err != nil {
		h.abortLocked(err.Error())
		return h.observationLocked(seat), err
	}
	return h.observationLocked(seat), nil
}

// canRaiseLocked reports whether a BetRaise from p would actually raise.
func (h *Hand) canRaiseLocked(p *PlayerState) bool {
	if h.cfg.raiseCapped(h.round.RaisesThisStreet) {
		return false
	}
	if p.Stack <= h.round.HighestBet-p.CurrentBet {
		return false
	}
	for _, o := range h.players {
		if o.Seat != p.Seat && o.CanAct() {
			return true
		}
	}
	return false
}

// raiseBoundsLocked is the [min, max] raise size above the highest bet.
func (h *Hand) raiseBoundsLocked(p *PlayerState) (int64, int64) {
	maxRaise := p.Stack - (h.round.HighestBet - p.CurrentBet)
	if maxRaise <= 0 {
		return 0, 0
	}
	if h.cfg.BetMode == BetFixed {
		return min(h.cfg.RaiseIncrement, maxRaise), min(h.cfg.RaiseIncrement, maxRaise)
	}
	return min(h.cfg.MinBet, maxRaise), maxRaise
}

func (h *Hand) raiseSizeLocked(p *PlayerState, amount int64) (int64, error) {
	lo, hi := h.raiseBoundsLocked(p)
	if h.cfg.BetMode == BetFixed {
		return hi, nil
	}
	if amount < lo || amount > hi {
		return 0, illegal(p.Seat, ActionBetRaise, "raise %d outside [%d, %d]", amount, lo, hi)
	}
	return amount, nil
}

func (h *Hand) applyLocked(p *PlayerState, kind ActionKind, raiseBy int64, rec *ActionRecord) error {
	p.LastAction = kind
	switch kind {
	case ActionFold:
		p.Folded = true
		h.round.acted(p.Seat)
	case ActionCheckCall:
		moved, err := h.ledger.Contribute(p.Seat, h.round.HighestBet-p.CurrentBet)
		if err != nil {
			return err
		}
		rec.Amount = moved
		h.round.acted(p.Seat)
	case ActionBetRaise:
		moved, err := h.ledger.Contribute(p.Seat, h.round.HighestBet-p.CurrentBet+raiseBy)
		if err != nil {
			return err
		}
		rec.Amount = moved
		if p.CurrentBet > h.round.HighestBet {
			h.round.HighestBet = p.CurrentBet
			h.round.RaisesThisStreet++
			h.round.LastAggressor = p.Seat
			h.round.reopen(p.Seat, h.players)
		} else {
			h.round.acted(p.Seat)
		}
	}
	rec.HighestBet = h.round.HighestBet
	rec.AllIn = p.AllIn
	h.actions = append(h.actions, *rec)

	if h.activeCountLocked() == 1 {
		return h.earlyFoldLocked()
	}
	if h.round.Settled() {
		return h.advanceLocked()
	}
	h.round.CurrentActor = h.round.nextActor(h.nodes[p.Seat].Next)
	if h.round.CurrentActor == InvalidSeat {
		return ErrInvalidState("pending seat not found on ring")
	}
	return nil
}

func (h *Hand) activeCountLocked() int {
	n := 0
	for _, p := range h.players {
		if p.IsActive() {
			n++
		}
	}
	return n
}

func (h *Hand) earlyFoldLocked() error {
	var winner *PlayerState
	for _, p := range h.players {
		if p.IsActive() {
			winner = p
			break
		}
	}
	if winner == nil {
		return ErrInvalidState("no winner in early-fold state")
	}
	h.state = StateEarlyFold
	pot := h.ledger.Pot()
	h.ledger.ResetStreet()
	payouts, err := h.ledger.Payout([]uint16{winner.Seat}, h.button)
	if err != nil {
		return err
	}
	h.finishLocked(&Settlement{
		Outcome: OutcomeEarlyFold,
		Board:   h.board.Clone(),
		Pot:     pot,
		Winners: []uint16{winner.Seat},
		Payouts: payouts,
	})
	return nil
}

// showdownLocked 需要在 board 已经补齐到 5 张之后调用
func (h *Hand) showdownLocked() error {
	h.street = StreetShowdown
	h.state = StateShowdown
	if len(h.board) != 5 {
		return ErrInvalidState(fmt.Sprintf("showdown with %d board cards", len(h.board)))
	}
	h.ledger.ResetStreet()

	results := make([]ShowdownResult, 0, len(h.players))
	var best HandRank
	for _, p := range h.players {
		if !p.IsActive() {
			continue
		}
		all := make([]card.Card, 0, 7)
		all = append(all, p.HoleCards...)
		all = append(all, h.board...)
		rank, err := Evaluate(all)
		if err != nil {
			return err
		}
		if len(results) == 0 || rank.Beats(best) {
			best = rank
		}
		results = append(results, ShowdownResult{
			Seat:      p.Seat,
			HoleCards: append([]card.Card(nil), p.HoleCards...),
			Rank:      rank,
		})
	}

	winners := make([]uint16, 0, 2)
	for i := range results {
		if results[i].Rank.Compare(best) == 0 {
			results[i].Winner = true
			winners = append(winners, results[i].Seat)
		}
	}
	pot := h.ledger.Pot()
	payouts, err := h.ledger.Payout(winners, h.button)
	if err != nil {
		return err
	}
	h.finishLocked(&Settlement{
		Outcome:  OutcomeShowdown,
		Board:    h.board.Clone(),
		Pot:      pot,
		Winners:  winners,
		Payouts:  payouts,
		Showdown: results,
	})
	return nil
}

// Abort ends the hand without a winner and refunds every contribution.
func (h *Hand) Abort(reason string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.settlement != nil {
		return ErrHandSettled
	}
	h.abortLocked(reason)
	return nil
}

func (h *Hand) abortLocked(reason string) {
	if h.settlement != nil {
		return
	}
	pot := h.ledger.Pot()
	h.finishLocked(&Settlement{
		Outcome: OutcomeAborted,
		Reason:  reason,
		Board:   h.board.Clone(),
		Pot:     pot,
		Payouts: h.ledger.Refund(),
	})
}

func (h *Hand) finishLocked(s *Settlement) {
	h.settlement = s
	h.state = StateSettled
	if h.round != nil {
		h.round.CurrentActor = InvalidSeat
	}
}

func (h *Hand) IsOver() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settlement != nil
}

// Winners is valid once the hand is over; aborted hands have none.
func (h *Hand) Winners() ([]uint16, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.settlement == nil {
		return nil, false
	}
	return append([]uint16(nil), h.settlement.Winners...), true
}

func (h *Hand) Settlement() *Settlement {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settlement
}

func (h *Hand) State() HandState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Hand) CurrentActor() uint16 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.settlement != nil || h.round == nil {
		return InvalidSeat
	}
	return h.round.CurrentActor
}

func (h *Hand) Button() uint16 { return h.button }

func (h *Hand) Seed() int64 { return h.seed }

// Players returns copies of every seat passed to NewHand, in seat order.
func (h *Hand) Players() []PlayerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]PlayerState, 0, len(h.players))
	for _, p := range h.players {
		out = append(out, p.clone())
	}
	return out
}

func (h *Hand) Actions() []ActionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ActionRecord(nil), h.actions...)
}

// ChipTotal is Σ stacks + pot over every seat; constant for the whole hand.
func (h *Hand) ChipTotal() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ledger.Total()
}

// DeckCount returns undealt and dealt card counts.
func (h *Hand) DeckCount() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deck.Len(), h.deck.Dealt()
}
