package holdem

import "sort"

// BettingRound is the per-street betting state. A street is settled once
// the pending set is empty: every seat that can still act has acted since
// the last raise and has matched HighestBet.
type BettingRound struct {
	Street           Street
	CurrentActor     uint16
	HighestBet       int64
	RaisesThisStreet int
	LastAggressor    uint16

	pending map[uint16]bool
}

func newBettingRound(street Street, highest int64) *BettingRound {
	return &BettingRound{
		Street:        street,
		CurrentActor:  InvalidSeat,
		HighestBet:    highest,
		LastAggressor: InvalidSeat,
		pending:       make(map[uint16]bool),
	}
}

// open seeds the pending set at street start. A lone seat that can act
// and already matches the highest bet has nothing to decide.
func (b *BettingRound) open(players []*PlayerState) {
	actors := make([]*PlayerState, 0, len(players))
	for _, p := range players {
		if p.CanAct() {
			actors = append(actors, p)
		}
	}
	for _, p := range actors {
		if len(actors) >= 2 || p.CurrentBet < b.HighestBet {
			b.pending[p.Seat] = true
		}
	}
}

// reopen gives every other seat that can act a fresh decision after a raise.
func (b *BettingRound) reopen(raiser uint16, players []*PlayerState) {
	b.pending = make(map[uint16]bool, len(players))
	for _, p := range players {
		if p.Seat != raiser && p.CanAct() {
			b.pending[p.Seat] = true
		}
	}
}

func (b *BettingRound) acted(seat uint16) { delete(b.pending, seat) }

func (b *BettingRound) Settled() bool { return len(b.pending) == 0 }

// Pending lists seats still owed a decision, in seat order.
func (b *BettingRound) Pending() []uint16 {
	out := make([]uint16, 0, len(b.pending))
	for seat := range b.pending {
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// nextActor walks clockwise from start (inclusive) to the first pending seat.
func (b *BettingRound) nextActor(start *seatNode) uint16 {
	node := start.WalkOnce(func(n *seatNode) bool { return b.pending[n.Seat] })
	if node == nil {
		return InvalidSeat
	}
	return node.Seat
}
