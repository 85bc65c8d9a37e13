package holdem

import (
	"fmt"
	"sort"
)

// Payout is the chips moved to one seat when a pot is paid or refunded.
type Payout struct {
	Seat   uint16 `json:"seat"`
	Amount int64  `json:"amount"`
}

// Ledger owns the single shared pot and is the only writer of player
// stacks during a hand. Σ stacks + pot never changes.
type Ledger struct {
	players map[uint16]*PlayerState
	pot     int64
}

func NewLedger(players []*PlayerState) *Ledger {
	l := &Ledger{players: make(map[uint16]*PlayerState, len(players))}
	for _, p := range players {
		l.players[p.Seat] = p
	}
	return l
}

// Contribute moves min(amount, stack) from the seat's stack into the pot and
// returns the chips actually moved. A seat left with 0 chips is all-in.
func (l *Ledger) Contribute(seat uint16, amount int64) (int64, error) {
	p := l.players[seat]
	if p == nil {
		return 0, fmt.Errorf("contribute: unknown seat %d", seat)
	}
	if amount <= 0 {
		return 0, nil
	}
	if amount >= p.Stack {
		amount = p.Stack
		p.AllIn = true
	}
	p.Stack -= amount
	p.CurrentBet += amount
	p.Contributed += amount
	l.pot += amount
	return amount, nil
}

// ResetStreet zeroes current bets. Pot and stacks are untouched.
func (l *Ledger) ResetStreet() {
	for _, p := range l.players {
		p.CurrentBet = 0
	}
}

// Payout splits the whole pot evenly among winners. Odd chips go one at a
// time to winners in clockwise order starting left of button.
func (l *Ledger) Payout(winners []uint16, button uint16) ([]Payout, error) {
	if len(winners) == 0 {
		return nil, fmt.Errorf("payout: no winners")
	}
	ordered := append([]uint16(nil), winners...)
	sort.Slice(ordered, func(i, j int) bool {
		return clockwiseKey(ordered[i], button) < clockwiseKey(ordered[j], button)
	})
	for _, seat := range ordered {
		if l.players[seat] == nil {
			return nil, fmt.Errorf("payout: unknown seat %d", seat)
		}
	}

	share := l.pot / int64(len(ordered))
	remainder := l.pot % int64(len(ordered))
	out := make([]Payout, 0, len(ordered))
	for i, seat := range ordered {
		amt := share
		if int64(i) < remainder {
			amt++
		}
		l.players[seat].Stack += amt
		out = append(out, Payout{Seat: seat, Amount: amt})
	}
	l.pot = 0
	return out, nil
}

// Refund hands every seat back what it put in this hand and empties the pot.
func (l *Ledger) Refund() []Payout {
	seats := make([]uint16, 0, len(l.players))
	for seat := range l.players {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })

	out := make([]Payout, 0, len(seats))
	for _, seat := range seats {
		p := l.players[seat]
		if p.Contributed == 0 {
			continue
		}
		p.Stack += p.Contributed
		l.pot -= p.Contributed
		out = append(out, Payout{Seat: seat, Amount: p.Contributed})
		p.Contributed = 0
		p.CurrentBet = 0
		p.AllIn = false
	}
	return out
}

func (l *Ledger) Pot() int64 { return l.pot }

// Total is Σ stacks + pot.
func (l *Ledger) Total() int64 {
	total := l.pot
	for _, p := range l.players {
		total += p.Stack
	}
	return total
}
