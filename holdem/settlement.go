package holdem

import (
	"fmt"
	"strings"

	"holdem-tourney/card"
)

type ShowdownResult struct {
	Seat      uint16      `json:"seat"`
	HoleCards []card.Card `json:"hole_cards"`
	Rank      HandRank    `json:"rank"`
	Winner    bool        `json:"winner"`
}

// Settlement is the immutable outcome of a hand. For aborted hands Payouts
// are the refunds.
type Settlement struct {
	Outcome  Outcome          `json:"outcome"`
	Reason   string           `json:"reason,omitempty"`
	Board    []card.Card      `json:"board"`
	Pot      int64            `json:"pot"`
	Winners  []uint16         `json:"winners"`
	Payouts  []Payout         `json:"payouts"`
	Showdown []ShowdownResult `json:"showdown,omitempty"`
}

func (s *Settlement) AmountWon(seat uint16) int64 {
	if s == nil || s.Outcome == OutcomeAborted {
		return 0
	}
	var total int64
	for _, p := range s.Payouts {
		if p.Seat == seat {
			total += p.Amount
		}
	}
	return total
}

func (s *Settlement) IsWinner(seat uint16) bool {
	if s == nil {
		return false
	}
	for _, w := range s.Winners {
		if w == seat {
			return true
		}
	}
	return false
}

// Summary is a one-line description for logs and history rows.
func (s *Settlement) Summary() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s pot=%d", s.Outcome, s.Pot)
	if len(s.Board) > 0 {
		fmt.Fprintf(&b, " board=[%s]", describeCards(s.Board))
	}
	for _, p := range s.Payouts {
		fmt.Fprintf(&b, " seat%d+%d", p.Seat, p.Amount)
	}
	for _, r := range s.Showdown {
		if r.Winner {
			fmt.Fprintf(&b, " (%s)", r.Rank)
			break
		}
	}
	if s.Reason != "" {
		fmt.Fprintf(&b, " reason=%q", s.Reason)
	}
	return b.String()
}
