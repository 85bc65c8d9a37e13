package tournament

import (
	"sort"
	"time"
)

// Standing is one player's finishing position.
type Standing struct {
	Place      int    `json:"place"`
	Seat       uint16 `json:"seat"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Stack      int64  `json:"stack"`
	Eliminated bool   `json:"eliminated"`
	// hands played before the player was knocked out, -1 if still in
	EliminatedAt int   `json:"eliminated_at"`
	HandsWon     int   `json:"hands_won"`
	BiggestPot   int64 `json:"biggest_pot"`
}

type Elimination struct {
	Hand  int    `json:"hand"`
	Seat  uint16 `json:"seat"`
	Name  string `json:"name"`
	Stack int64  `json:"stack"`
}

type Result struct {
	ID           string        `json:"id"`
	Seed         int64         `json:"seed"`
	Champion     *Standing     `json:"champion,omitempty"`
	Standings    []Standing    `json:"standings"` // finish order, best first
	HandsPlayed  int           `json:"hands_played"`
	BiggestPot   int64         `json:"biggest_pot"`
	Eliminations []Elimination `json:"eliminations"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
}

func (r *Result) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// Standing returns the standing for seat, if any.
func (r *Result) Standing(seat uint16) (Standing, bool) {
	for _, s := range r.Standings {
		if s.Seat == seat {
			return s, true
		}
	}
	return Standing{}, false
}

// standings ranks players still in by stack, then everyone eliminated,
// latest elimination first.
func standings(recs []*record, elims []Elimination) []Standing {
	in := alive(recs)
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].stack != in[j].stack {
			return in[i].stack > in[j].stack
		}
		return in[i].entrant.Seat < in[j].entrant.Seat
	})
	ordered := append([]*record(nil), in...)
	for i := len(elims) - 1; i >= 0; i-- {
		ordered = append(ordered, bySeat(recs, elims[i].Seat))
	}

	out := make([]Standing, len(ordered))
	for i, r := range ordered {
		out[i] = Standing{
			Place:        i + 1,
			Seat:         r.entrant.Seat,
			ID:           r.entrant.ID,
			Name:         r.entrant.Name,
			Stack:        r.stack,
			Eliminated:   r.eliminatedAt >= 0,
			EliminatedAt: r.eliminatedAt,
			HandsWon:     r.handsWon,
			BiggestPot:   r.biggestPot,
		}
	}
	return out
}
