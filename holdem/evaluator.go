package holdem

import (
	"fmt"
	"sort"
	"strings"

	"holdem-tourney/card"
)

// HandRank is the value of the best five-card hand. Ranks compare by
// Category first, then Kickers element-wise. Unused kicker slots are 0.
type HandRank struct {
	Category Category
	Kickers  [5]card.Rank
}

// Score packs the rank into a uint32 that orders exactly like Compare.
func (r HandRank) Score() uint32 {
	s := uint32(r.Category) << 20
	for i, k := range r.Kickers {
		s |= uint32(k) << (16 - 4*uint(i))
	}
	return s
}

// Compare returns -1, 0 or 1.
func (r HandRank) Compare(o HandRank) int {
	a, b := r.Score(), o.Score()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r HandRank) Beats(o HandRank) bool { return r.Compare(o) > 0 }

func (r HandRank) String() string {
	k := r.Kickers
	switch r.Category {
	case CategoryStraightFlush:
		return fmt.Sprintf("straight flush, %s high", k[0].Name(false))
	case CategoryFourOfAKind:
		return fmt.Sprintf("four of a kind, %s", k[0].Name(true))
	case CategoryFullHouse:
		return fmt.Sprintf("full house, %s over %s", k[0].Name(true), k[1].Name(true))
	case CategoryFlush:
		return fmt.Sprintf("flush, %s high", k[0].Name(false))
	case CategoryStraight:
		return fmt.Sprintf("straight, %s high", k[0].Name(false))
	case CategoryThreeOfAKind:
		return fmt.Sprintf("three of a kind, %s", k[0].Name(true))
	case CategoryTwoPair:
		return fmt.Sprintf("two pair, %s and %s", k[0].Name(true), k[1].Name(true))
	case CategoryOnePair:
		return fmt.Sprintf("pair of %s", k[0].Name(true))
	case CategoryHighCard:
		return fmt.Sprintf("high card %s", k[0].Name(false))
	}
	return "unknown"
}

type rankGroup struct {
	rank  card.Rank
	count int
}

// Evaluate returns the best five-card rank among 5 to 7 distinct cards.
// Aces are high only: A-2-3-4-5 is not a straight.
func Evaluate(cards []card.Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandRank{}, fmt.Errorf("%w: need 5 to 7 cards, got %d", ErrInvalidCards, len(cards))
	}
	var seen [64]bool
	var counts [card.Ace + 1]int
	var bySuit [4][]card.Rank
	for _, c := range cards {
		if !c.Valid() {
			return HandRank{}, fmt.Errorf("%w: invalid card 0x%02x", ErrInvalidCards, byte(c))
		}
		if seen[c] {
			return HandRank{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidCards, c)
		}
		seen[c] = true
		counts[c.Rank()]++
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c.Rank())
	}

	// flush: the top five ranks of any suit holding five or more cards
	var flushRanks []card.Rank
	for _, ranks := range bySuit {
		if len(ranks) >= 5 {
			flushRanks = append([]card.Rank(nil), ranks...)
			sort.Slice(flushRanks, func(i, j int) bool { return flushRanks[i] > flushRanks[j] })
			break
		}
	}
	if flushRanks != nil {
		if high, ok := straightHigh(flushRanks); ok {
			return straightRank(CategoryStraightFlush, high), nil
		}
	}

	groups := make([]rankGroup, 0, 7)
	unique := make([]card.Rank, 0, 7)
	for r := card.Ace; r >= card.Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: counts[r]})
			unique = append(unique, r)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	top := groups[0]
	var second rankGroup
	if len(groups) > 1 {
		second = groups[1]
	}

	switch {
	case top.count == 4:
		return HandRank{Category: CategoryFourOfAKind, Kickers: [5]card.Rank{top.rank, highestExcept(unique, top.rank)}}, nil
	case top.count == 3 && second.count >= 2:
		return HandRank{Category: CategoryFullHouse, Kickers: [5]card.Rank{top.rank, second.rank}}, nil
	case flushRanks != nil:
		var k [5]card.Rank
		copy(k[:], flushRanks[:5])
		return HandRank{Category: CategoryFlush, Kickers: k}, nil
	}
	if high, ok := straightHigh(unique); ok {
		return straightRank(CategoryStraight, high), nil
	}

	switch {
	case top.count == 3:
		rest := kickersExcept(unique, 2, top.rank)
		return HandRank{Category: CategoryThreeOfAKind, Kickers: [5]card.Rank{top.rank, rest[0], rest[1]}}, nil
	case top.count == 2 && second.count == 2:
		rest := kickersExcept(unique, 1, top.rank, second.rank)
		return HandRank{Category: CategoryTwoPair, Kickers: [5]card.Rank{top.rank, second.rank, rest[0]}}, nil
	case top.count == 2:
		rest := kickersExcept(unique, 3, top.rank)
		return HandRank{Category: CategoryOnePair, Kickers: [5]card.Rank{top.rank, rest[0], rest[1], rest[2]}}, nil
	}
	var k [5]card.Rank
	copy(k[:], unique[:5])
	return HandRank{Category: CategoryHighCard, Kickers: k}, nil
}

// MustEvaluate panics on invalid input. For fixtures.
func MustEvaluate(cards []card.Card) HandRank {
	r, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return r
}

// straightHigh slides a five-wide window over distinct ranks sorted
// descending and returns the top of the highest run.
func straightHigh(desc []card.Rank) (card.Rank, bool) {
	run := 1
	for i := 1; i < len(desc); i++ {
		switch {
		case desc[i] == desc[i-1]:
			continue
		case desc[i] == desc[i-1]-1:
			run++
		default:
			run = 1
		}
		if run == 5 {
			return desc[i] + 4, true
		}
	}
	return 0, false
}

func straightRank(cat Category, high card.Rank) HandRank {
	return HandRank{Category: cat, Kickers: [5]card.Rank{high, high - 1, high - 2, high - 3, high - 4}}
}

func highestExcept(desc []card.Rank, skip card.Rank) card.Rank {
	for _, r := range desc {
		if r != skip {
			return r
		}
	}
	return 0
}

func kickersExcept(desc []card.Rank, n int, skip ...card.Rank) []card.Rank {
	out := make([]card.Rank, 0, n)
	for _, r := range desc {
		if len(out) == n {
			break
		}
		skipped := false
		for _, s := range skip {
			if r == s {
				skipped = true
				break
			}
		}
		if !skipped {
			out = append(out, r)
		}
	}
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}

// describeCards is used by log-friendly summaries.
func describeCards(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Code()
	}
	return strings.Join(parts, " ")
}
