package npc

import (
	"math/rand"

	poker "github.com/paulhankin/poker"

	"holdem-tourney/card"
)

// phSign is +1 when a larger library score is the stronger hand, -1
// otherwise. Measured once against a royal flush.
var phSign = calibrate()

func calibrate() int {
	royal := [7]poker.Card{
		mustPH(card.CardSpadeA), mustPH(card.CardSpadeK), mustPH(card.CardSpadeQ),
		mustPH(card.CardSpadeJ), mustPH(card.CardSpadeT), mustPH(card.CardHeart2), mustPH(card.CardClub3),
	}
	junk := [7]poker.Card{
		mustPH(card.CardSpade2), mustPH(card.CardHeart4), mustPH(card.CardClub6),
		mustPH(card.CardDiamond8), mustPH(card.CardSpadeT), mustPH(card.CardHeartQ), mustPH(card.CardClub3),
	}
	if poker.Eval7(&royal) > poker.Eval7(&junk) {
		return 1
	}
	return -1
}

func toPH(c card.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit() {
	case card.Club:
		s = poker.Club
	case card.Diamond:
		s = poker.Diamond
	case card.Heart:
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// library ranks: Ace=1, 2..13
	r := poker.Rank(c.Rank())
	if c.IsAce() {
		r = poker.Rank(1)
	}
	return poker.MakeCard(s, r)
}

func mustPH(c card.Card) poker.Card {
	pc, err := toPH(c)
	if err != nil {
		panic(err)
	}
	return pc
}

// Strength7 is a comparable score for exactly seven cards; higher is stronger.
func Strength7(cards []card.Card) (int, error) {
	var a [7]poker.Card
	for i := range a {
		pc, err := toPH(cards[i])
		if err != nil {
			return 0, err
		}
		a[i] = pc
	}
	return phSign * int(poker.Eval7(&a)), nil
}

// Describe names the best hand in cards using the library's wording.
func Describe(cards []card.Card) (string, error) {
	pcs := make([]poker.Card, len(cards))
	for i, c := range cards {
		pc, err := toPH(c)
		if err != nil {
			return "", err
		}
		pcs[i] = pc
	}
	return poker.Describe(pcs)
}

// Equity estimates the share of the pot hole wins against opponents random
// hands, completing the board by Monte Carlo sampling.
func Equity(hole, board []card.Card, opponents, samples int, rng *rand.Rand) float64 {
	if len(hole) != 2 || len(board) > 5 || opponents < 1 || samples < 1 {
		return 0
	}
	used := make(map[card.Card]bool, 7)
	for _, c := range hole {
		used[c] = true
	}
	for _, c := range board {
		used[c] = true
	}
	stub := make([]poker.Card, 0, 52)
	for _, c := range card.FullDeck() {
		if !used[c] {
			stub = append(stub, mustPH(c))
		}
	}
	need := 5 - len(board) + 2*opponents
	if need > len(stub) {
		return 0
	}

	var mine, theirs [7]poker.Card
	mine[0], mine[1] = mustPH(hole[0]), mustPH(hole[1])
	for i, c := range board {
		mine[2+i] = mustPH(c)
	}

	var won float64
	for s := 0; s < samples; s++ {
		// partial Fisher-Yates over the stub
		for i := 0; i < need; i++ {
			j := i + rng.Intn(len(stub)-i)
			stub[i], stub[j] = stub[j], stub[i]
		}
		k := 0
		for i := 2 + len(board); i < 7; i++ {
			mine[i] = stub[k]
			k++
		}
		me := phSign * int(poker.Eval7(&mine))

		best, ties := true, 0
		for o := 0; o < opponents && best; o++ {
			copy(theirs[2:], mine[2:])
			theirs[0], theirs[1] = stub[k], stub[k+1]
			k += 2
			them := phSign * int(poker.Eval7(&theirs))
			switch {
			case them > me:
				best = false
			case them == me:
				ties++
			}
		}
		if best {
			won += 1 / float64(ties+1)
		}
	}
	return won / float64(samples)
}
