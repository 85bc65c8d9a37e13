package card

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered stock of distinct cards owned by a single hand.
// Len()+Dealt() is always 52.
type Deck struct {
	stock CardList
	dealt int
}

// NewShuffledDeck returns the 52 cards in an order fully determined by seed.
func NewShuffledDeck(seed int64) *Deck {
	stock := CardList(FullDeck())
	stock.Shuffle(rand.New(rand.NewSource(seed)))
	return &Deck{stock: stock}
}

// NewStackedDeck places prefix on top and fills the rest with the remaining
// cards shuffled by seed. An empty prefix is equivalent to NewShuffledDeck.
func NewStackedDeck(prefix []Card, seed int64) (*Deck, error) {
	if len(prefix) > 52 {
		return nil, fmt.Errorf("deck prefix has %d cards", len(prefix))
	}
	seen := make(map[Card]bool, 52)
	for i, c := range prefix {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card at prefix[%d]", i)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s in deck prefix", c)
		}
		seen[c] = true
	}

	rest := make(CardList, 0, 52-len(prefix))
	for _, c := range FullDeck() {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	rest.Shuffle(rand.New(rand.NewSource(seed)))

	stock := make(CardList, 0, 52)
	stock = append(stock, prefix...)
	stock = append(stock, rest...)
	return &Deck{stock: stock}, nil
}

// DealOne moves the top card out of the deck.
func (d *Deck) DealOne() (Card, error) {
	cards, ok := d.stock.PopCards(1)
	if !ok {
		return CardInvalid, ErrDeckExhausted
	}
	d.dealt++
	return cards[0], nil
}

// Deal moves n cards at once. On shortage nothing is dealt.
func (d *Deck) Deal(n int) ([]Card, error) {
	cards, ok := d.stock.PopCards(n)
	if !ok {
		return nil, fmt.Errorf("deal %d of %d: %w", n, d.stock.Count(), ErrDeckExhausted)
	}
	d.dealt += n
	return cards, nil
}

func (d *Deck) Len() int   { return d.stock.Count() }
func (d *Deck) Dealt() int { return d.dealt }

// Remaining returns a copy of the undealt cards, top first.
func (d *Deck) Remaining() []Card { return d.stock.Clone() }
