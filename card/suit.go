package card

type Suit byte

const (
	Spade   Suit = iota // ♠
	Heart               // ♥
	Club                // ♣
	Diamond             // ♦
)

// Suits in encoding order.
var Suits = [4]Suit{Spade, Heart, Club, Diamond}

func (s Suit) Valid() bool { return s <= Diamond }

func (s Suit) String() string {
	switch s {
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	case Heart:
		return "♥"
	case Spade:
		return "♠"
	}
	return "?"
}

func (s Suit) Letter() byte {
	switch s {
	case Diamond:
		return 'd'
	case Club:
		return 'c'
	case Heart:
		return 'h'
	case Spade:
		return 's'
	}
	return '?'
}
