package card

import (
	"fmt"
	"strings"
)

// Card 牌枚举
//
// 编码规则:
// - 高4位: 花色 (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - 低4位: 点数 (2..9, 10:T, 11:J, 12:Q, 13:K, 14:A)
//
// Ace is always high; there is no low-ace encoding.
type Card byte

// Rank 点数 2..14
type Rank byte

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankSymbols = map[Rank]string{
	Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8",
	Nine: "9", Ten: "T", Jack: "J", Queen: "Q", King: "K", Ace: "A",
}

var rankNames = map[Rank][2]string{
	Two: {"two", "twos"}, Three: {"three", "threes"}, Four: {"four", "fours"},
	Five: {"five", "fives"}, Six: {"six", "sixes"}, Seven: {"seven", "sevens"},
	Eight: {"eight", "eights"}, Nine: {"nine", "nines"}, Ten: {"ten", "tens"},
	Jack: {"jack", "jacks"}, Queen: {"queen", "queens"}, King: {"king", "kings"},
	Ace: {"ace", "aces"},
}

func (r Rank) Valid() bool { return r >= Two && r <= Ace }

func (r Rank) String() string {
	if s, ok := rankSymbols[r]; ok {
		return s
	}
	return "?"
}

// Name returns the english rank name, plural when asked ("sixes").
func (r Rank) Name(plural bool) string {
	n, ok := rankNames[r]
	if !ok {
		return "?"
	}
	if plural {
		return n[1]
	}
	return n[0]
}

// New builds a card from rank and suit. Invalid input yields CardInvalid.
func New(r Rank, s Suit) Card {
	if !r.Valid() || !s.Valid() {
		return CardInvalid
	}
	return Card(byte(s)<<4 | byte(r))
}

func (c Card) Valid() bool {
	return c.Rank().Valid() && c.Suit().Valid()
}

// Rank 获取牌面值 2-14 (A=14)
func (c Card) Rank() Rank {
	if c == CardInvalid || c == CardRear {
		return 0
	}
	return Rank(c & 0x0F)
}

// Suit 花色 (0:Spades, 1:Hearts, 2:Clubs, 3:Diamonds)
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsAce() bool {
	return c.Rank() == Ace
}

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardRear {
		return "Rear"
	}
	return c.Rank().String() + c.Suit().String()
}

// Code is the two-letter ascii form accepted by Parse ("As", "Td").
func (c Card) Code() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + string(c.Suit().Letter())
}

// MarshalText keeps cards readable in JSON ("As" instead of a byte).
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("marshal invalid card 0x%02x", byte(c))
	}
	return []byte(c.Code()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Parse 将字符串 (如 "As", "Td", "10h") 转换为 Card
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", s)
	}

	var suit Suit
	switch s[len(s)-1] {
	case 's', 'S':
		suit = Spade
	case 'h', 'H':
		suit = Heart
	case 'c', 'C':
		suit = Club
	case 'd', 'D':
		suit = Diamond
	default:
		return CardInvalid, fmt.Errorf("invalid suit in %q", s)
	}

	rankStr := strings.ToUpper(s[:len(s)-1])
	if rankStr == "10" {
		rankStr = "T"
	}
	for r, sym := range rankSymbols {
		if sym == rankStr {
			return New(r, suit), nil
		}
	}
	return CardInvalid, fmt.Errorf("invalid rank in %q", s)
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses a whitespace or comma separated list ("As Kd, 7c").
func ParseList(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func MustParseList(s string) []Card {
	cards, err := ParseList(s)
	if err != nil {
		panic(err)
	}
	return cards
}
