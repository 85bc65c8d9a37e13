package card

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShuffledDeck_SameSeedSameOrder(t *testing.T) {
	a := NewShuffledDeck(42)
	b := NewShuffledDeck(42)
	c := NewShuffledDeck(43)

	assert.Equal(t, a.Remaining(), b.Remaining())
	assert.NotEqual(t, a.Remaining(), c.Remaining())
	assert.Equal(t, 52, a.Len())
}

func TestDeck_DealConservesCards(t *testing.T) {
	d := NewShuffledDeck(7)
	seen := make(map[Card]bool, 52)
	for i := 0; i < 52; i++ {
		c, err := d.DealOne()
		require.NoError(t, err)
		require.True(t, c.Valid())
		require.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
		require.Equal(t, 52, d.Len()+d.Dealt())
	}

	_, err := d.DealOne()
	require.True(t, errors.Is(err, ErrDeckExhausted))
	require.Equal(t, 52, d.Dealt())
}

func TestDeck_DealShortLeavesDeckUntouched(t *testing.T) {
	d := NewShuffledDeck(1)
	_, err := d.Deal(50)
	require.NoError(t, err)

	_, err = d.Deal(3)
	require.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 50, d.Dealt())
}

func TestNewStackedDeck_PrefixOnTop(t *testing.T) {
	prefix := MustParseList("As Ad 2c 3h")
	d, err := NewStackedDeck(prefix, 9)
	require.NoError(t, err)
	require.Equal(t, 52, d.Len())

	got, err := d.Deal(4)
	require.NoError(t, err)
	assert.Equal(t, prefix, got)
	for _, c := range d.Remaining() {
		assert.NotContains(t, prefix, c)
	}
}

func TestNewStackedDeck_RejectsDuplicates(t *testing.T) {
	_, err := NewStackedDeck(MustParseList("As As"), 1)
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	cases := map[string]Card{
		"As":  CardSpadeA,
		"td":  CardDiamondT,
		"10h": CardHeartT,
		"2c":  CardClub2,
		"Kh":  CardHeartK,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, MustParse(got.Code()))
	}

	for _, bad := range []string{"", "A", "1s", "Ax", "Zs"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestCard_RankSuit(t *testing.T) {
	c := New(Ace, Heart)
	assert.Equal(t, Ace, c.Rank())
	assert.Equal(t, Heart, c.Suit())
	assert.Equal(t, "A♥", c.String())
	assert.Equal(t, CardInvalid, New(1, Spade))
	assert.Len(t, FullDeck(), 52)
}
