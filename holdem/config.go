package holdem

import (
	"fmt"

	"holdem-tourney/card"
)

const (
	defaultMaxPlayers         = 9
	defaultMaxRaisesPerStreet = 2
	maxSeatsPerDeck           = 23 // 2*23 hole cards + 5 board fits in 52
)

type Config struct {
	// Table
	MaxPlayers int

	// Blinds / Ante
	SmallBlind int64
	BigBlind   int64
	Ante       int64

	// Raise sizing
	BetMode        BetMode
	RaiseIncrement int64 // fixed mode, 0 => BigBlind
	MinBet         int64 // variable mode lower bound, 0 => BigBlind

	// BetRaise past this count is played as CheckCall. 0 => 2, <0 => no cap.
	MaxRaisesPerStreet int

	// RNG seed (0 => time-based)
	Seed int64

	// Optional: cards placed on top of the deck, rest shuffled by Seed.
	DeckOverride []card.Card
}

// DefaultConfig mirrors the desktop table: 20/40 blinds, two raises a street.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:         defaultMaxPlayers,
		SmallBlind:         20,
		BigBlind:           40,
		BetMode:            BetFixed,
		MaxRaisesPerStreet: defaultMaxRaisesPerStreet,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxPlayers == 0 {
		c.MaxPlayers = defaultMaxPlayers
	}
	if c.RaiseIncrement == 0 {
		c.RaiseIncrement = c.BigBlind
	}
	if c.MinBet == 0 {
		c.MinBet = c.BigBlind
	}
	if c.MaxRaisesPerStreet == 0 {
		c.MaxRaisesPerStreet = defaultMaxRaisesPerStreet
	}
	return c
}

// Validate reports whether c, with defaults applied, can start a hand.
func (c Config) Validate() error {
	return c.withDefaults().validate()
}

func (c Config) validate() error {
	if c.MaxPlayers < 2 || c.MaxPlayers > maxSeatsPerDeck {
		return fmt.Errorf("%w: MaxPlayers must be in [2, %d], got %d", ErrInvalidConfig, maxSeatsPerDeck, c.MaxPlayers)
	}
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("%w: invalid blinds: sb=%d bb=%d", ErrInvalidConfig, c.SmallBlind, c.BigBlind)
	}
	if c.Ante < 0 {
		return fmt.Errorf("%w: Ante must be >= 0", ErrInvalidConfig)
	}
	if c.BetMode != BetFixed && c.BetMode != BetVariable {
		return fmt.Errorf("%w: unknown bet mode %d", ErrInvalidConfig, c.BetMode)
	}
	if c.RaiseIncrement <= 0 || c.MinBet <= 0 {
		return fmt.Errorf("%w: raise sizes must be > 0: increment=%d minBet=%d", ErrInvalidConfig, c.RaiseIncrement, c.MinBet)
	}
	return nil
}

func (c Config) raiseCapped(raises int) bool {
	return c.MaxRaisesPerStreet > 0 && raises >= c.MaxRaisesPerStreet
}
