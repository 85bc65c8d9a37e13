package replay

import (
	"holdem-tourney/holdem"
	"holdem-tourney/table"
)

// HandSpec describes one hand to replay: the table, who sits where, the
// cards that must appear and the actions taken in order.
type HandSpec struct {
	Table   TableSpec    `json:"table"`
	Button  uint16       `json:"button"`
	Seats   []SeatSpec   `json:"seats"`
	Board   []string     `json:"board,omitempty"` // up to 5 cards, flop first
	Deck    []string     `json:"deck,omitempty"`  // full 52-card order, top first
	Actions []ActionSpec `json:"actions"`
	RNG     *RNGSpec     `json:"rng,omitempty"`
}

type TableSpec struct {
	MaxPlayers     int    `json:"max_players"`
	SB             int64  `json:"sb"`
	BB             int64  `json:"bb"`
	Ante           int64  `json:"ante"`
	BetMode        string `json:"bet_mode,omitempty"` // fixed | variable
	RaiseIncrement int64  `json:"raise_increment,omitempty"`
	MaxRaises      int    `json:"max_raises,omitempty"`
}

type SeatSpec struct {
	Seat   uint16   `json:"seat"`
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Stack  int64    `json:"stack"`
	IsHero bool     `json:"is_hero,omitempty"`
	Hole   []string `json:"hole,omitempty"`
}

// ActionSpec is one decision. Street is optional; when set it must match
// the street the hand is on.
type ActionSpec struct {
	Street string `json:"street,omitempty"`
	Seat   uint16 `json:"seat"`
	Type   string `json:"type"`
	Amount int64  `json:"amount,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

// Tape is the replayed hand as the table would have reported it. Events
// carry the hero's view when a hero is marked, the spectator view otherwise.
type Tape struct {
	TapeVersion int                  `json:"tape_version"`
	TableID     string               `json:"table_id"`
	HandID      string               `json:"hand_id"`
	HeroSeat    uint16               `json:"hero_seat"`
	Button      uint16               `json:"button"`
	Seed        int64                `json:"seed"`
	Events      []table.Event        `json:"events"`
	Complete    bool                 `json:"complete"`
	Settlement  *holdem.Settlement   `json:"settlement,omitempty"`
	Players     []holdem.PlayerState `json:"players"`
}
