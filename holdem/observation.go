package holdem

import "holdem-tourney/card"

type SeatView struct {
	Seat        uint16      `json:"seat"`
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Stack       int64       `json:"stack"`
	CurrentBet  int64       `json:"current_bet"`
	Contributed int64       `json:"contributed"`
	Dealt       bool        `json:"dealt"`
	Folded      bool        `json:"folded"`
	AllIn       bool        `json:"all_in"`
	Eliminated  bool        `json:"eliminated"`
	LastAction  ActionKind  `json:"last_action"`
	HoleCards   []card.Card `json:"hole_cards,omitempty"`
}

// Observation is what one seat may see. Other seats' hole cards stay hidden
// until a showdown, and folded hands are never revealed.
type Observation struct {
	Seat  uint16    `json:"seat"` // InvalidSeat for spectators
	State HandState `json:"state"`

	Street         Street `json:"street"`
	Button         uint16 `json:"button"`
	SmallBlindSeat uint16 `json:"small_blind_seat"`
	BigBlindSeat   uint16 `json:"big_blind_seat"`
	CurrentActor   uint16 `json:"current_actor"`

	Board      []card.Card `json:"board"`
	Pot        int64       `json:"pot"`
	HighestBet int64       `json:"highest_bet"`

	RaisesThisStreet int `json:"raises_this_street"`
	MaxRaises        int `json:"max_raises"`

	// Only filled for the viewing seat.
	HoleCards    []card.Card  `json:"hole_cards,omitempty"`
	ToCall       int64        `json:"to_call"`
	MinRaise     int64        `json:"min_raise"`
	MaxRaise     int64        `json:"max_raise"`
	CanRaise     bool         `json:"can_raise"`
	LegalActions []ActionKind `json:"legal_actions,omitempty"`

	Players []SeatView `json:"players"`

	Over    bool     `json:"over"`
	Outcome Outcome  `json:"outcome"`
	Winners []uint16 `json:"winners,omitempty"`
}

// Player returns the view of seat, if present.
func (o Observation) Player(seat uint16) (SeatView, bool) {
	for _, p := range o.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return SeatView{}, false
}

// ActiveCount is the number of seats still contesting the pot.
func (o Observation) ActiveCount() int {
	n := 0
	for _, p := range o.Players {
		if p.Dealt && !p.Folded {
			n++
		}
	}
	return n
}

func (o Observation) IsMyTurn() bool {
	return !o.Over && o.Seat != InvalidSeat && o.Seat == o.CurrentActor
}

func (h *Hand) Observation(seat uint16) Observation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.observationLocked(seat)
}

func (h *Hand) SpectatorObservation() Observation {
	return h.Observation(InvalidSeat)
}

// AsOfStreet rewinds o to the moment s was dealt: the board is cut back and
// the hand reads as live. Chip counts are left as they are. Other seats'
// hole cards are dropped whenever o had to be rewound.
func (o Observation) AsOfStreet(s Street) Observation {
	if s == o.Street && !o.Over {
		return o
	}
	v := o
	v.Street = s
	v.State = stateForStreet(s)
	v.CurrentActor = InvalidSeat
	v.Over = false
	v.Outcome = OutcomeNone
	v.Winners = nil
	if n := boardSize(s); len(o.Board) > n {
		v.Board = append([]card.Card(nil), o.Board[:n]...)
	}
	v.Players = make([]SeatView, len(o.Players))
	for i, p := range o.Players {
		if p.Seat != o.Seat {
			p.HoleCards = nil
		}
		v.Players[i] = p
	}
	return v
}

func (h *Hand) observationLocked(seat uint16) Observation {
	o := Observation{
		Seat:           seat,
		State:          h.state,
		Street:         h.street,
		Button:         h.button,
		SmallBlindSeat: h.sbSeat,
		BigBlindSeat:   h.bbSeat,
		CurrentActor:   InvalidSeat,
		Board:          h.board.Clone(),
		Pot:            h.ledger.Pot(),
		MaxRaises:      h.cfg.MaxRaisesPerStreet,
		Over:           h.settlement != nil,
	}
	if h.round != nil {
		o.HighestBet = h.round.HighestBet
		o.RaisesThisStreet = h.round.RaisesThisStreet
		if h.settlement == nil {
			o.CurrentActor = h.round.CurrentActor
		}
	}
	reveal := h.settlement != nil && h.settlement.Outcome == OutcomeShowdown
	if h.settlement != nil {
		o.Outcome = h.settlement.Outcome
		o.Winners = append([]uint16(nil), h.settlement.Winners...)
	}

	for _, p := range h.players {
		v := SeatView{
			Seat:        p.Seat,
			ID:          p.ID,
			Name:        p.Name,
			Stack:       p.Stack,
			CurrentBet:  p.CurrentBet,
			Contributed: p.Contributed,
			Dealt:       p.Dealt,
			Folded:      p.Folded,
			AllIn:       p.AllIn,
			Eliminated:  p.Eliminated,
			LastAction:  p.LastAction,
		}
		if p.Seat == seat || (reveal && p.IsActive()) {
			v.HoleCards = append([]card.Card(nil), p.HoleCards...)
		}
		o.Players = append(o.Players, v)
	}

	if p := h.bySeat[seat]; p != nil {
		o.HoleCards = append([]card.Card(nil), p.HoleCards...)
		if h.round != nil && h.settlement == nil && p.CanAct() {
			o.ToCall = min(h.round.HighestBet-p.CurrentBet, p.Stack)
			o.CanRaise = h.canRaiseLocked(p)
			if o.CanRaise {
				o.MinRaise, o.MaxRaise = h.raiseBoundsLocked(p)
			}
		}
		o.LegalActions = h.legalActionsLocked(seat)
	}
	return o
}
