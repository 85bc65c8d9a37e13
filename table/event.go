package table

import (
	"time"

	"holdem-tourney/holdem"
)

// EventType names what happened at the table.
type EventType string

const (
	EventHandStarted    EventType = "hand_started"
	EventActionApplied  EventType = "action_applied"
	EventStreetAdvanced EventType = "street_advanced"
	EventHandSettled    EventType = "hand_settled"
	EventHandAborted    EventType = "hand_aborted"
)

// Event is emitted to observers in table order. Observation is always the
// spectator view, so other seats' hole cards only appear after a showdown.
type Event struct {
	Seq         uint64               `json:"seq"`
	Type        EventType            `json:"type"`
	TableID     string               `json:"table_id"`
	HandID      string               `json:"hand_id"`
	At          time.Time            `json:"at"`
	Action      *holdem.ActionRecord `json:"action,omitempty"`
	Observation holdem.Observation   `json:"observation"`
	Settlement  *holdem.Settlement   `json:"settlement,omitempty"`
}

// Observer receives table events. OnEvent runs on the table's goroutine
// and must not block for long.
type Observer interface {
	OnEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// StreetViews returns one observation per street dealt after from, oldest
// first. An all-in run-out crosses several streets in a single action and a
// call that goes straight to showdown still deals the rest of the board.
func StreetViews(from holdem.Street, obs holdem.Observation) []holdem.Observation {
	reached := holdem.StreetForBoard(len(obs.Board))
	var out []holdem.Observation
	for s := from + 1; s <= reached; s++ {
		out = append(out, obs.AsOfStreet(s))
	}
	return out
}
