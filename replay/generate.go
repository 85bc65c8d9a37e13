package replay

import (
	"errors"
	"fmt"

	"holdem-tourney/holdem"
	"holdem-tourney/table"
)

const (
	tapeVersion    = 1
	defaultTableID = "replay_local"
)

// Generate replays spec through the engine and records the same events a
// table would emit. It stops at the first step that does not fit the hand.
// If the actions run out before the hand ends the tape is returned with
// Complete unset.
func Generate(spec HandSpec) (*Tape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	h, err := holdem.NewHand(ns.cfg, ns.players, ns.button)
	if err != nil {
		return nil, specError("engine_init_failed", "%v", err)
	}

	b := newTapeBuilder(defaultTableID, defaultTableID+"_r1", ns.hero, h)
	b.push(table.EventHandStarted, nil, nil)

	street := holdem.StreetPreflop
	for i, a := range ns.actions {
		step := int32(i)
		if h.IsOver() {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "no_action_expected",
				Message:   "hand is already complete; no further actions are allowed",
			}
		}
		actor := h.CurrentActor()
		before := h.Observation(actor)
		if a.hasStreet && a.street != before.Street {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "street_mismatch",
				Message:   fmt.Sprintf("expected street %s, got %s", before.Street, a.street),
				Expected:  expectedFor(before),
			}
		}
		if a.seat != actor {
			return nil, &ReplayError{
				StepIndex: step,
				Reason:    "out_of_turn",
				Message:   fmt.Sprintf("expected seat %d, got %d", actor, a.seat),
				Expected:  expectedFor(before),
			}
		}
		if _, err := h.SubmitAction(a.seat, a.kind, a.amount); err != nil {
			reason := "action_apply_failed"
			if errors.Is(err, holdem.ErrIllegalAction) {
				reason = "illegal_action"
			}
			return nil, &ReplayError{StepIndex: step, Reason: reason, Message: err.Error(), Expected: expectedFor(before)}
		}

		actions := h.Actions()
		rec := actions[len(actions)-1]
		b.push(table.EventActionApplied, &rec, nil)
		for _, view := range table.StreetViews(street, h.Observation(ns.hero)) {
			street = view.Street
			b.pushView(table.EventStreetAdvanced, view)
		}
	}

	for _, view := range table.StreetViews(street, h.Observation(ns.hero)) {
		street = view.Street
		b.pushView(table.EventStreetAdvanced, view)
	}

	tape := &Tape{
		TapeVersion: tapeVersion,
		TableID:     b.tableID,
		HandID:      b.handID,
		HeroSeat:    ns.hero,
		Button:      h.Button(),
		Seed:        h.Seed(),
	}
	if h.IsOver() {
		tape.Complete = true
		tape.Settlement = h.Settlement()
		b.push(table.EventHandSettled, nil, tape.Settlement)
	}
	tape.Events = b.events
	tape.Players = h.Players()
	return tape, nil
}

func expectedFor(obs holdem.Observation) *ExpectedState {
	legal := make([]string, len(obs.LegalActions))
	for i, k := range obs.LegalActions {
		legal[i] = k.String()
	}
	return &ExpectedState{
		Seat:         obs.Seat,
		Street:       obs.Street.String(),
		LegalActions: legal,
		ToCall:       obs.ToCall,
		MinRaise:     obs.MinRaise,
		MaxRaise:     obs.MaxRaise,
	}
}

type tapeBuilder struct {
	tableID string
	handID  string
	hero    uint16
	hand    *holdem.Hand
	seq     uint64
	events  []table.Event
}

func newTapeBuilder(tableID, handID string, hero uint16, h *holdem.Hand) *tapeBuilder {
	return &tapeBuilder{
		tableID: tableID,
		handID:  handID,
		hero:    hero,
		hand:    h,
		events:  make([]table.Event, 0, 64),
	}
}

// push records an event. Timestamps are left zero so tapes of the same
// spec compare equal.
func (b *tapeBuilder) push(typ table.EventType, rec *holdem.ActionRecord, s *holdem.Settlement) {
	b.seq++
	b.events = append(b.events, table.Event{
		Seq:         b.seq,
		Type:        typ,
		TableID:     b.tableID,
		HandID:      b.handID,
		Action:      rec,
		Observation: b.hand.Observation(b.hero),
		Settlement:  s,
	})
}

func (b *tapeBuilder) pushView(typ table.EventType, obs holdem.Observation) {
	b.seq++
	b.events = append(b.events, table.Event{
		Seq:         b.seq,
		Type:        typ,
		TableID:     b.tableID,
		HandID:      b.handID,
		Observation: obs,
	})
}
