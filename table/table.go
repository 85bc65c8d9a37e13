package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"holdem-tourney/holdem"
	"holdem-tourney/holdem/npc"
)

const defaultMaxIllegalAttempts = 3

// Seat binds a player's chips to whatever decides for it. A nil Decider
// always checks or calls.
type Seat struct {
	State      holdem.PlayerState
	Decider    npc.Decider
	ThinkDelay time.Duration
}

// Controller drives hands to completion by asking each actor's Decider
// and reporting every step to observers.
type Controller struct {
	ID  string
	cfg holdem.Config

	log                zerolog.Logger
	observers          []Observer
	latency            time.Duration
	maxIllegalAttempts int

	mu        sync.Mutex
	round     uint32
	serverSeq uint64
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithObserver registers an observer. Observers are called in registration order.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithDecisionLatency pauses before every decision to simulate thinking.
func WithDecisionLatency(d time.Duration) Option {
	return func(c *Controller) { c.latency = d }
}

// WithMaxIllegalAttempts sets how many illegal decisions a seat gets before
// it is folded (or checked, when checking is free).
func WithMaxIllegalAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxIllegalAttempts = n
		}
	}
}

func WithTableID(id string) Option {
	return func(c *Controller) { c.ID = id }
}

// New creates a controller for hands played under cfg.
func New(cfg holdem.Config, opts ...Option) *Controller {
	c := &Controller{
		ID:                 "table",
		cfg:                cfg,
		log:                zerolog.Nop(),
		maxIllegalAttempts: defaultMaxIllegalAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "table").Str("table", c.ID).Logger()
	return c
}

func (c *Controller) Config() holdem.Config { return c.cfg }

type handOptions struct {
	id   string
	seed int64
}

// HandOption adjusts a single PlayHand call.
type HandOption func(*handOptions)

// HandID overrides the generated "<table>_r<round>" id.
func HandID(id string) HandOption {
	return func(o *handOptions) { o.id = id }
}

// HandSeed overrides the configured deck seed for one hand.
func HandSeed(seed int64) HandOption {
	return func(o *handOptions) { o.seed = seed }
}

// PlayHand plays one hand. It returns the settlement and every seat's state
// afterwards. If the context is cancelled, or anything other than an illegal
// decision fails, the hand is aborted, contributions are refunded and the
// error is returned alongside the refund settlement.
func (c *Controller) PlayHand(ctx context.Context, seats []Seat, button uint16, opts ...HandOption) (*holdem.Settlement, []holdem.PlayerState, error) {
	var ho handOptions
	for _, opt := range opts {
		opt(&ho)
	}

	cfg := c.cfg
	if ho.seed != 0 {
		cfg.Seed = ho.seed
	}
	states := make([]holdem.PlayerState, len(seats))
	bySeat := make(map[uint16]*Seat, len(seats))
	startStacks := make(map[uint16]int64, len(seats))
	for i := range seats {
		states[i] = seats[i].State
		bySeat[seats[i].State.Seat] = &seats[i]
		startStacks[seats[i].State.Seat] = seats[i].State.Stack
	}

	h, err := holdem.NewHand(cfg, states, button)
	if err != nil {
		return nil, nil, fmt.Errorf("new hand: %w", err)
	}
	handID := ho.id
	if handID == "" {
		handID = c.buildHandID()
	}
	log := c.log.With().Str("hand", handID).Logger()
	log.Debug().Uint16("button", h.Button()).Int64("seed", h.Seed()).Msg("hand started")
	c.emit(Event{Type: EventHandStarted, HandID: handID, Observation: h.SpectatorObservation()})

	street := holdem.StreetPreflop
	var playErr error
	for !h.IsOver() {
		if err := ctx.Err(); err != nil {
			playErr = err
			break
		}
		actor := h.CurrentActor()
		seat := bySeat[actor]
		if seat == nil {
			playErr = holdem.ErrInvalidState(fmt.Sprintf("actor %d has no seat", actor))
			break
		}
		if err := c.act(ctx, log, h, seat); err != nil {
			playErr = err
			break
		}

		actions := h.Actions()
		rec := actions[len(actions)-1]
		obs := h.SpectatorObservation()
		c.emit(Event{Type: EventActionApplied, HandID: handID, Action: &rec, Observation: obs})
		for _, view := range StreetViews(street, obs) {
			street = view.Street
			c.emit(Event{Type: EventStreetAdvanced, HandID: handID, Observation: view})
		}
	}

	if playErr != nil {
		if err := h.Abort(playErr.Error()); err != nil && !errors.Is(err, holdem.ErrHandSettled) {
			log.Error().Err(err).Msg("abort failed")
		}
	} else {
		// blinds alone can put everyone all-in before the first decision
		for _, view := range StreetViews(street, h.SpectatorObservation()) {
			street = view.Street
			c.emit(Event{Type: EventStreetAdvanced, HandID: handID, Observation: view})
		}
	}

	s := h.Settlement()
	players := h.Players()
	if s.Outcome == holdem.OutcomeAborted {
		log.Warn().Str("reason", s.Reason).Msg("hand aborted")
		c.emit(Event{Type: EventHandAborted, HandID: handID, Observation: h.SpectatorObservation(), Settlement: s})
		if playErr == nil {
			playErr = fmt.Errorf("hand %s aborted: %s", handID, s.Reason)
		}
		return s, players, playErr
	}

	log.Debug().Str("summary", s.Summary()).Msg("hand settled")
	c.emit(Event{Type: EventHandSettled, HandID: handID, Observation: h.SpectatorObservation(), Settlement: s})
	for _, p := range players {
		seat := bySeat[p.Seat]
		if learner, ok := seat.Decider.(npc.HandObserver); ok && p.Dealt {
			learner.HandFinished(p.Seat, p.Stack-startStacks[p.Seat])
		}
	}
	return s, players, nil
}

// act asks the seat for a decision until one is accepted. After
// maxIllegalAttempts illegal decisions the seat folds, or checks if free.
func (c *Controller) act(ctx context.Context, log zerolog.Logger, h *holdem.Hand, seat *Seat) error {
	actor := seat.State.Seat
	for attempt := 1; ; attempt++ {
		if err := c.think(ctx, seat.ThinkDelay); err != nil {
			return err
		}
		obs := h.Observation(actor)
		d := npc.Decision{Kind: holdem.ActionCheckCall}
		if seat.Decider != nil {
			d = seat.Decider.Decide(obs)
		}

		_, err := h.SubmitAction(actor, d.Kind, d.Amount)
		if err == nil {
			return nil
		}
		if !errors.Is(err, holdem.ErrIllegalAction) {
			return err
		}
		log.Warn().Err(err).Uint16("seat", actor).Int("attempt", attempt).Msg("illegal decision")
		if attempt < c.maxIllegalAttempts {
			continue
		}

		fallback := holdem.ActionFold
		if obs.ToCall == 0 {
			fallback = holdem.ActionCheckCall
		}
		log.Warn().Uint16("seat", actor).Stringer("action", fallback).Msg("too many illegal decisions, auto-acting")
		_, err = h.SubmitAction(actor, fallback, 0)
		return err
	}
}

func (c *Controller) think(ctx context.Context, extra time.Duration) error {
	d := c.latency + extra
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Controller) emit(e Event) {
	c.mu.Lock()
	c.serverSeq++
	e.Seq = c.serverSeq
	c.mu.Unlock()
	e.TableID = c.ID
	e.At = time.Now().UTC()

	for _, o := range c.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error().Interface("panic", r).Str("event", string(e.Type)).Msg("observer panic")
				}
			}()
			o.OnEvent(e)
		}()
	}
}

func (c *Controller) buildHandID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.round++
	return fmt.Sprintf("%s_r%d", c.ID, c.round)
}
