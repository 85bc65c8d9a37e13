package tournament

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"holdem-tourney/holdem"
	"holdem-tourney/holdem/npc"
	"holdem-tourney/table"
)

const defaultMaxHands = 10000

var (
	ErrHandLimit       = errors.New("tournament hand limit reached")
	ErrInvalidEntrants = errors.New("invalid entrants")
)

// Entrant is one player registered for a tournament.
type Entrant struct {
	Seat       uint16
	ID         string
	Name       string
	Stack      int64
	Decider    npc.Decider
	ThinkDelay time.Duration
}

type Config struct {
	Hand holdem.Config

	// Players below MinBuyIn before a hand are eliminated. 0 => big blind.
	MinBuyIn int64
	// Safety cap on hands played. 0 => 10000.
	MaxHands int
	// Master seed; every hand's deck seed is derived from it. 0 => time-based.
	Seed int64
	// Button for the first hand.
	Button uint16
}

type Tournament struct {
	id       string
	cfg      Config
	entrants []Entrant
	log      zerolog.Logger
	tableOps []table.Option
}

type Option func(*Tournament)

func WithLogger(l zerolog.Logger) Option {
	return func(t *Tournament) { t.log = l }
}

// WithTableOptions passes options through to the table controller
// (observers, decision latency, illegal-attempt limit).
func WithTableOptions(opts ...table.Option) Option {
	return func(t *Tournament) { t.tableOps = append(t.tableOps, opts...) }
}

// WithID fixes the tournament id instead of a random UUID.
func WithID(id string) Option {
	return func(t *Tournament) { t.id = id }
}

func New(cfg Config, entrants []Entrant, opts ...Option) (*Tournament, error) {
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrants, len(entrants))
	}
	seen := make(map[uint16]bool, len(entrants))
	for _, e := range entrants {
		if e.Seat == holdem.InvalidSeat || seen[e.Seat] {
			return nil, fmt.Errorf("%w: bad or duplicate seat %d", ErrInvalidEntrants, e.Seat)
		}
		if e.Stack < 0 {
			return nil, fmt.Errorf("%w: seat %d has negative stack", ErrInvalidEntrants, e.Seat)
		}
		seen[e.Seat] = true
	}
	if cfg.MinBuyIn <= 0 {
		cfg.MinBuyIn = cfg.Hand.BigBlind
	}
	if cfg.MaxHands <= 0 {
		cfg.MaxHands = defaultMaxHands
	}

	t := &Tournament{
		id:       uuid.NewString(),
		cfg:      cfg,
		entrants: append([]Entrant(nil), entrants...),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	sort.Slice(t.entrants, func(i, j int) bool { return t.entrants[i].Seat < t.entrants[j].Seat })
	t.log = t.log.With().Str("component", "tournament").Str("tournament", t.id).Logger()
	return t, nil
}

func (t *Tournament) ID() string { return t.id }

// Run plays hands until one player is left. Before every hand, players
// whose stack is below MinBuyIn are eliminated; their chips stay with
// them and they are never dealt in again. If every remaining player is
// eliminated at once there is no champion.
func (t *Tournament) Run(ctx context.Context) (*Result, error) {
	seed := t.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	res := &Result{ID: t.id, Seed: seed, StartedAt: time.Now().UTC()}

	tableOpts := append([]table.Option{table.WithLogger(t.log), table.WithTableID(t.id)}, t.tableOps...)
	ctrl := table.New(t.cfg.Hand, tableOpts...)

	recs := make([]*record, len(t.entrants))
	for i, e := range t.entrants {
		recs[i] = &record{entrant: e, stack: e.Stack, eliminatedAt: -1}
	}

	t.log.Info().Int("entrants", len(recs)).Int64("seed", seed).Msg("tournament started")
	var lastButton uint16
	for hand := 0; ; hand++ {
		t.eliminate(res, recs, hand)
		remaining := alive(recs)
		if len(remaining) <= 1 {
			break
		}
		if hand >= t.cfg.MaxHands {
			t.finish(res, recs)
			return res, fmt.Errorf("%w: %d hands", ErrHandLimit, hand)
		}

		var button uint16
		if hand == 0 {
			button = nextSeat(remaining, t.cfg.Button, true)
		} else {
			button = nextSeat(remaining, lastButton, false)
		}
		lastButton = button

		seats := make([]table.Seat, len(remaining))
		for i, r := range remaining {
			seats[i] = table.Seat{
				State: holdem.PlayerState{
					Seat:  r.entrant.Seat,
					ID:    r.entrant.ID,
					Name:  r.entrant.Name,
					Stack: r.stack,
				},
				Decider:    r.entrant.Decider,
				ThinkDelay: r.entrant.ThinkDelay,
			}
		}

		s, players, err := ctrl.PlayHand(ctx, seats, button,
			table.HandSeed(HandSeed(seed, hand)),
			table.HandID(fmt.Sprintf("%s_h%d", t.id, hand+1)))
		if players != nil {
			applyStacks(recs, players)
		}
		if err != nil {
			t.log.Error().Err(err).Int("hand", hand+1).Msg("hand failed")
			res.HandsPlayed = hand
			t.finish(res, recs)
			return res, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		res.HandsPlayed = hand + 1
		if s.Pot > res.BiggestPot {
			res.BiggestPot = s.Pot
		}
		for _, seat := range s.Winners {
			r := bySeat(recs, seat)
			r.handsWon++
			if s.Pot > r.biggestPot {
				r.biggestPot = s.Pot
			}
		}
	}

	t.finish(res, recs)
	if res.Champion != nil {
		t.log.Info().Str("champion", res.Champion.Name).Int("hands", res.HandsPlayed).Msg("tournament finished")
	} else {
		t.log.Info().Int("hands", res.HandsPlayed).Msg("tournament finished without a champion")
	}
	return res, nil
}

type record struct {
	entrant      Entrant
	stack        int64
	eliminatedAt int // hands played before elimination, -1 while alive
	handsWon     int
	biggestPot   int64
}

func (t *Tournament) eliminate(res *Result, recs []*record, hand int) {
	var out []*record
	for _, r := range recs {
		if r.eliminatedAt < 0 && r.stack < t.cfg.MinBuyIn {
			r.eliminatedAt = hand
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return
	}
	// busted together: the bigger stack finishes higher
	sort.SliceStable(out, func(i, j int) bool { return out[i].stack < out[j].stack })
	for _, r := range out {
		res.Eliminations = append(res.Eliminations, Elimination{
			Hand:  hand,
			Seat:  r.entrant.Seat,
			Name:  r.entrant.Name,
			Stack: r.stack,
		})
		t.log.Info().Uint16("seat", r.entrant.Seat).Str("name", r.entrant.Name).
			Int64("stack", r.stack).Int("hand", hand).Msg("eliminated")
	}
}

func (t *Tournament) finish(res *Result, recs []*record) {
	res.EndedAt = time.Now().UTC()
	res.Standings = standings(recs, res.Eliminations)
	remaining := alive(recs)
	if len(remaining) == 1 && len(res.Standings) > 0 {
		champ := res.Standings[0]
		res.Champion = &champ
	}
}

func alive(recs []*record) []*record {
	out := make([]*record, 0, len(recs))
	for _, r := range recs {
		if r.eliminatedAt < 0 {
			out = append(out, r)
		}
	}
	return out
}

func bySeat(recs []*record, seat uint16) *record {
	for _, r := range recs {
		if r.entrant.Seat == seat {
			return r
		}
	}
	return &record{}
}

func applyStacks(recs []*record, players []holdem.PlayerState) {
	for _, p := range players {
		if r := bySeat(recs, p.Seat); r.entrant.Seat == p.Seat {
			r.stack = p.Stack
		}
	}
}

// nextSeat is the first remaining seat clockwise from from, inclusive when
// asked. remaining is sorted by seat.
func nextSeat(remaining []*record, from uint16, inclusive bool) uint16 {
	for _, r := range remaining {
		if r.entrant.Seat > from || (inclusive && r.entrant.Seat == from) {
			return r.entrant.Seat
		}
	}
	return remaining[0].entrant.Seat
}

// HandSeed derives the deck seed of hand n from the tournament seed.
func HandSeed(seed int64, n int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(n))
	sum := blake2b.Sum256(buf[:])
	v := int64(binary.LittleEndian.Uint64(sum[:8]) >> 1)
	if v == 0 {
		v = 1
	}
	return v
}
