package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"holdem-tourney/table"
)

const defaultWriteTimeout = 3 * time.Second

// Recorder is a table.Observer that stores every event and a summary row
// when a hand settles or aborts. Store failures are logged, never returned
// to the table.
type Recorder struct {
	svc     Service
	log     zerolog.Logger
	timeout time.Duration

	mu     sync.Mutex
	counts map[string]int
}

func NewRecorder(svc Service, log zerolog.Logger) *Recorder {
	return &Recorder{
		svc:     svc,
		log:     log.With().Str("component", "history").Logger(),
		timeout: defaultWriteTimeout,
		counts:  make(map[string]int),
	}
}

func (r *Recorder) OnEvent(e table.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.svc.AppendEvent(ctx, e); err != nil {
		r.log.Warn().Err(err).Str("hand", e.HandID).Uint64("seq", e.Seq).Msg("append event failed")
	}

	done := e.Type == table.EventHandSettled || e.Type == table.EventHandAborted
	r.mu.Lock()
	r.counts[e.HandID]++
	n := r.counts[e.HandID]
	if done {
		delete(r.counts, e.HandID)
	}
	r.mu.Unlock()
	if !done {
		return
	}

	if err := r.svc.RecordHand(ctx, RecordFromEvent(e, n)); err != nil {
		r.log.Warn().Err(err).Str("hand", e.HandID).Msg("record hand failed")
		return
	}
	r.log.Debug().Str("hand", e.HandID).Int("events", n).Msg("hand recorded")
}
