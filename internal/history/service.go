// Package history persists table events and per-hand summaries so hands
// can be listed and replayed after the fact.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"holdem-tourney/holdem"
	"holdem-tourney/table"
)

const (
	defaultRecentLimit = 200
	maxListLimit       = 100
)

type Mode string

const (
	ModeMemory   Mode = "memory"
	ModeNoop     Mode = "noop"
	ModeSQLite   Mode = "sqlite"
	ModePostgres Mode = "postgres"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnknownMode = errors.New("unknown history mode")
)

type Service interface {
	Close() error
	AppendEvent(ctx context.Context, e table.Event) error
	RecordHand(ctx context.Context, h HandRecord) error
	// ListRecent returns the latest hands first. An empty tableID lists every table.
	ListRecent(ctx context.Context, tableID string, limit int) ([]HandRecord, error)
	GetHandEvents(ctx context.Context, handID string) ([]table.Event, error)
}

// HandRecord is the summary row kept for every finished hand.
type HandRecord struct {
	HandID     string    `json:"hand_id"`
	TableID    string    `json:"table_id"`
	PlayedAt   time.Time `json:"played_at"`
	Outcome    string    `json:"outcome"`
	Pot        int64     `json:"pot"`
	Winners    []uint16  `json:"winners"`
	Summary    string    `json:"summary"`
	EventCount int       `json:"event_count"`
}

// RecordFromEvent builds the summary of a settled or aborted hand.
func RecordFromEvent(e table.Event, eventCount int) HandRecord {
	rec := HandRecord{
		HandID:     e.HandID,
		TableID:    e.TableID,
		PlayedAt:   e.At,
		Winners:    []uint16{},
		EventCount: eventCount,
	}
	if s := e.Settlement; s != nil {
		rec.Outcome = s.Outcome.String()
		rec.Pot = s.Pot
		rec.Summary = s.Summary()
		if s.Outcome != holdem.OutcomeAborted {
			rec.Winners = append(rec.Winners, s.Winners...)
		}
	}
	return rec
}

type Options struct {
	Mode        Mode
	DSN         string // postgres
	SQLitePath  string
	RecentLimit int // hands kept, 0 => 200, <0 => unlimited
}

// NewService opens the store selected by opts.Mode.
func NewService(ctx context.Context, opts Options) (Service, error) {
	if opts.RecentLimit == 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	switch Mode(strings.ToLower(strings.TrimSpace(string(opts.Mode)))) {
	case "", ModeMemory:
		return NewMemoryService(opts.RecentLimit), nil
	case ModeNoop:
		return noopService{}, nil
	case ModeSQLite, "local":
		svc, err := NewSQLiteService(ctx, opts.SQLitePath, opts.RecentLimit)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case ModePostgres, "pg":
		svc, err := NewPostgresService(ctx, opts.DSN, opts.RecentLimit)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
}

type noopService struct{}

func (noopService) Close() error                                   { return nil }
func (noopService) AppendEvent(context.Context, table.Event) error { return nil }
func (noopService) RecordHand(context.Context, HandRecord) error   { return nil }

func (noopService) ListRecent(context.Context, string, int) ([]HandRecord, error) {
	return []HandRecord{}, nil
}

func (noopService) GetHandEvents(context.Context, string) ([]table.Event, error) {
	return nil, ErrNotFound
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return 20
	}
	return limit
}
