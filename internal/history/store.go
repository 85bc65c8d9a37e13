package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"holdem-tourney/internal/codec"
	"holdem-tourney/table"
)

// sqlStore is shared by the SQLite and Postgres services. Queries are
// written with ? placeholders and rebound for the driver.
type sqlStore struct {
	db          *sql.DB
	dollar      bool // $1 placeholders
	recentLimit int
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) rebind(q string) string {
	if !s.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) AppendEvent(ctx context.Context, e table.Event) error {
	if strings.TrimSpace(e.HandID) == "" {
		return fmt.Errorf("append event: empty hand id")
	}
	payload, err := codec.EncodeEventJSON(e)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO history_events (
    table_id, hand_id, seq, event_type, payload_json, server_ts_ms, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id, seq) DO NOTHING
`), e.TableID, e.HandID, int64(e.Seq), string(e.Type), string(payload), nullableMillis(e.At), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("append event hand=%s seq=%d: %w", e.HandID, e.Seq, err)
	}
	return nil
}

func (s *sqlStore) RecordHand(ctx context.Context, h HandRecord) error {
	if strings.TrimSpace(h.HandID) == "" {
		return fmt.Errorf("record hand: empty hand id")
	}
	if h.PlayedAt.IsZero() {
		h.PlayedAt = time.Now().UTC()
	}
	if h.Winners == nil {
		h.Winners = []uint16{}
	}
	winners, err := json.Marshal(h.Winners)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`
INSERT INTO history_hands (
    hand_id, table_id, played_at_ms, outcome, pot, winners_json, summary, event_count
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id) DO UPDATE
SET
    table_id = EXCLUDED.table_id,
    played_at_ms = EXCLUDED.played_at_ms,
    outcome = EXCLUDED.outcome,
    pot = EXCLUDED.pot,
    winners_json = EXCLUDED.winners_json,
    summary = EXCLUDED.summary,
    event_count = EXCLUDED.event_count
`), h.HandID, h.TableID, h.PlayedAt.UTC().UnixMilli(), h.Outcome, h.Pot, string(winners), h.Summary, h.EventCount); err != nil {
		return fmt.Errorf("record hand %s: %w", h.HandID, err)
	}

	if s.recentLimit > 0 {
		if err := s.trimLocked(ctx, tx); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	return tx.Commit()
}

// trimLocked drops hands, and their events, beyond recentLimit.
func (s *sqlStore) trimLocked(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, s.rebind(`
SELECT hand_id
FROM history_hands
ORDER BY played_at_ms DESC, hand_id DESC
LIMIT ? OFFSET ?
`), int64(1)<<31, s.recentLimit)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM history_events WHERE hand_id = ?`), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM history_hands WHERE hand_id = ?`), id); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlStore) ListRecent(ctx context.Context, tableID string, limit int) ([]HandRecord, error) {
	limit = clampLimit(limit)
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT hand_id, table_id, played_at_ms, outcome, pot, winners_json, summary, event_count
FROM history_hands
WHERE (CAST(? AS TEXT) = '' OR table_id = ?)
ORDER BY played_at_ms DESC, hand_id DESC
LIMIT ?
`), tableID, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HandRecord, 0, limit)
	for rows.Next() {
		var (
			h        HandRecord
			playedMs int64
			winners  string
		)
		if err := rows.Scan(&h.HandID, &h.TableID, &playedMs, &h.Outcome, &h.Pot, &winners, &h.Summary, &h.EventCount); err != nil {
			return nil, err
		}
		h.PlayedAt = time.UnixMilli(playedMs).UTC()
		if err := json.Unmarshal([]byte(winners), &h.Winners); err != nil {
			return nil, fmt.Errorf("hand %s winners: %w", h.HandID, err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (s *sqlStore) GetHandEvents(ctx context.Context, handID string) ([]table.Event, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT payload_json
FROM history_events
WHERE hand_id = ?
ORDER BY seq ASC
`), handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []table.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		e, err := codec.DecodeEventJSON([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("hand %s: %w", handID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events, nil
}

func nullableMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixMilli()
}

func closeOnErr(db *sql.DB, err error) error {
	if cerr := db.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
