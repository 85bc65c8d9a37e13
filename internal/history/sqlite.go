package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultSQLiteName = "holdem_history.db"

type SQLiteService struct {
	sqlStore
}

// DefaultSQLitePath is the per-user database used when no path is configured.
func DefaultSQLitePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "holdem-tourney", DefaultSQLiteName), nil
}

func NewSQLiteService(ctx context.Context, dbPath string, recentLimit int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		p, err := DefaultSQLitePath()
		if err != nil {
			return nil, fmt.Errorf("empty sqlite database path: %w", err)
		}
		dbPath = p
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, closeOnErr(db, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, closeOnErr(db, err)
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		return nil, closeOnErr(db, err)
	}
	return &SQLiteService{sqlStore{db: db, recentLimit: recentLimit}}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS history_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id TEXT NOT NULL DEFAULT '',
    hand_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    payload_json TEXT NOT NULL,
    server_ts_ms INTEGER,
    created_at_ms INTEGER NOT NULL,
    UNIQUE (hand_id, seq)
)`,
		`CREATE INDEX IF NOT EXISTS idx_history_events_hand_seq ON history_events(hand_id, seq)`,
		`
CREATE TABLE IF NOT EXISTS history_hands (
    hand_id TEXT PRIMARY KEY,
    table_id TEXT NOT NULL DEFAULT '',
    played_at_ms INTEGER NOT NULL,
    outcome TEXT NOT NULL DEFAULT '',
    pot INTEGER NOT NULL DEFAULT 0,
    winners_json TEXT NOT NULL DEFAULT '[]',
    summary TEXT NOT NULL DEFAULT '',
    event_count INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE INDEX IF NOT EXISTS idx_history_hands_recent ON history_hands(played_at_ms DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_history_hands_table ON history_hands(table_id, played_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
