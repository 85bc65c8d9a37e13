// Package config resolves process settings: a .env file, then the
// environment, then whatever flags the binary applies on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"holdem-tourney/holdem"
	"holdem-tourney/internal/history"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Table
	SmallBlind     int64
	BigBlind       int64
	Ante           int64
	MaxPlayers     int
	BetMode        string // fixed | variable
	RaiseIncrement int64
	MaxRaises      int

	// Tournament
	Seed          int64
	Players       int
	StartingStack int64
	Lineup        []string // persona ids, cycled over the seats
	MaxHands      int
	ThinkDelay    time.Duration
	PersonaFile   string

	// History ledger
	LedgerMode        string
	LedgerDSN         string
	LedgerSQLitePath  string
	LedgerRecentLimit int

	ListenAddr string
	LogLevel   string
}

func Default() Config {
	return Config{
		SmallBlind:    20,
		BigBlind:      40,
		Ante:          0,
		MaxPlayers:    9,
		BetMode:       "fixed",
		MaxRaises:     2,
		Players:       4,
		StartingStack: 1000,
		MaxHands:      10000,
		LedgerMode:    string(history.ModeMemory),
		ListenAddr:    ":8080",
		LogLevel:      "info",
	}
}

// Load reads envFiles (default ".env"; missing files are skipped) and the
// environment on top of Default. Real environment variables win over the
// file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	fileVals := make(map[string]string)
	for _, f := range envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := fileVals[k]; !seen {
				fileVals[k] = v
			}
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v), true
		}
		v, ok := fileVals[key]
		return strings.TrimSpace(v), ok
	}

	c := Default()
	l := loader{lookup: lookup}
	l.int64("HOLDEM_SMALL_BLIND", &c.SmallBlind)
	l.int64("HOLDEM_BIG_BLIND", &c.BigBlind)
	l.int64("HOLDEM_ANTE", &c.Ante)
	l.int("HOLDEM_MAX_PLAYERS", &c.MaxPlayers)
	l.str("HOLDEM_BET_MODE", &c.BetMode)
	l.int64("HOLDEM_RAISE_INCREMENT", &c.RaiseIncrement)
	l.int("HOLDEM_MAX_RAISES", &c.MaxRaises)
	l.int64("HOLDEM_SEED", &c.Seed)
	l.int("HOLDEM_PLAYERS", &c.Players)
	l.int64("HOLDEM_STARTING_STACK", &c.StartingStack)
	l.list("HOLDEM_LINEUP", &c.Lineup)
	l.int("HOLDEM_MAX_HANDS", &c.MaxHands)
	l.duration("HOLDEM_THINK_DELAY", &c.ThinkDelay)
	l.str("HOLDEM_PERSONAS", &c.PersonaFile)
	l.str("LEDGER_MODE", &c.LedgerMode)
	l.str("LEDGER_DSN", &c.LedgerDSN)
	l.str("LEDGER_SQLITE_PATH", &c.LedgerSQLitePath)
	l.int("LEDGER_RECENT_LIMIT", &c.LedgerRecentLimit)
	l.str("LISTEN_ADDR", &c.ListenAddr)
	l.str("LOG_LEVEL", &c.LogLevel)
	if l.err != nil {
		return Config{}, l.err
	}
	return c, nil
}

// Validate checks what the engine does not: tournament and process settings.
// Table settings are checked by HandConfig.
func (c Config) Validate() error {
	if c.Players < 2 || c.Players > c.MaxPlayers {
		return fmt.Errorf("%w: players must be in [2, %d], got %d", ErrInvalid, c.MaxPlayers, c.Players)
	}
	if c.StartingStack <= 0 {
		return fmt.Errorf("%w: starting stack must be > 0", ErrInvalid)
	}
	if c.MaxHands < 0 {
		return fmt.Errorf("%w: max hands must be >= 0", ErrInvalid)
	}
	if c.ThinkDelay < 0 {
		return fmt.Errorf("%w: think delay must be >= 0", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	_, err := c.HandConfig()
	return err
}

// HandConfig is the engine configuration for every hand at the table.
func (c Config) HandConfig() (holdem.Config, error) {
	hc := holdem.DefaultConfig()
	hc.MaxPlayers = c.MaxPlayers
	hc.SmallBlind = c.SmallBlind
	hc.BigBlind = c.BigBlind
	hc.Ante = c.Ante
	hc.RaiseIncrement = c.RaiseIncrement
	hc.MaxRaisesPerStreet = c.MaxRaises
	hc.Seed = c.Seed
	switch strings.ToLower(c.BetMode) {
	case "", "fixed":
		hc.BetMode = holdem.BetFixed
	case "variable":
		hc.BetMode = holdem.BetVariable
	default:
		return hc, fmt.Errorf("%w: bet mode %q", ErrInvalid, c.BetMode)
	}
	if err := hc.Validate(); err != nil {
		return hc, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return hc, nil
}

func (c Config) HistoryOptions() history.Options {
	return history.Options{
		Mode:        history.Mode(c.LedgerMode),
		DSN:         c.LedgerDSN,
		SQLitePath:  c.LedgerSQLitePath,
		RecentLimit: c.LedgerRecentLimit,
	}
}

// Level is the parsed LOG_LEVEL, info when unparseable.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// loader keeps the first parse error.
type loader struct {
	lookup func(string) (string, bool)
	err    error
}

func (l *loader) raw(key string) (string, bool) {
	if l.err != nil {
		return "", false
	}
	v, ok := l.lookup(key)
	return v, ok && v != ""
}

func (l *loader) fail(key, v string, err error) {
	l.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
}

func (l *loader) str(key string, dst *string) {
	if v, ok := l.raw(key); ok {
		*dst = v
	}
}

func (l *loader) int(key string, dst *int) {
	if v, ok := l.raw(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (l *loader) int64(key string, dst *int64) {
	if v, ok := l.raw(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (l *loader) duration(key string, dst *time.Duration) {
	if v, ok := l.raw(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			l.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (l *loader) list(key string, dst *[]string) {
	if v, ok := l.raw(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
