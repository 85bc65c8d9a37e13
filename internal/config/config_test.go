package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-tourney/holdem"
	"holdem-tourney/internal/history"
)

func TestLoad_DefaultsWithoutEnvFile(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	require.NoError(t, c.Validate())
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "HOLDEM_SMALL_BLIND=5\nHOLDEM_BIG_BLIND=10\nHOLDEM_LINEUP=rock, maniac,,station\nLEDGER_MODE=sqlite\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("HOLDEM_BIG_BLIND", "20")
	t.Setenv("HOLDEM_THINK_DELAY", "150ms")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, c.SmallBlind)
	assert.EqualValues(t, 20, c.BigBlind)
	assert.Equal(t, []string{"rock", "maniac", "station"}, c.Lineup)
	assert.Equal(t, 150*time.Millisecond, c.ThinkDelay)
	assert.Equal(t, zerolog.DebugLevel, c.Level())
	assert.Equal(t, history.ModeSQLite, c.HistoryOptions().Mode)

	// the file must not leak into the process environment
	_, leaked := os.LookupEnv("HOLDEM_SMALL_BLIND")
	assert.False(t, leaked)
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	t.Setenv("HOLDEM_MAX_RAISES", "two")
	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	assert.Contains(t, err.Error(), "HOLDEM_MAX_RAISES")
}

func TestHandConfig(t *testing.T) {
	c := Default()
	c.BetMode = "Variable"
	c.Ante = 5
	c.Seed = 99

	hc, err := c.HandConfig()
	require.NoError(t, err)
	assert.Equal(t, holdem.BetVariable, hc.BetMode)
	assert.EqualValues(t, 5, hc.Ante)
	assert.EqualValues(t, 99, hc.Seed)
	assert.Equal(t, 2, hc.MaxRaisesPerStreet)

	c.BetMode = "pot"
	_, err = c.HandConfig()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"one player", func(c *Config) { c.Players = 1 }},
		{"too many players", func(c *Config) { c.Players = 10 }},
		{"broke start", func(c *Config) { c.StartingStack = 0 }},
		{"blinds inverted", func(c *Config) { c.SmallBlind = 50 }},
		{"negative ante", func(c *Config) { c.Ante = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative delay", func(c *Config) { c.ThinkDelay = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
