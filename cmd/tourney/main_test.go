package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-tourney/holdem/npc"
	"holdem-tourney/internal/config"
)

func TestParseFlags_OverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Lineup = []string{"rock"}

	o, err := parseFlags(cfg, []string{"-players", "3", "-bb", "100", "-sb", "50", "-lineup", "maniac, station", "-batch", "8"})
	require.NoError(t, err)
	assert.Equal(t, 3, o.cfg.Players)
	assert.EqualValues(t, 100, o.cfg.BigBlind)
	assert.EqualValues(t, 50, o.cfg.SmallBlind)
	assert.Equal(t, []string{"maniac", "station"}, o.cfg.Lineup)
	assert.Equal(t, 8, o.batch)
	assert.EqualValues(t, cfg.StartingStack, o.cfg.StartingStack)

	_, err = parseFlags(cfg, []string{"-batch", "0"})
	assert.Error(t, err)
}

func TestBuildTournament_NamesRepeatedPersonas(t *testing.T) {
	cfg := config.Default()
	cfg.Players = 3
	cfg.Lineup = []string{"station"}
	cfg.StartingStack = 200
	o := options{cfg: cfg}

	tour, err := buildTournament(o, npc.NewDefaultRegistry(), 7, zerolog.Nop(), nil)
	require.NoError(t, err)

	res, err := tour.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Standings, 3)
	names := map[string]bool{}
	for _, s := range res.Standings {
		names[s.Name] = true
	}
	assert.True(t, names["Station #0"] && names["Station #1"] && names["Station #2"], "names: %v", names)

	first := res.Standings[0]
	got, ok := res.Standing(first.Seat)
	require.True(t, ok)
	assert.Equal(t, first, got)
	_, ok = res.Standing(99)
	assert.False(t, ok)
}

func TestBuildTournament_UnknownPersona(t *testing.T) {
	cfg := config.Default()
	cfg.Lineup = []string{"nobody"}
	_, err := buildTournament(options{cfg: cfg}, npc.NewDefaultRegistry(), 1, zerolog.Nop(), nil)
	assert.Error(t, err)
}
