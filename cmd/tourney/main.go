// Command tourney runs bot tournaments: one with a standings table, or a
// batch with a CSV report. With -serve the tables are streamed to
// websocket spectators and recorded to the hand history store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"holdem-tourney/holdem/npc"
	"holdem-tourney/internal/config"
	"holdem-tourney/table"
	"holdem-tourney/tournament"
)

type options struct {
	cfg config.Config

	batch      int
	parallel   int
	csvPath    string
	summaryCSV string
	serve      bool
	linger     bool
	botThink   bool
	listPeople bool
}

func main() {
	if err := run(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := opts.cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(opts.cfg.Level())
	registry := npc.NewDefaultRegistry()
	if opts.cfg.PersonaFile != "" {
		if err := registry.LoadFromFile(opts.cfg.PersonaFile); err != nil {
			return err
		}
	}
	if opts.listPeople {
		renderPersonas(registry)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tableOpts []table.Option
	if opts.cfg.ThinkDelay > 0 {
		tableOpts = append(tableOpts, table.WithDecisionLatency(opts.cfg.ThinkDelay))
	}
	if opts.serve {
		srv, err := startServer(ctx, opts.cfg, log)
		if err != nil {
			return err
		}
		defer srv.Shutdown()
		tableOpts = append(tableOpts, srv.observers()...)
	}

	baseSeed := opts.cfg.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	factory := func(i int) (*tournament.Tournament, error) {
		return buildTournament(opts, registry, tournament.HandSeed(baseSeed, i), log, tableOpts)
	}

	if opts.batch > 1 {
		err = runBatch(ctx, opts, factory)
	} else {
		err = runSingle(ctx, factory)
	}
	if err != nil {
		return err
	}

	if opts.serve && opts.linger {
		pterm.Info.Printfln("serving history on %s until interrupted", opts.cfg.ListenAddr)
		<-ctx.Done()
	}
	return nil
}

func parseFlags(cfg config.Config, args []string) (options, error) {
	o := options{cfg: cfg, batch: 1, parallel: 4}
	fs := flag.NewFlagSet("tourney", flag.ContinueOnError)

	fs.IntVar(&o.cfg.Players, "players", cfg.Players, "number of bots")
	fs.Int64Var(&o.cfg.StartingStack, "stack", cfg.StartingStack, "starting stack")
	fs.Int64Var(&o.cfg.SmallBlind, "sb", cfg.SmallBlind, "small blind")
	fs.Int64Var(&o.cfg.BigBlind, "bb", cfg.BigBlind, "big blind")
	fs.Int64Var(&o.cfg.Ante, "ante", cfg.Ante, "ante (dead money)")
	fs.StringVar(&o.cfg.BetMode, "mode", cfg.BetMode, "bet mode: fixed | variable")
	fs.IntVar(&o.cfg.MaxRaises, "raises", cfg.MaxRaises, "raise cap per street")
	fs.Int64Var(&o.cfg.Seed, "seed", cfg.Seed, "master seed (0 = time)")
	fs.IntVar(&o.cfg.MaxHands, "max-hands", cfg.MaxHands, "hand limit per tournament")
	fs.DurationVar(&o.cfg.ThinkDelay, "delay", cfg.ThinkDelay, "extra latency per decision")
	fs.StringVar(&o.cfg.PersonaFile, "personas", cfg.PersonaFile, "persona JSON file to load")
	fs.StringVar(&o.cfg.LedgerMode, "ledger", cfg.LedgerMode, "history store: memory | sqlite | postgres")
	fs.StringVar(&o.cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address for -serve")
	fs.StringVar(&o.cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	lineup := fs.String("lineup", strings.Join(cfg.Lineup, ","), "comma separated persona ids, cycled over seats")

	fs.IntVar(&o.batch, "batch", o.batch, "number of tournaments")
	fs.IntVar(&o.parallel, "parallel", o.parallel, "tournaments run at once in batch mode")
	fs.StringVar(&o.csvPath, "csv", "", "write per-tournament standings CSV")
	fs.StringVar(&o.summaryCSV, "summary-csv", "", "write per-player summary CSV")
	fs.BoolVar(&o.serve, "serve", false, "stream events over websocket and record history")
	fs.BoolVar(&o.linger, "linger", false, "with -serve, keep serving after the tournaments end")
	fs.BoolVar(&o.botThink, "think", false, "give bots persona-dependent think time")
	fs.BoolVar(&o.listPeople, "list", false, "list personas and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.cfg.Lineup = nil
	for _, id := range strings.Split(*lineup, ",") {
		if id = strings.TrimSpace(id); id != "" {
			o.cfg.Lineup = append(o.cfg.Lineup, id)
		}
	}
	if o.batch < 1 {
		return o, fmt.Errorf("-batch must be >= 1")
	}
	return o, nil
}

func newLogger(lvl zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// buildTournament seats a fresh lineup; deciders are never shared between
// tournaments.
func buildTournament(o options, registry *npc.PersonaRegistry, seed int64, log zerolog.Logger, tableOpts []table.Option) (*tournament.Tournament, error) {
	hc, err := o.cfg.HandConfig()
	if err != nil {
		return nil, err
	}
	var mopts []npc.ManagerOption
	mopts = append(mopts, npc.WithManagerLogger(log))
	if o.botThink {
		mopts = append(mopts, npc.WithThinkDelay())
	}
	mgr := npc.NewManager(registry, seed, mopts...)
	bots, err := mgr.Lineup(o.cfg.Players, o.cfg.Lineup...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(bots))
	for _, b := range bots {
		seen[b.Persona.Name]++
	}
	entrants := make([]tournament.Entrant, len(bots))
	for i, b := range bots {
		name := b.Persona.Name
		if seen[name] > 1 {
			name = fmt.Sprintf("%s #%d", name, b.Seat)
		}
		entrants[i] = tournament.Entrant{
			Seat:       b.Seat,
			ID:         b.Persona.ID,
			Name:       name,
			Stack:      o.cfg.StartingStack,
			Decider:    b.Brain,
			ThinkDelay: b.ThinkDelay,
		}
	}

	hc.Seed = 0 // per-hand seeds come from the tournament seed
	return tournament.New(tournament.Config{
		Hand:     hc,
		MaxHands: o.cfg.MaxHands,
		Seed:     seed,
	}, entrants,
		tournament.WithLogger(log),
		tournament.WithTableOptions(tableOpts...),
	)
}

func runSingle(ctx context.Context, factory tournament.Factory) error {
	t, err := factory(0)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Printfln("Tournament %s", t.ID())
	res, err := t.Run(ctx)
	if res != nil {
		renderResult(res)
	}
	if errors.Is(err, tournament.ErrHandLimit) {
		pterm.Warning.Println(err)
		return nil
	}
	return err
}

func runBatch(ctx context.Context, o options, factory tournament.Factory) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("running %d tournaments (%d at a time)", o.batch, o.parallel))
	start := time.Now()
	results, err := tournament.RunBatch(ctx, o.batch, o.parallel, factory)
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("%d tournaments in %s", len(results), time.Since(start).Round(time.Millisecond)))
	}

	summaries := tournament.Summarize(results)
	renderSummary(summaries)

	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(f *os.File) error { return tournament.WriteCSV(f, results) }); err != nil {
			return err
		}
		pterm.Success.Printfln("standings written to %s", o.csvPath)
	}
	if o.summaryCSV != "" {
		if err := writeFile(o.summaryCSV, func(f *os.File) error { return tournament.WriteSummaryCSV(f, summaries) }); err != nil {
			return err
		}
		pterm.Success.Printfln("summary written to %s", o.summaryCSV)
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
