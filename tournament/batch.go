package tournament

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Factory builds the i-th tournament of a batch. Each tournament must own
// its deciders; they are not shared across goroutines.
type Factory func(i int) (*Tournament, error)

// RunBatch runs n independent tournaments, at most parallelism at a time.
// Tournaments that stop at their hand limit still report partial results.
func RunBatch(ctx context.Context, n, parallelism int, factory Factory) ([]*Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			t, err := factory(i)
			if err != nil {
				return fmt.Errorf("tournament %d: %w", i, err)
			}
			res, err := t.Run(ctx)
			if err != nil && !errors.Is(err, ErrHandLimit) {
				return fmt.Errorf("tournament %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// PlayerSummary aggregates one player's results across a batch, keyed by name.
type PlayerSummary struct {
	Name       string
	Entries    int
	Wins       int
	HandsWon   int
	AvgPlace   float64
	BiggestPot int64
}

func Summarize(results []*Result) []PlayerSummary {
	byName := make(map[string]*PlayerSummary)
	placeSum := make(map[string]int)
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, s := range res.Standings {
			ps := byName[s.Name]
			if ps == nil {
				ps = &PlayerSummary{Name: s.Name}
				byName[s.Name] = ps
			}
			ps.Entries++
			ps.HandsWon += s.HandsWon
			placeSum[s.Name] += s.Place
			if s.BiggestPot > ps.BiggestPot {
				ps.BiggestPot = s.BiggestPot
			}
			if res.Champion != nil && res.Champion.Seat == s.Seat {
				ps.Wins++
			}
		}
	}

	out := make([]PlayerSummary, 0, len(byName))
	for name, ps := range byName {
		ps.AvgPlace = float64(placeSum[name]) / float64(ps.Entries)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].AvgPlace != out[j].AvgPlace {
			return out[i].AvgPlace < out[j].AvgPlace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

var resultHeader = []string{
	"TournamentID", "Place", "Seat", "Name", "Stack", "HandsWon",
	"BiggestPot", "EliminatedAtHand", "Champion", "HandsPlayed", "DurationMs",
}

// WriteCSV writes one row per player per tournament.
func WriteCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, s := range res.Standings {
			champion := res.Champion != nil && res.Champion.Seat == s.Seat
			record := []string{
				res.ID,
				strconv.Itoa(s.Place),
				strconv.Itoa(int(s.Seat)),
				s.Name,
				strconv.FormatInt(s.Stack, 10),
				strconv.Itoa(s.HandsWon),
				strconv.FormatInt(s.BiggestPot, 10),
				strconv.Itoa(s.EliminatedAt),
				strconv.FormatBool(champion),
				strconv.Itoa(res.HandsPlayed),
				strconv.FormatInt(res.Duration().Milliseconds(), 10),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes the aggregated batch table.
func WriteSummaryCSV(w io.Writer, summaries []PlayerSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Entries", "Wins", "HandsWon", "AvgPlace", "BiggestPot"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			s.Name,
			strconv.Itoa(s.Entries),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.HandsWon),
			strconv.FormatFloat(s.AvgPlace, 'f', 2, 64),
			strconv.FormatInt(s.BiggestPot, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
