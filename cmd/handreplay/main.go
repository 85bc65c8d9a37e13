// Command handreplay replays a JSON hand description through the engine
// and prints the resulting event tape.
//
//	handreplay hand.json
//	cat hand.json | handreplay -out tape.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"holdem-tourney/card"
	"holdem-tourney/holdem"
	"holdem-tourney/holdem/npc"
	"holdem-tourney/replay"
	"holdem-tourney/table"
)

func main() {
	out := flag.String("out", "", "write the tape as JSON to this file ('-' for stdout)")
	quiet := flag.Bool("q", false, "only print the result")
	flag.Parse()

	in := io.Reader(os.Stdin)
	if path := flag.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	tape, err := replayHand(in, *out)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			renderReplayError(replayErr)
			os.Exit(2)
		}
		pterm.Error.Println(err)
		os.Exit(1)
	}
	if *out == "-" {
		return
	}
	if !*quiet {
		renderEvents(tape)
	}
	renderOutcome(tape)
}

// replayHand decodes a hand description from r and generates its tape. When
// out is set the tape is also written there as JSON.
func replayHand(r io.Reader, out string) (*replay.Tape, error) {
	spec, err := replay.DecodeSpec(r)
	if err != nil {
		return nil, err
	}
	tape, err := replay.Generate(spec)
	if err != nil {
		return nil, err
	}
	switch out {
	case "":
	case "-":
		if err := writeTape(os.Stdout, tape); err != nil {
			return nil, err
		}
	default:
		f, err := os.Create(out)
		if err != nil {
			return nil, err
		}
		if err := writeTape(f, tape); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return tape, nil
}

func writeTape(w io.Writer, tape *replay.Tape) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tape)
}

func renderReplayError(e *replay.ReplayError) {
	var b strings.Builder
	if e.StepIndex >= 0 {
		fmt.Fprintf(&b, "step %d: ", e.StepIndex)
	}
	fmt.Fprintf(&b, "%s\n%s", e.Reason, e.Message)
	if x := e.Expected; x != nil {
		fmt.Fprintf(&b, "\n\nexpected seat %d on %s", x.Seat, x.Street)
		fmt.Fprintf(&b, "\nlegal: %s", strings.Join(x.LegalActions, ", "))
		fmt.Fprintf(&b, "\nto call %d, raise %d..%d", x.ToCall, x.MinRaise, x.MaxRaise)
	}
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(pterm.LightRed("|REPLAY FAILED|")).WithTitleTopCenter().Println(b.String())
}

func renderEvents(tape *replay.Tape) {
	data := pterm.TableData{{"Seq", "Event", "Street", "Seat", "Action", "Amount", "Pot"}}
	for _, e := range tape.Events {
		row := []string{strconv.FormatUint(e.Seq, 10), string(e.Type), e.Observation.Street.String(), "", "", "", strconv.FormatInt(e.Observation.Pot, 10)}
		if e.Type == table.EventStreetAdvanced {
			row[3] = "[" + cardList(e.Observation.Board) + "]"
		}
		if a := e.Action; a != nil {
			row[2] = a.Street.String()
			row[3] = strconv.Itoa(int(a.Seat))
			row[4] = a.Applied.String()
			if a.Requested != a.Applied {
				row[4] += " (asked " + a.Requested.String() + ")"
			}
			row[5] = strconv.FormatInt(a.Amount, 10)
		}
		data = append(data, row)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderOutcome(tape *replay.Tape) {
	if !tape.Complete {
		last := tape.Events[len(tape.Events)-1].Observation
		pterm.Warning.Printfln("hand still open on %s, seat %d to act", last.Street, last.CurrentActor)
		return
	}
	s := tape.Settlement
	var b strings.Builder
	fmt.Fprintln(&b, s.Summary())
	for _, sd := range s.Showdown {
		desc, err := npc.Describe(append(append([]card.Card(nil), sd.HoleCards...), s.Board...))
		if err != nil {
			desc = sd.Rank.Category.String()
		}
		mark := ""
		if sd.Winner {
			mark = " *"
		}
		fmt.Fprintf(&b, "\nseat %d [%s] %s%s", sd.Seat, cardList(sd.HoleCards), desc, mark)
	}
	b.WriteString("\n")
	for _, p := range tape.Players {
		fmt.Fprintf(&b, "\nseat %d %-8s %6d (%+d)", p.Seat, p.Name, p.Stack, p.Stack-startingStack(tape, p.Seat))
		if s.IsWinner(p.Seat) {
			b.WriteString(" *")
		}
	}
	title := pterm.LightGreen("|" + strings.ToUpper(s.Outcome.String()) + "|")
	if s.Outcome == holdem.OutcomeAborted {
		title = pterm.LightYellow("|ABORTED|")
	}
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(title).WithTitleTopCenter().Println(b.String())
}

// startingStack is seat's stack before forced bets.
func startingStack(tape *replay.Tape, seat uint16) int64 {
	if p, ok := tape.Events[0].Observation.Player(seat); ok {
		return p.Stack + p.Contributed
	}
	return 0
}

func cardList(cs []card.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
