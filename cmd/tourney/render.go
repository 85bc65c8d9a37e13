package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"holdem-tourney/holdem/npc"
	"holdem-tourney/tournament"
)

func renderResult(res *tournament.Result) {
	data := pterm.TableData{{"Place", "Seat", "Name", "Stack", "Out at hand", "Hands won", "Biggest pot"}}
	for _, s := range res.Standings {
		out := "-"
		if s.Eliminated {
			out = strconv.Itoa(s.EliminatedAt)
		}
		data = append(data, []string{
			strconv.Itoa(s.Place),
			strconv.Itoa(int(s.Seat)),
			s.Name,
			strconv.FormatInt(s.Stack, 10),
			out,
			strconv.Itoa(s.HandsWon),
			strconv.FormatInt(s.BiggestPot, 10),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	title := pterm.LightYellow("|NO CHAMPION|")
	body := fmt.Sprintf("%d hands, biggest pot %d", res.HandsPlayed, res.BiggestPot)
	if res.Champion != nil {
		title = pterm.LightGreen("|CHAMPION|")
		body = fmt.Sprintf("%s with %d chips\n%s", res.Champion.Name, res.Champion.Stack, body)
	}
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(title).WithTitleTopCenter().Println(body)
	pterm.Info.Printfln("seed %d, %s", res.Seed, res.Duration().Round(time.Millisecond))
}

func renderSummary(summaries []tournament.PlayerSummary) {
	data := pterm.TableData{{"Name", "Entries", "Wins", "Avg place", "Hands won", "Biggest pot"}}
	for _, s := range summaries {
		data = append(data, []string{
			s.Name,
			strconv.Itoa(s.Entries),
			strconv.Itoa(s.Wins),
			strconv.FormatFloat(s.AvgPlace, 'f', 2, 64),
			strconv.Itoa(s.HandsWon),
			strconv.FormatInt(s.BiggestPot, 10),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func renderPersonas(r *npc.PersonaRegistry) {
	data := pterm.TableData{{"ID", "Name", "Kind", "Tagline"}}
	for _, p := range r.All() {
		data = append(data, []string{p.ID, p.Name, p.Kind, p.Tagline})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
