package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		o.PrintError(err)
		return
	}
	fmt.Fprintln(o.w, string(b))
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []response.GameListing:
		o.printGameListings(v)
	case *model.GameDefinition:
		o.printGame(v)
	case response.Session:
		o.printSession(v)
	case []model.SessionSummary:
		o.printSummaries(v)
	case response.Profile:
		o.printProfile(v)
	case []response.Profile:
		o.printProfiles(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
}

func (o *Output) printGameListings(games []response.GameListing) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games found")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tPLAYERS\tMINUTES")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, g.Name, formatRange(g.PlayerCount), formatRange(g.PlayTime))
	}
	_ = tw.Flush()
}

func (o *Output) printGame(g *model.GameDefinition) {
	fmt.Fprintf(o.w, "%s (%s)\n", g.Name, g.ID)
	if g.Publisher != "" {
		fmt.Fprintf(o.w, "Publisher: %s\n", g.Publisher)
	}
	fmt.Fprintf(o.w, "Players: %s  Time: %s min\n", formatRange(g.PlayerCount), formatRange(g.PlayTime))

	if len(g.Phases) > 0 {
		fmt.Fprintln(o.w, "\nPhases:")
		for _, p := range g.Phases {
			fmt.Fprintf(o.w, "  %d. %s (%s)\n", p.Order, p.Name, p.ID)
		}
	}
	if len(g.Scoring.Categories) > 0 {
		fmt.Fprintln(o.w, "\nScoring:")
		for _, c := range g.Scoring.Categories {
			fmt.Fprintf(o.w, "  %-20s %s\n", c.ID, c.Name)
		}
	}
	if len(g.Resources) > 0 {
		fmt.Fprintln(o.w, "\nResources:")
		for _, r := range g.Resources {
			fmt.Fprintf(o.w, "  %-20s %s (starts at %d)\n", r.ID, r.Name, r.StartingValue)
		}
	}
	if len(g.QuickReference) > 0 {
		fmt.Fprintln(o.w, "\nQuick reference:")
		for _, q := range g.QuickReference {
			fmt.Fprintf(o.w, "  %s: %s\n", q.Title, firstLine(q.Content))
		}
	}
}

func (o *Output) printSession(s response.Session) {
	status := "in progress"
	if s.CompletedAt != nil {
		status = "completed " + s.CompletedAt.Format(time.DateTime)
	}
	fmt.Fprintf(o.w, "%s: %s (%s)\n", s.ID, s.GameName, status)

	round := fmt.Sprintf("Turn %d, round %d", s.TurnNumber, s.RoundNumber)
	if s.CurrentPhase != "" {
		round += ", phase " + s.CurrentPhase
	}
	fmt.Fprintln(o.w, round)

	tw := o.table()
	fmt.Fprintln(tw, "\tPLAYER\tID\tSCORE\tRESOURCES")
	for _, p := range s.Players {
		marker := ""
		if p.ID == s.CurrentPlayer && s.CompletedAt == nil {
			marker = ">"
		}
		if p.ID == s.Winner {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", marker, p.Name, p.ID, p.Total, formatResources(p.Resources))
	}
	_ = tw.Flush()

	if s.Notes != "" {
		fmt.Fprintf(o.w, "Notes: %s\n", s.Notes)
	}
}

func (o *Output) printSummaries(summaries []model.SessionSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(o.w, "No saved sessions")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tGAME\tPLAYERS\tTURN\tUPDATED\tSTATUS")
	for _, s := range summaries {
		status := "in progress"
		if s.CompletedAt != nil {
			status = "completed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			s.ID, s.GameName, s.PlayerCount, s.TurnNumber, s.LastUpdatedAt.Format(time.DateTime), status)
	}
	_ = tw.Flush()
}

func (o *Output) printProfile(p response.Profile) {
	fmt.Fprintf(o.w, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Colour: %s\n", p.FavoriteColor)
	fmt.Fprintf(o.w, "Games: %d played, %d won, %d points\n", p.GamesPlayed, p.GamesWon, p.TotalScore)
	if len(p.FavoriteGames) > 0 {
		fmt.Fprintf(o.w, "Played: %s\n", strings.Join(p.FavoriteGames, ", "))
	}
	if p.LastPlayedAt != nil {
		fmt.Fprintf(o.w, "Last played: %s\n", p.LastPlayedAt.Format(time.DateTime))
	}
}

func (o *Output) printProfiles(profiles []response.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(o.w, "No profiles")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tCOLOUR\tPLAYED\tWON")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.FavoriteColor, p.GamesPlayed, p.GamesWon)
	}
	_ = tw.Flush()
}

func formatRange(r model.Range) string {
	if r.Min == r.Max {
		return fmt.Sprint(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func formatResources(values map[string]int) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(values))
	for _, id := range slices.Sorted(maps.Keys(values)) {
		parts = append(parts, fmt.Sprintf("%s=%d", id, values[id]))
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
