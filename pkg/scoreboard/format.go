package scoreboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/exp/slices"

	"github.com/pugstats/pugstats/pkg/locale"
	"github.com/pugstats/pugstats/pkg/match"
)

const tableHeader = "    Player              K   A   D   ADR     HS%     EF   "

// FormatNotification renders the end-of-match summary posted to the
// notification channel: both team rosters ranked by ADR inside a
// monospace table, the match MVP, and the replay share link. shareLink
// may be a placeholder when archival was skipped or failed.
//
// MVP ties break to the first row in scoreboard order, so repeated runs
// over the same input always pick the same player.
func FormatNotification(event *match.MatchEndEvent, scoreboard []Row, mapName, shareLink string) (string, error) {
	if len(scoreboard) == 0 {
		return "", match.ValidationError{Reason: "cannot format an empty scoreboard"}
	}

	var teamOne, teamTwo []Row
	for _, row := range scoreboard {
		if event.OnTeam1(row.SteamID) {
			teamOne = append(teamOne, row)
		} else {
			teamTwo = append(teamTwo, row)
		}
	}
	byADR := func(a, b Row) bool { return a.ADR > b.ADR }
	slices.SortStableFunc(teamOne, byADR)
	slices.SortStableFunc(teamTwo, byADR)

	mvp := scoreboard[0]
	for _, row := range scoreboard[1:] {
		if row.ADR > mvp.ADR {
			mvp = row
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d - %d**   `%s`\n", event.Team1Stats.Score, event.Team2Stats.Score, mapName)
	b.WriteString("```md\n")
	b.WriteString(tableHeader + "\n")
	b.WriteString(strings.Repeat("-", len(tableHeader)) + "\n")
	b.WriteString("Team A\n")
	for i, row := range teamOne {
		b.WriteString(formatRow(i+1, row) + "\n")
	}
	b.WriteString("\nTeam B\n")
	for i, row := range teamTwo {
		b.WriteString(formatRow(i+1, row) + "\n")
	}
	b.WriteString("```\n")
	b.WriteString(locale.LocalizeMessage(&i18n.Message{
		ID:    "notification.mvp",
		Other: "Congrats to the MVP `{{.Name}}` with the highest ADR of `{{.ADR}}`!",
	}, map[string]interface{}{
		"Name": mvp.Name,
		"ADR":  fmt.Sprintf("%.2f", math.Abs(mvp.ADR)),
	}, "") + "\n\n")
	b.WriteString(locale.LocalizeMessage(&i18n.Message{
		ID:    "notification.download",
		Other: "Download demo: {{.Link}}",
	}, map[string]interface{}{
		"Link": shareLink,
	}, "") + "\n")
	return b.String(), nil
}

func formatRow(rank int, row Row) string {
	name := strings.TrimSpace(strings.ReplaceAll(row.Name, "_", " "))
	if runes := []rune(name); len(runes) > 18 {
		name = string(runes[:18])
	}
	return fmt.Sprintf("%2d. %-20s%-4d%-4d%-4d%-8.2f%-8.2f%-8d",
		rank, name,
		row.Kills, row.Assists, row.Deaths,
		math.Abs(row.ADR), math.Abs(row.HSPercent), row.EffFlashes)
}
