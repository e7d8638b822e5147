package scoreboard

import (
	"github.com/pugstats/pugstats/pkg/demostats"
	"github.com/pugstats/pugstats/pkg/match"
)

// Row is one player's merged identity and performance metrics for a
// single match: identity and raw combat counters from the match-end
// event, derived metrics from the demo-statistics service. Rows only
// live for one pipeline run; they are never persisted as-is.
type Row struct {
	SteamID    string // raw host identifier, used for roster membership
	Name       string
	Team       string
	Kills      int
	Assists    int
	Deaths     int
	ADR        float64
	HSPercent  float64
	EffFlashes int
	EFPR       float64
	Rating     float64
	RWS        float64
}

// Build joins the match event with the demo stats on the normalized
// steam ID. Every rostered player gets a row; players the demo service
// didn't report (disconnects, parse gaps) keep their event counters and
// zero-filled derived metrics so the notification roster stays complete.
// Row order is deterministic: team 1 roster order, then team 2.
func Build(event *match.MatchEndEvent, demoPlayers []demostats.Player) []Row {
	byID := make(map[string]demostats.Player, len(demoPlayers))
	for _, p := range demoPlayers {
		if id, ok := match.NormalizeSteamID(p.SteamID); ok {
			byID[id] = p
		}
	}

	rows := make([]Row, 0, len(event.Team1SteamIDs)+len(event.Team2SteamIDs))
	for _, roster := range [][]string{event.Team1SteamIDs, event.Team2SteamIDs} {
		for _, rawID := range roster {
			rows = append(rows, buildRow(event, byID, rawID))
		}
	}
	return rows
}

func buildRow(event *match.MatchEndEvent, byID map[string]demostats.Player, rawID string) Row {
	stats := event.Stats(rawID)
	row := Row{
		SteamID: rawID,
		Name:    rawID,
		Kills:   stats.Kills,
		Assists: stats.Assists,
		Deaths:  stats.Deaths,
	}
	key, ok := match.NormalizeSteamID(rawID)
	if !ok {
		return row
	}
	p, ok := byID[key]
	if !ok {
		return row
	}
	row.Name = p.Name
	row.Team = p.Team
	row.ADR = p.ADR
	row.HSPercent = p.HSPercent
	row.EffFlashes = p.EffFlashes
	row.EFPR = p.EFPR
	row.Rating = p.Rating
	row.RWS = p.RWS
	return row
}
