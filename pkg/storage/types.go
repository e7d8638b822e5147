package storage

import "time"

// MatchStat is one persisted performance row: one player in one match.
// Rows are append-only; retention is somebody else's policy.
type MatchStat struct {
	SteamID     string    `db:"steam_id"`
	MatchID     string    `db:"match_id"`
	Kills       int       `db:"kills"`
	Deaths      int       `db:"deaths"`
	Assists     int       `db:"assists"`
	CreateTime  time.Time `db:"create_time"`
	MapName     string    `db:"map_name"`
	HS          float64   `db:"hs"`
	RWS         float64   `db:"rws"`
	ADR         float64   `db:"adr"`
	Rating      float64   `db:"rating"`
	EffFlashes  int       `db:"eff_flashes"`
	EFPR        float64   `db:"efpr"`
	MatchResult string    `db:"match_result"`
}

// Match results as stored in match_result.
const (
	ResultWin  = "W"
	ResultTie  = "T"
	ResultLoss = "L"
)

// AggregateStats is the shared result shape of every aggregation query:
// one group, keyed by steam ID (and map name for the per-map queries).
// Computed on demand, never stored.
type AggregateStats struct {
	SteamID       string  `db:"steam_id" json:"steamId"`
	TotalKills    int64   `db:"total_kills" json:"totalKills"`
	TotalDeaths   int64   `db:"total_deaths" json:"totalDeaths"`
	TotalAssists  int64   `db:"total_assists" json:"totalAssists"`
	KDRatio       float64 `db:"kd_ratio" json:"kdRatio"`
	MapName       string  `db:"map_name" json:"map"`
	HS            float64 `db:"hs" json:"hs"`
	RWS           float64 `db:"rws" json:"rws"`
	ADR           float64 `db:"adr" json:"adr"`
	Rating        float64 `db:"rating" json:"rating"`
	EFPR          float64 `db:"efpr" json:"efpr"`
	PlayCount     int64   `db:"play_count" json:"playCount"`
	WinPercentage float64 `db:"win_percentage" json:"winPercentage"`
}
