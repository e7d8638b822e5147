package match

// MatchEndEvent is the payload delivered by the game-server host's
// match-end webhook. Fields we never read are omitted; unknown JSON
// fields are ignored on decode.
type MatchEndEvent struct {
	ID                string       `json:"id"`
	GameServerID      string       `json:"game_server_id"`
	Finished          bool         `json:"finished"`
	RoundsPlayed      int          `json:"rounds_played"`
	PlayerStats       []PlayerStat `json:"player_stats"`
	SpectatorSteamIDs []string     `json:"spectator_steam_ids"`
	Team1Stats        TeamStats    `json:"team1_stats"`
	Team1SteamIDs     []string     `json:"team1_steam_ids"`
	Team2Stats        TeamStats    `json:"team2_stats"`
	Team2SteamIDs     []string     `json:"team2_steam_ids"`
}

type PlayerStat struct {
	SteamID string `json:"steam_id"`
	Kills   int    `json:"kills"`
	Assists int    `json:"assists"`
	Deaths  int    `json:"deaths"`
}

type TeamStats struct {
	Score int `json:"score"`
}

// OnTeam1 reports whether the given (raw, un-normalized) steam ID is on
// the first team's roster.
func (e *MatchEndEvent) OnTeam1(steamID string) bool {
	for _, id := range e.Team1SteamIDs {
		if id == steamID {
			return true
		}
	}
	return false
}

// TeamScores returns the player's own team score and the opposing team
// score, judged by roster membership. Players on neither roster are
// treated as team 2; the append path filters those out beforehand anyway.
func (e *MatchEndEvent) TeamScores(steamID string) (own, enemy int) {
	if e.OnTeam1(steamID) {
		return e.Team1Stats.Score, e.Team2Stats.Score
	}
	return e.Team2Stats.Score, e.Team1Stats.Score
}

// Stats returns the raw combat counters the host reported for the given
// steam ID, or a zero-valued entry when the host reported none.
func (e *MatchEndEvent) Stats(steamID string) PlayerStat {
	for _, ps := range e.PlayerStats {
		if ps.SteamID == steamID {
			return ps
		}
	}
	return PlayerStat{SteamID: steamID}
}
