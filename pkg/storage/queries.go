package storage

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
)

// Every read shares one aggregation shape: group by steam_id (plus
// map_name for the per-map queries) and compute sums, averages, play
// count, and win percentage. The k/d ratio degrades to the kill total
// when a group has zero deaths; floating division by zero is never
// allowed to surface.
const aggregateColumns = `steam_id,
SUM(kills) AS total_kills,
SUM(deaths) AS total_deaths,
SUM(assists) AS total_assists,
CASE WHEN SUM(deaths) = 0 THEN SUM(kills)::float8 ELSE SUM(kills)::float8 / SUM(deaths)::float8 END AS kd_ratio,
AVG(adr) AS adr,
AVG(hs) AS hs,
AVG(rating) AS rating,
AVG(rws) AS rws,
AVG(efpr) AS efpr,
COUNT(match_id) AS play_count,
SUM(CASE WHEN match_result = 'W' THEN 1 ELSE 0 END)::float8 / COUNT(match_id)::float8 AS win_percentage`

// GetPlayerStatistics aggregates everything a single player has on
// record, optionally narrowed by a case-sensitive map-name substring.
func (psqlInterface *PsqlInterface) GetPlayerStatistics(ctx context.Context, steamID, mapName string) ([]*AggregateStats, error) {
	return getPlayerStatistics(ctx, psqlInterface.Pool, steamID, mapName)
}

func getPlayerStatistics(ctx context.Context, conn pgxscan.Querier, steamID, mapName string) ([]*AggregateStats, error) {
	return selectAggregates(ctx, conn,
		"SELECT "+aggregateColumns+", $2::text AS map_name "+
			"FROM match_stats WHERE steam_id = $1 AND map_name LIKE '%' || $2 || '%' "+
			"GROUP BY steam_id;",
		steamID, mapName)
}

// GetTopTenPlayers is the all-time leaderboard: every player with at
// least matchCountLimit matches on the (filtered) maps, ranked by
// average ADR, capped at ten.
func (psqlInterface *PsqlInterface) GetTopTenPlayers(ctx context.Context, mapName string, matchCountLimit int) ([]*AggregateStats, error) {
	return getTopTenPlayers(ctx, psqlInterface.Pool, mapName, matchCountLimit)
}

func getTopTenPlayers(ctx context.Context, conn pgxscan.Querier, mapName string, matchCountLimit int) ([]*AggregateStats, error) {
	return selectAggregates(ctx, conn,
		"SELECT "+aggregateColumns+", $1::text AS map_name "+
			"FROM match_stats WHERE map_name LIKE '%' || $1 || '%' "+
			"GROUP BY steam_id HAVING COUNT(match_id) >= $2 "+
			"ORDER BY AVG(adr) DESC LIMIT 10;",
		mapName, matchCountLimit)
}

// GetTopTenPlayersMonthRange is GetTopTenPlayers restricted to the last
// `months` months. A missing time window returns no result rather than
// an error; supplying one is the caller's contract.
func (psqlInterface *PsqlInterface) GetTopTenPlayersMonthRange(ctx context.Context, months int, mapName string, matchCountLimit int) ([]*AggregateStats, error) {
	if months <= 0 {
		return nil, nil
	}
	return selectAggregates(ctx, psqlInterface.Pool,
		"SELECT "+aggregateColumns+", $2::text AS map_name "+
			"FROM match_stats WHERE create_time >= NOW() - make_interval(months => $1) "+
			"AND map_name LIKE '%' || $2 || '%' "+
			"GROUP BY steam_id HAVING COUNT(match_id) >= $3 "+
			"ORDER BY AVG(adr) DESC LIMIT 10;",
		months, mapName, matchCountLimit)
}

// GetMonthRangeStats aggregates a single player's recent record.
// Warm-up matches (the reserved "init" match-ID prefix) are synthetic
// and excluded here.
func (psqlInterface *PsqlInterface) GetMonthRangeStats(ctx context.Context, steamID string, months int, mapName string) ([]*AggregateStats, error) {
	if months <= 0 {
		return nil, nil
	}
	return getMonthRangeStats(ctx, psqlInterface.Pool, steamID, months, mapName)
}

func getMonthRangeStats(ctx context.Context, conn pgxscan.Querier, steamID string, months int, mapName string) ([]*AggregateStats, error) {
	return selectAggregates(ctx, conn,
		"SELECT "+aggregateColumns+", $3::text AS map_name "+
			"FROM match_stats WHERE steam_id = $1 "+
			"AND create_time >= NOW() - make_interval(months => $2) "+
			"AND match_id NOT LIKE 'init%' "+
			"AND map_name LIKE '%' || $3 || '%' "+
			"GROUP BY steam_id;",
		steamID, months, mapName)
}

// GetTopMaps ranks one player's maps by their average ADR on each.
func (psqlInterface *PsqlInterface) GetTopMaps(ctx context.Context, steamID string) ([]*AggregateStats, error) {
	return getTopMaps(ctx, psqlInterface.Pool, steamID)
}

func getTopMaps(ctx context.Context, conn pgxscan.Querier, steamID string) ([]*AggregateStats, error) {
	return selectAggregates(ctx, conn,
		"SELECT "+aggregateColumns+", map_name "+
			"FROM match_stats WHERE steam_id = $1 AND map_name NOT LIKE ' ' "+
			"GROUP BY steam_id, map_name "+
			"ORDER BY AVG(adr) DESC LIMIT 10;",
		steamID)
}

func (psqlInterface *PsqlInterface) GetTopMapsMonthRange(ctx context.Context, steamID string, months int) ([]*AggregateStats, error) {
	if months <= 0 {
		return nil, nil
	}
	return selectAggregates(ctx, psqlInterface.Pool,
		"SELECT "+aggregateColumns+", map_name "+
			"FROM match_stats WHERE steam_id = $1 "+
			"AND create_time >= NOW() - make_interval(months => $2) "+
			"AND map_name NOT LIKE ' ' "+
			"GROUP BY steam_id, map_name "+
			"ORDER BY AVG(adr) DESC LIMIT 10;",
		steamID, months)
}

// GetPlayerStats aggregates a caller-supplied set of players in one
// round trip. No implicit top-N cap applies.
func (psqlInterface *PsqlInterface) GetPlayerStats(ctx context.Context, mapName string, steamIDs []string) ([]*AggregateStats, error) {
	return getPlayerStats(ctx, psqlInterface.Pool, mapName, steamIDs)
}

func getPlayerStats(ctx context.Context, conn pgxscan.Querier, mapName string, steamIDs []string) ([]*AggregateStats, error) {
	return selectAggregates(ctx, conn,
		"SELECT "+aggregateColumns+", $1::text AS map_name "+
			"FROM match_stats WHERE map_name LIKE '%' || $1 || '%' AND steam_id = ANY($2) "+
			"GROUP BY steam_id "+
			"ORDER BY AVG(adr) DESC;",
		mapName, steamIDs)
}

func (psqlInterface *PsqlInterface) GetPlayerStatsMonthRange(ctx context.Context, mapName string, steamIDs []string, months int) ([]*AggregateStats, error) {
	if months <= 0 {
		return nil, nil
	}
	return selectAggregates(ctx, psqlInterface.Pool,
		"SELECT "+aggregateColumns+", $1::text AS map_name "+
			"FROM match_stats WHERE create_time >= NOW() - make_interval(months => $3) "+
			"AND map_name LIKE '%' || $1 || '%' AND steam_id = ANY($2) "+
			"GROUP BY steam_id "+
			"ORDER BY AVG(adr) DESC;",
		mapName, steamIDs, months)
}

func selectAggregates(ctx context.Context, conn pgxscan.Querier, query string, args ...interface{}) ([]*AggregateStats, error) {
	var stats []*AggregateStats
	if err := pgxscan.Select(ctx, conn, &stats, query, args...); err != nil {
		return nil, err
	}
	// a successful query always yields a present (possibly empty) set;
	// nil is reserved for the windowed variants called without a window
	if stats == nil {
		stats = []*AggregateStats{}
	}
	return stats, nil
}
