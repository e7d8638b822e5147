package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/pugstats/pugstats/pkg/match"
	"github.com/pugstats/pugstats/pkg/scoreboard"
)

type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	Ping(context.Context) error
	Prepare(context.Context, string, string) (*pgconn.StatementDescription, error)
}

type PsqlInterface struct {
	Pool *pgxpool.Pool
}

func ConstructPsqlConnectURL(addr, username, password string) string {
	return fmt.Sprintf("postgres://%s?user=%s&password=%s", addr, username, password)
}

func (psqlInterface *PsqlInterface) Init(addr string) error {
	dbpool, err := pgxpool.Connect(context.Background(), addr)
	if err != nil {
		return err
	}
	psqlInterface.Pool = dbpool
	return nil
}

func (psqlInterface *PsqlInterface) LoadAndExecFromFile(filepath string) error {
	bytes, err := os.ReadFile(filepath)
	if err != nil {
		return err
	}
	tag, err := psqlInterface.Pool.Exec(context.Background(), string(bytes))
	if err != nil {
		return err
	}
	log.Println(tag.String())
	return nil
}

func (psqlInterface *PsqlInterface) Close() {
	psqlInterface.Pool.Close()
}

// AppendMatchStats persists one row per rostered player with a
// recognizable steam ID. Unrecognizable identifiers (bots, spectators)
// are skipped silently. Each insert is independent: a failed row is
// logged and the rest proceed, so a partial failure persists a partial
// batch.
func (psqlInterface *PsqlInterface) AppendMatchStats(ctx context.Context, event *match.MatchEndEvent, rows []scoreboard.Row, mapName string) (int, error) {
	conn, err := psqlInterface.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	return appendMatchStats(ctx, conn.Conn(), event, rows, mapName, time.Now())
}

func appendMatchStats(ctx context.Context, conn PgxIface, event *match.MatchEndEvent, rows []scoreboard.Row, mapName string, now time.Time) (int, error) {
	inserted := 0
	for _, row := range rows {
		steamID, ok := match.NormalizeSteamID(row.SteamID)
		if !ok {
			continue
		}
		own, enemy := event.TeamScores(row.SteamID)
		result := ResultLoss
		switch {
		case own > enemy:
			result = ResultWin
		case own == enemy:
			result = ResultTie
		}

		err := insertMatchStat(ctx, conn, &MatchStat{
			SteamID:     steamID,
			MatchID:     event.ID,
			Kills:       row.Kills,
			Deaths:      row.Deaths,
			Assists:     row.Assists,
			CreateTime:  now,
			MapName:     mapName,
			HS:          row.HSPercent,
			RWS:         row.RWS,
			ADR:         row.ADR,
			Rating:      row.Rating,
			EffFlashes:  row.EffFlashes,
			EFPR:        row.EFPR,
			MatchResult: result,
		})
		if err != nil {
			log.Println(match.PersistenceError{SteamID: steamID, Err: err})
			continue
		}
		inserted++
	}
	return inserted, nil
}

func insertMatchStat(ctx context.Context, conn PgxIface, stat *MatchStat) error {
	_, err := conn.Exec(ctx, "INSERT INTO match_stats VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);",
		stat.SteamID, stat.MatchID, stat.Kills, stat.Deaths, stat.Assists, stat.CreateTime,
		stat.MapName, stat.HS, stat.RWS, stat.ADR, stat.Rating, stat.EffFlashes, stat.EFPR, stat.MatchResult)
	return err
}
