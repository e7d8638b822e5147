package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pugstats/pugstats/docs"
	"github.com/pugstats/pugstats/pkg/match"
	"github.com/pugstats/pugstats/pkg/metrics"
	"github.com/pugstats/pugstats/pkg/pipeline"
	"github.com/pugstats/pugstats/pkg/storage"
)

const Version = "1.0.0"

// MatchProcessor runs the match-end pipeline for one webhook delivery.
type MatchProcessor interface {
	Run(ctx context.Context, event *match.MatchEndEvent, opts pipeline.Options) error
}

// Deduper tracks which match ids have already been delivered. A nil
// lock means another delivery currently holds the match.
type Deduper interface {
	MarkMatchProcessed(matchID string) (bool, error)
	UnmarkMatchProcessed(matchID string) error
	LockMatchProcessing(matchID string) *redislock.Lock
	RecordPipelineEvent(eventType string)
}

// StatsProvider serves the aggregation queries behind /api/stats.
type StatsProvider interface {
	GetPlayerStatistics(ctx context.Context, steamID, mapName string) ([]*storage.AggregateStats, error)
	GetTopTenPlayers(ctx context.Context, mapName string, matchCountLimit int) ([]*storage.AggregateStats, error)
	GetTopTenPlayersMonthRange(ctx context.Context, months int, mapName string, matchCountLimit int) ([]*storage.AggregateStats, error)
	GetMonthRangeStats(ctx context.Context, steamID string, months int, mapName string) ([]*storage.AggregateStats, error)
	GetTopMaps(ctx context.Context, steamID string) ([]*storage.AggregateStats, error)
	GetTopMapsMonthRange(ctx context.Context, steamID string, months int) ([]*storage.AggregateStats, error)
	GetPlayerStats(ctx context.Context, mapName string, steamIDs []string) ([]*storage.AggregateStats, error)
	GetPlayerStatsMonthRange(ctx context.Context, mapName string, steamIDs []string, months int) ([]*storage.AggregateStats, error)
}

type Api struct {
	url       string
	authUser  string
	authPass  string
	processor MatchProcessor
	deduper   Deduper
	stats     StatsProvider
}

func NewApi(url, authUser, authPass string, processor MatchProcessor, deduper Deduper, stats StatsProvider) *Api {
	return &Api{
		url:       url,
		authUser:  authUser,
		authPass:  authPass,
		processor: processor,
		deduper:   deduper,
		stats:     stats,
	}
}

func (api *Api) StartServer(port string) error {
	r := api.router()
	return r.Run(":" + port)
}

func (api *Api) router() *gin.Engine {
	r := gin.Default()

	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "PugStats"
	docs.SwaggerInfo.Version = Version
	docs.SwaggerInfo.Description = "Pug match statistics API"
	var schemes []string
	host := api.url
	if strings.HasPrefix(host, "http://") {
		schemes = append(schemes, "http")
		host = strings.Replace(host, "http://", "", 1)
	} else if strings.HasPrefix(host, "https://") {
		schemes = append(schemes, "https")
		host = strings.Replace(host, "https://", "", 1)
	}
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = schemes

	apiGroup := r.Group("/api", gin.BasicAuth(gin.Accounts{
		api.authUser: api.authPass,
	}))
	apiGroup.POST("/match-end", handlePostMatchEnd(api))
	apiGroup.GET("/stats", handleGetStats(api))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// boolQuery reads an optional boolean query param; anything unparsable
// falls back to the default so a malformed webhook URL never silently
// skips the GOTV delay or the replay upload.
func boolQuery(c *gin.Context, name string, def bool) bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// MatchEnd godoc
// @Summary Process a finished match
// @Schemes POST
// @Description Webhook target for the game-server host's match-end event
// @Security BasicAuth
// @Tags match
// @Accept json
// @Produce json
// @Param delay query bool false "Wait for the GOTV broadcast before fetching the demo (default true)"
// @Param upload query bool false "Archive the replay and share a download link (default true)"
// @Success 200 {object} string
// @Failure 400 {object} HttpError
// @Failure 500 {object} HttpError
// @Router /api/match-end [post]
func handlePostMatchEnd(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		var event match.MatchEndEvent
		if err := c.ShouldBindBodyWith(&event, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, HttpError{
				StatusCode: http.StatusBadRequest,
				Error:      err.Error(),
			})
			return
		}
		if err := match.Validate(&event); err != nil {
			api.deduper.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.FailedValidation])
			c.AbortWithStatusJSON(http.StatusBadRequest, HttpError{
				StatusCode: http.StatusBadRequest,
				Error:      err.Error(),
			})
			return
		}

		first, err := api.deduper.MarkMatchProcessed(event.ID)
		if err == nil && !first {
			api.deduper.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.DuplicateDelivery])
			c.JSON(http.StatusOK, "duplicate delivery ignored")
			return
		}
		lock := api.deduper.LockMatchProcessing(event.ID)
		if lock != nil {
			defer lock.Release(context.Background())
		}

		opts := pipeline.Options{
			Delay:  boolQuery(c, "delay", true),
			Upload: boolQuery(c, "upload", true),
		}
		if err := api.processor.Run(c.Request.Context(), &event, opts); err != nil {
			// a failed run must stay retryable; forget the delivery so
			// the host's retry is not dropped as a duplicate
			if derr := api.deduper.UnmarkMatchProcessed(event.ID); derr != nil {
				log.Println(derr)
			}
			var verr match.ValidationError
			if errors.As(err, &verr) {
				c.AbortWithStatusJSON(http.StatusBadRequest, HttpError{
					StatusCode: http.StatusBadRequest,
					Error:      err.Error(),
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, HttpError{
				StatusCode: http.StatusInternalServerError,
				Error:      err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, "match processed")
	}
}

// GetStats godoc
// @Summary Query aggregated player statistics
// @Schemes GET
// @Description Leaderboards, time-windowed stats, per-map breakdowns and batch lookups over stored match rows
// @Security BasicAuth
// @Tags stats
// @Accept json
// @Produce json
// @Param option query string false "One of top10, range, maps, players; empty for a single-player lookup"
// @Param steamid query string false "Steam ID for single-player options"
// @Param steamids query string false "Comma-separated Steam IDs for option=players"
// @Param map query string false "Case-sensitive map name substring filter"
// @Param length query int false "Time window in months; switches to the windowed query variant"
// @Param mapCountLimit query int false "Minimum matches played for option=top10"
// @Success 200 {object} []storage.AggregateStats
// @Failure 400 {object} HttpError
// @Failure 500 {object} HttpError
// @Router /api/stats [get]
func handleGetStats(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		steamID := c.Query("steamid")
		mapName := c.Query("map")
		months, _ := strconv.Atoi(c.Query("length"))
		matchCountLimit, _ := strconv.Atoi(c.Query("mapCountLimit"))

		var stats []*storage.AggregateStats
		var err error
		ctx := c.Request.Context()

		switch c.Query("option") {
		case "top10":
			if months > 0 {
				stats, err = api.stats.GetTopTenPlayersMonthRange(ctx, months, mapName, matchCountLimit)
			} else {
				stats, err = api.stats.GetTopTenPlayers(ctx, mapName, matchCountLimit)
			}
		case "range":
			if steamID == "" {
				abortMissingParam(c, "steamid")
				return
			}
			stats, err = api.stats.GetMonthRangeStats(ctx, steamID, months, mapName)
		case "maps":
			if steamID == "" {
				abortMissingParam(c, "steamid")
				return
			}
			if months > 0 {
				stats, err = api.stats.GetTopMapsMonthRange(ctx, steamID, months)
			} else {
				stats, err = api.stats.GetTopMaps(ctx, steamID)
			}
		case "players":
			steamIDs := splitIDs(c.Query("steamids"))
			if len(steamIDs) == 0 {
				abortMissingParam(c, "steamids")
				return
			}
			if months > 0 {
				stats, err = api.stats.GetPlayerStatsMonthRange(ctx, mapName, steamIDs, months)
			} else {
				stats, err = api.stats.GetPlayerStats(ctx, mapName, steamIDs)
			}
		default:
			if steamID == "" {
				abortMissingParam(c, "steamid")
				return
			}
			stats, err = api.stats.GetPlayerStatistics(ctx, steamID, mapName)
		}

		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, HttpError{
				StatusCode: http.StatusInternalServerError,
				Error:      err.Error(),
			})
			return
		}
		// the windowed variants report an absent result when no window
		// was supplied
		if stats == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, HttpError{
				StatusCode: http.StatusBadRequest,
				Error:      "no time window supplied",
			})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func abortMissingParam(c *gin.Context, name string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, HttpError{
		StatusCode: http.StatusBadRequest,
		Error:      "missing " + name,
	})
}

type HttpError struct {
	StatusCode int
	Error      string
}
