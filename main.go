package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pugstats/pugstats/api"
	"github.com/pugstats/pugstats/pkg/archive"
	"github.com/pugstats/pugstats/pkg/dathost"
	"github.com/pugstats/pugstats/pkg/demostats"
	"github.com/pugstats/pugstats/pkg/locale"
	"github.com/pugstats/pugstats/pkg/metrics"
	"github.com/pugstats/pugstats/pkg/notify"
	"github.com/pugstats/pugstats/pkg/pipeline"
	"github.com/pugstats/pugstats/pkg/redis"
	"github.com/pugstats/pugstats/pkg/server"
	"github.com/pugstats/pugstats/pkg/storage"
)

var (
	version = api.Version
	commit  = "none"
)

const DefaultPort = "8080"
const DefaultURL = "http://localhost:8080"

func main() {
	err := serverMainWrapper()
	if err != nil {
		log.Println("Program exited with the following error:")
		log.Println(err)
		return
	}
}

func serverMainWrapper() error {
	logPath := os.Getenv("LOG_PATH")
	if logPath == "" {
		logPath = "./"
	}
	logEntry := os.Getenv("DISABLE_LOG_FILE")
	if logEntry == "" {
		file, err := os.Create(path.Join(logPath, "logs.txt"))
		if err != nil {
			return err
		}
		mw := io.MultiWriter(os.Stdout, file)
		log.SetOutput(mw)
	}

	log.Println(version + "-" + commit)

	port := os.Getenv("PORT")
	if port == "" {
		log.Printf("[Info] No PORT provided. Defaulting to %s\n", DefaultPort)
		port = DefaultPort
	}
	url := os.Getenv("HOST")
	if url == "" {
		log.Printf("[Info] No valid HOST provided. Defaulting to %s\n", DefaultURL)
		url = DefaultURL
	}

	authUser := os.Getenv("STATS_USER")
	if authUser == "" {
		return errors.New("no STATS_USER specified; exiting")
	}
	authPass := os.Getenv("STATS_PASSWORD")
	if authPass == "" {
		return errors.New("no STATS_PASSWORD specified; exiting")
	}

	discordToken := os.Getenv("DISCORD_BOT_TOKEN")
	if discordToken == "" {
		return errors.New("no DISCORD_BOT_TOKEN provided")
	}
	channelID := os.Getenv("DISCORD_TEXTCHANNEL_ID")
	if channelID == "" {
		return errors.New("no DISCORD_TEXTCHANNEL_ID provided")
	}

	dathostUser := os.Getenv("DATHOST_USERNAME")
	dathostPass := os.Getenv("DATHOST_PASSWORD")
	if dathostUser == "" || dathostPass == "" {
		return errors.New("no DATHOST_USERNAME/DATHOST_PASSWORD specified; exiting")
	}

	demoStatsURL := os.Getenv("DEMO_STATS_URL")
	if demoStatsURL == "" {
		return errors.New("no DEMO_STATS_URL specified; exiting")
	}
	demoStatsUser := os.Getenv("DEMO_STATS_USER")
	demoStatsPass := os.Getenv("DEMO_STATS_PASSWORD")

	locale.InitLang(os.Getenv("LOCALE_PATH"), os.Getenv("BOT_LANG"))

	var redisDriver redis.Driver
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASS")
	if redisAddr == "" {
		return errors.New("no REDIS_ADDR specified; exiting")
	}
	err := redisDriver.Init(redis.Params{
		Addr:     redisAddr,
		Username: "",
		Password: redisPassword,
	})
	if err != nil {
		return err
	}

	psql := storage.PsqlInterface{}
	pAddr := os.Getenv("POSTGRES_ADDR")
	if pAddr == "" {
		return errors.New("no POSTGRES_ADDR specified; exiting")
	}
	pUser := os.Getenv("POSTGRES_USER")
	if pUser == "" {
		return errors.New("no POSTGRES_USER specified; exiting")
	}
	pPass := os.Getenv("POSTGRES_PASS")
	if pPass == "" {
		return errors.New("no POSTGRES_PASS specified; exiting")
	}
	err = psql.Init(storage.ConstructPsqlConnectURL(pAddr, pUser, pPass))
	if err != nil {
		return err
	}
	defer psql.Close()

	if os.Getenv("SKIP_SCHEMA_LOAD") == "" {
		go func() {
			err := psql.LoadAndExecFromFile("./pkg/storage/postgres.sql")
			if err != nil {
				log.Println("Exiting with fatal error when attempting to execute postgres.sql:")
				log.Fatal(err)
			}
		}()
	}

	hostClient := dathost.NewClient(dathostUser, dathostPass)
	statsClient := demostats.NewClient(demoStatsURL, demoStatsUser, demoStatsPass, hostClient)

	var archiver pipeline.ReplayArchiver
	bucket := os.Getenv("DEMO_BUCKET")
	if bucket != "" {
		uploader, err := archive.NewUploader(context.Background(), os.Getenv("AWS_REGION"), bucket, hostClient)
		if err != nil {
			return err
		}
		archiver = uploader
	} else {
		log.Println("[Info] No DEMO_BUCKET specified; replay archival disabled")
		archiver = archive.Disabled{}
	}

	notifier, err := notify.NewDiscordNotifier(discordToken, channelID)
	if err != nil {
		return err
	}

	gotvDelay := pipeline.DefaultGotvDelay
	if secs, err := strconv.Atoi(os.Getenv("GOTV_DELAY_SECONDS")); err == nil && secs > 0 {
		gotvDelay = time.Duration(secs) * time.Second
	}

	orchestrator := &pipeline.Orchestrator{
		Maps:      hostClient,
		Stats:     statsClient,
		Archiver:  archiver,
		Notifier:  notifier,
		Store:     &psql,
		Events:    &redisDriver,
		GotvDelay: gotvDelay,
	}

	nodeID := os.Getenv("SCW_NODE_ID")
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort != "" {
		go func() {
			err := metrics.PrometheusMetricsServer(&redisDriver, nodeID, metricsPort)
			if err != nil {
				log.Println("Prometheus metrics server exited:")
				log.Println(err)
			}
		}()
	}
	healthPort := os.Getenv("HEALTH_PORT")
	if healthPort != "" {
		go server.StartHealthCheckServer(healthPort)
	}

	log.Println("Server is now running.  Press CTRL-C to exit.")
	return api.NewApi(url, authUser, authPass, orchestrator, &redisDriver, &psql).StartServer(port)
}
