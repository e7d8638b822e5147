package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/pugstats/pugstats/pkg/archive"
	"github.com/pugstats/pugstats/pkg/dathost"
	"github.com/pugstats/pugstats/pkg/demostats"
	"github.com/pugstats/pugstats/pkg/match"
	"github.com/pugstats/pugstats/pkg/metrics"
	"github.com/pugstats/pugstats/pkg/scoreboard"
)

// DefaultGotvDelay is how far the GOTV broadcast lags the live server.
// The demo file on the game server is not complete until the broadcast
// has caught up with the final round.
const DefaultGotvDelay = 140 * time.Second

const (
	mapLookupTimeout = 30 * time.Second
	demoStatsTimeout = 10 * time.Minute
	archiveTimeout   = 10 * time.Minute
	notifyTimeout    = 30 * time.Second
	persistTimeout   = 1 * time.Minute
)

type MapLookup interface {
	CurrentMap(ctx context.Context, gameServerID string) (string, error)
}

type DemoStatsFetcher interface {
	DemoStats(ctx context.Context, gameServerID, matchID string) ([]demostats.Player, error)
}

type ReplayArchiver interface {
	ArchiveReplay(ctx context.Context, gameServerID, matchID, mapName string) (string, error)
}

type Notifier interface {
	Post(ctx context.Context, text string) error
}

type Store interface {
	AppendMatchStats(ctx context.Context, event *match.MatchEndEvent, rows []scoreboard.Row, mapName string) (int, error)
}

type EventRecorder interface {
	RecordPipelineEvent(eventType string)
}

// Options come from the webhook query string; both default to on.
type Options struct {
	Delay  bool
	Upload bool
}

type Orchestrator struct {
	Maps      MapLookup
	Stats     DemoStatsFetcher
	Archiver  ReplayArchiver
	Notifier  Notifier
	Store     Store
	Events    EventRecorder
	GotvDelay time.Duration
}

func (o *Orchestrator) gotvDelay() time.Duration {
	if o.GotvDelay > 0 {
		return o.GotvDelay
	}
	return DefaultGotvDelay
}

// Run drives a single match through validation, stat gathering,
// notification and persistence. Map lookup and replay archival failures
// degrade; a failed demo stats fetch aborts the run since there is
// nothing to report without it.
func (o *Orchestrator) Run(ctx context.Context, event *match.MatchEndEvent, opts Options) error {
	if err := match.Validate(event); err != nil {
		o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.FailedValidation])
		return err
	}

	log.Printf("match %s: gathering stats", event.ID)
	mapCh := start(ctx, mapLookupTimeout, func(runCtx context.Context) (string, error) {
		return o.Maps.CurrentMap(runCtx, event.GameServerID)
	})

	if opts.Delay {
		log.Printf("match %s: waiting %s for GOTV broadcast to finish", event.ID, o.gotvDelay())
		timer := time.NewTimer(o.gotvDelay())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	demoCh := start(ctx, demoStatsTimeout, func(runCtx context.Context) ([]demostats.Player, error) {
		return o.Stats.DemoStats(runCtx, event.GameServerID, event.ID)
	})

	mapOut := <-mapCh
	if mapOut.err != nil {
		o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.MapLookupDegraded])
	}
	mapName := degrade(mapOut, dathost.UnknownMap)

	var linkCh <-chan outcome[string]
	if opts.Upload {
		linkCh = start(ctx, archiveTimeout, func(runCtx context.Context) (string, error) {
			return o.Archiver.ArchiveReplay(runCtx, event.GameServerID, event.ID, mapName)
		})
	}

	demoOut := <-demoCh
	if demoOut.err != nil {
		o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.FailedDemoStats])
		return demoOut.err
	}

	shareLink := archive.NoUploadText
	if linkCh != nil {
		linkOut := <-linkCh
		if linkOut.err != nil {
			o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.ArchiveDegraded])
		}
		shareLink = degrade(linkOut, archive.NoUploadText)
	}

	rows := scoreboard.Build(event, demoOut.val)
	text, err := scoreboard.FormatNotification(event, rows, mapName, shareLink)
	if err != nil {
		return err
	}

	log.Printf("match %s: notifying and persisting %d rows", event.ID, len(rows))
	notifyCh := start(ctx, notifyTimeout, func(runCtx context.Context) (struct{}, error) {
		return struct{}{}, o.Notifier.Post(runCtx, text)
	})
	persistCh := start(ctx, persistTimeout, func(runCtx context.Context) (int, error) {
		return o.Store.AppendMatchStats(runCtx, event, rows, mapName)
	})

	if notifyOut := <-notifyCh; notifyOut.err != nil {
		o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.NotifyError])
		log.Println(notifyOut.err)
	}
	persistOut := <-persistCh
	if persistOut.err != nil {
		log.Println(persistOut.err)
	} else {
		for i := 0; i < persistOut.val; i++ {
			o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.RowsPersisted])
		}
		for i := 0; i < len(rows)-persistOut.val; i++ {
			o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.RowsSkipped])
		}
	}

	o.Events.RecordPipelineEvent(metrics.MetricTypeStrings[metrics.MatchesProcessed])
	log.Printf("match %s: done", event.ID)
	return nil
}
