package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bsm/redislock"
	redisv8 "github.com/go-redis/redis/v8"
)

const LinearBackoffMs = 100
const MaxRetries = 10

// ProcessedTTL bounds how long a match ID is remembered for webhook
// deduplication. The host retries deliveries within minutes; a day is
// plenty.
const ProcessedTTL = 24 * time.Hour

// LockTTL must outlive a whole pipeline run, GOTV delay and multi-minute
// replay transfer included.
const LockTTL = 15 * time.Minute

var ctx = context.Background()

type Params struct {
	Addr     string
	Username string
	Password string
}

type Driver struct {
	client *redisv8.Client
}

func (redisDriver *Driver) Init(params Params) error {
	rdb := redisv8.NewClient(&redisv8.Options{
		Addr:     params.Addr,
		Username: params.Username,
		Password: params.Password,
		DB:       0, // use default DB
	})
	redisDriver.client = rdb
	return nil
}

// MarkMatchProcessed records the match ID and reports whether this is
// the first delivery for it. Duplicate webhook deliveries are
// acknowledged without re-running the pipeline.
func (redisDriver *Driver) MarkMatchProcessed(matchID string) (bool, error) {
	return redisDriver.client.SetNX(ctx, matchProcessedKey(matchID), time.Now().Unix(), ProcessedTTL).Result()
}

// UnmarkMatchProcessed forgets a match ID after a failed pipeline run,
// so the host's retry of that delivery is not dropped as a duplicate.
func (redisDriver *Driver) UnmarkMatchProcessed(matchID string) error {
	return redisDriver.client.Del(ctx, matchProcessedKey(matchID)).Err()
}

// LockMatchProcessing guards against concurrent duplicate deliveries of
// the same match racing each other through the pipeline. Returns nil if
// another delivery already holds the lock.
func (redisDriver *Driver) LockMatchProcessing(matchID string) *redislock.Lock {
	locker := redislock.New(redisDriver.client)
	lock, err := locker.Obtain(ctx, matchLockKey(matchID), LockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(time.Millisecond*LinearBackoffMs), MaxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil
	} else if err != nil {
		log.Println(err)
		return nil
	}
	return lock
}

// RecordPipelineEvent bumps a pipeline counter; the prometheus collector
// reads these back out when scraped.
func (redisDriver *Driver) RecordPipelineEvent(eventType string) {
	if _, err := redisDriver.client.Incr(ctx, pipelineEventKey(eventType)).Result(); err != nil {
		log.Println(err)
	}
}

func (redisDriver *Driver) GetEventCount(eventType string) (string, error) {
	return redisDriver.client.Get(ctx, pipelineEventKey(eventType)).Result()
}

func (redisDriver *Driver) Close() error {
	return redisDriver.client.Close()
}
