package metrics

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type EventType int

const (
	MatchesProcessed EventType = iota
	DuplicateDelivery
	FailedValidation
	FailedDemoStats
	MapLookupDegraded
	ArchiveDegraded
	NotifyError
	RowsPersisted
	RowsSkipped
)

var MetricTypeStrings = []string{
	"matches_processed",
	"duplicate_delivery",
	"failed_validation",
	"failed_demo_stats",
	"map_lookup_degraded",
	"archive_degraded",
	"notify_error",
	"rows_persisted",
	"rows_skipped",
}

// CounterSource reads back the counters the pipeline increments in redis.
type CounterSource interface {
	GetEventCount(eventType string) (string, error)
}

type Collector struct {
	counterDesc *prometheus.Desc
	source      CounterSource
	nodeID      string
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.counterDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, str := range MetricTypeStrings {
		v, err := c.source.GetEventCount(str)
		if !errors.Is(err, redisv8.Nil) && err != nil {
			log.Println(err)
			continue
		}
		num := int64(0)
		if v != "" {
			num, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				log.Println(err)
				num = 0
			}
		}

		ch <- prometheus.MustNewConstMetric(
			c.counterDesc,
			prometheus.CounterValue,
			float64(num),
			c.nodeID,
			str,
		)
	}
}

func NewCollector(source CounterSource, nodeID string) *Collector {
	return &Collector{
		counterDesc: prometheus.NewDesc("pipeline_events_by_node_and_type", "Number of pipeline events recorded, differentiated by node/type", []string{"nodeID", "type"}, nil),
		source:      source,
		nodeID:      nodeID,
	}
}

func PrometheusMetricsServer(source CounterSource, nodeID, port string) error {
	prometheus.MustRegister(NewCollector(source, nodeID))

	http.Handle("/metrics", promhttp.Handler())

	return http.ListenAndServe(":"+port, nil)
}
