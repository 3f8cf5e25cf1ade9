// Package metric exposes Prometheus metrics for wirekv: per-command
// counters and latencies registered on the hot path, and a pull
// collector that scrapes live store and server statistics.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/wirekv-go/internal/keyspace"
)

const namespace = "wirekv"

// CommandCount and CommandDuration are registered directly rather than
// through the Collector because they are incremented per request in the
// connection loop.
var (
	CommandCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of commands executed, partitioned by command name.",
		},
		[]string{"cmd"},
	)

	CommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Total number of rejected requests, partitioned by failure class.",
		},
		[]string{"class"},
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency in seconds, partitioned by command name.",
			Buckets:   []float64{.000001, .000005, .00001, .00005, .0001, .0005, .001, .005, .01},
		},
		[]string{"cmd"},
	)
)

// ServerStats abstracts the connection counters. An interface keeps this
// package from importing the server package, which already imports
// metric for the hot-path counters.
type ServerStats interface {
	ActiveConnections() int64
	TotalConnections() uint64
}

// Collector implements prometheus.Collector by pulling current values
// from the store and server on each scrape. The underlying counters are
// atomics, so scrapes never contend with the command path.
type Collector struct {
	store  *keyspace.Store
	server ServerStats

	keysTotal   *prometheus.Desc
	storeHits   *prometheus.Desc
	storeMisses *prometheus.Desc
	storeSets   *prometheus.Desc
	keysExpired *prometheus.Desc
	connsActive *prometheus.Desc
	connsTotal  *prometheus.Desc
}

// NewCollector creates a Collector over the given stat sources. Either
// source may be nil when the component is disabled.
func NewCollector(store *keyspace.Store, server ServerStats) *Collector {
	return &Collector{
		store:  store,
		server: server,

		keysTotal:   prometheus.NewDesc(namespace+"_keys_total", "Number of entries in the keyspace, expired stragglers included.", nil, nil),
		storeHits:   prometheus.NewDesc(namespace+"_store_hits_total", "Total reads that found a live entry.", nil, nil),
		storeMisses: prometheus.NewDesc(namespace+"_store_misses_total", "Total reads that found nothing live.", nil, nil),
		storeSets:   prometheus.NewDesc(namespace+"_store_sets_total", "Total writes.", nil, nil),
		keysExpired: prometheus.NewDesc(namespace+"_keys_expired_total", "Total entries observed expired by lazy expiry.", nil, nil),
		connsActive: prometheus.NewDesc(namespace+"_connections_active", "Currently connected clients.", nil, nil),
		connsTotal:  prometheus.NewDesc(namespace+"_connections_total", "Total connections accepted since startup.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysTotal
	ch <- c.storeHits
	ch <- c.storeMisses
	ch <- c.storeSets
	ch <- c.keysExpired
	ch <- c.connsActive
	ch <- c.connsTotal
}

// Collect implements prometheus.Collector. It runs per scrape, not on
// the command path.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.store != nil {
		stats := c.store.Stats()
		ch <- prometheus.MustNewConstMetric(c.keysTotal, prometheus.GaugeValue, float64(c.store.Len()))
		ch <- prometheus.MustNewConstMetric(c.storeHits, prometheus.CounterValue, float64(stats.Hits.Load()))
		ch <- prometheus.MustNewConstMetric(c.storeMisses, prometheus.CounterValue, float64(stats.Misses.Load()))
		ch <- prometheus.MustNewConstMetric(c.storeSets, prometheus.CounterValue, float64(stats.Sets.Load()))
		ch <- prometheus.MustNewConstMetric(c.keysExpired, prometheus.CounterValue, float64(stats.Expired.Load()))
	}
	if c.server != nil {
		ch <- prometheus.MustNewConstMetric(c.connsActive, prometheus.GaugeValue, float64(c.server.ActiveConnections()))
		ch <- prometheus.MustNewConstMetric(c.connsTotal, prometheus.CounterValue, float64(c.server.TotalConnections()))
	}
}

// Register registers the collector and the command-level metrics with
// the default Prometheus registry.
func Register(c *Collector) {
	prometheus.MustRegister(c)
	prometheus.MustRegister(CommandCount)
	prometheus.MustRegister(CommandErrors)
	prometheus.MustRegister(CommandDuration)
}
