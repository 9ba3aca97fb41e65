// Package metrics records batch run metrics for Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Collector aggregates run metrics on a private registry so repeated
// runs in one process do not double-register.
type Collector struct {
	registry *prometheus.Registry

	transactionsLoaded prometheus.Counter
	accountsSeen       prometheus.Gauge
	patternFlags       *prometheus.CounterVec
	riskScores         prometheus.Histogram
	fraudSuspected     prometheus.Counter
	runDuration        prometheus.Histogram
}

// NewCollector creates a collector with all run metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transactionsLoaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "kestrel_transactions_loaded_total",
			Help: "Total number of transactions loaded from the input ledger",
		}),
		accountsSeen: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "kestrel_accounts",
			Help: "Number of distinct accounts in the input ledger",
		}),
		patternFlags: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "kestrel_pattern_flags_total",
			Help: "Rows flagged per fraud pattern",
		}, []string{"pattern"}),
		riskScores: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "kestrel_risk_score_distribution",
			Help:    "Distribution of per-transaction risk scores",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		}),
		fraudSuspected: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "kestrel_fraud_suspected_total",
			Help: "Transactions with risk score at or above the fraud threshold",
		}),
		runDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "kestrel_run_duration_seconds",
			Help:    "Wall time of a full batch run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordLoad records input table size.
func (c *Collector) RecordLoad(transactions, accounts int) {
	c.transactionsLoaded.Add(float64(transactions))
	c.accountsSeen.Set(float64(accounts))
}

// RecordPattern records the number of flagged rows for one pattern.
func (c *Collector) RecordPattern(pattern string, flagged int) {
	c.patternFlags.WithLabelValues(pattern).Add(float64(flagged))
}

// RecordScore records one transaction's risk score.
func (c *Collector) RecordScore(score int, suspected bool) {
	c.riskScores.Observe(float64(score))
	if suspected {
		c.fraudSuspected.Inc()
	}
}

// RecordDuration records the run wall time.
func (c *Collector) RecordDuration(d time.Duration) {
	c.runDuration.Observe(d.Seconds())
}

// Push sends the collected metrics to a Pushgateway. Batch jobs push
// at the end of the run instead of serving a scrape endpoint.
func (c *Collector) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if job == "" {
		job = "kestrel"
	}

	if err := push.New(gatewayURL, job).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
