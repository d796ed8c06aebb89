package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trove_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trove_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ClaimTransitions counts claim state machine transitions by target status.
	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trove_claim_transitions_total",
		Help: "Total number of claim status transitions by target status",
	}, []string{"to_status"})

	// ClaimSweepRejections counts sibling claims auto-rejected during approvals.
	ClaimSweepRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trove_claim_sweep_rejections_total",
		Help: "Total number of sibling claims auto-rejected by approvals",
	})

	// ItemsClaimed is the gauge of items currently marked claimed.
	ItemsClaimed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trove_items_claimed",
		Help: "Number of items currently marked as claimed",
	})
)

const queryStartKey = "observability:query_start"

func startQueryTimer(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RegisterQueryMetrics hooks query latency observation into every GORM
// operation on db.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	var err error
	register := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	register(cb.Create().Before("gorm:create").Register("trove:metrics_before_create", startQueryTimer))
	register(cb.Create().After("gorm:create").Register("trove:metrics_after_create", observeQuery("create")))
	register(cb.Query().Before("gorm:query").Register("trove:metrics_before_query", startQueryTimer))
	register(cb.Query().After("gorm:query").Register("trove:metrics_after_query", observeQuery("query")))
	register(cb.Update().Before("gorm:update").Register("trove:metrics_before_update", startQueryTimer))
	register(cb.Update().After("gorm:update").Register("trove:metrics_after_update", observeQuery("update")))
	register(cb.Delete().Before("gorm:delete").Register("trove:metrics_before_delete", startQueryTimer))
	register(cb.Delete().After("gorm:delete").Register("trove:metrics_after_delete", observeQuery("delete")))
	register(cb.Row().Before("gorm:row").Register("trove:metrics_before_row", startQueryTimer))
	register(cb.Row().After("gorm:row").Register("trove:metrics_after_row", observeQuery("row")))
	register(cb.Raw().Before("gorm:raw").Register("trove:metrics_before_raw", startQueryTimer))
	register(cb.Raw().After("gorm:raw").Register("trove:metrics_after_raw", observeQuery("raw")))
	return err
}
