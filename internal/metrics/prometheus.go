//go:build !noprom

package metrics

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	dbTotal      *prom.CounterVec
	dbSeconds    *prom.HistogramVec
	toolTotal    *prom.CounterVec
	toolSeconds  *prom.HistogramVec
	stmtCache    *prom.CounterVec
	poolInUse    prom.Gauge
	poolIdle     prom.Gauge
	chainCache   *prom.CounterVec
	chainLength  *prom.HistogramVec
	skippedTotal prom.Counter
}

func (p *promRecorder) IncDBOpTotal(op string, success bool) {
	p.dbTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveDBOpSeconds(op string, success bool, seconds float64) {
	p.dbSeconds.WithLabelValues(op, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncToolTotal(tool string, success bool) {
	p.toolTotal.WithLabelValues(tool, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveToolSeconds(tool string, success bool, seconds float64) {
	p.toolSeconds.WithLabelValues(tool, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncStmtCacheHit(op string) {
	p.stmtCache.WithLabelValues(op, "hit").Inc()
}

func (p *promRecorder) IncStmtCacheMiss(op string) {
	p.stmtCache.WithLabelValues(op, "miss").Inc()
}

func (p *promRecorder) ObservePoolStats(inUse, idle int) {
	p.poolInUse.Set(float64(inUse))
	p.poolIdle.Set(float64(idle))
}

func (p *promRecorder) IncChainCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.chainCache.WithLabelValues(kind, result).Inc()
}

func (p *promRecorder) ObserveChainLength(kind string, persons int) {
	p.chainLength.WithLabelValues(kind).Observe(float64(persons))
}

func (p *promRecorder) IncWaypointSkipped() {
	p.skippedTotal.Inc()
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := &promRecorder{
		dbTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "db_ops_total",
			Help: "Total number of DB operations",
		}, []string{"op", "success"}),
		dbSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "db_op_seconds",
			Help:    "DB operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		toolTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool handler calls",
		}, []string{"tool", "success"}),
		toolSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "tool_call_seconds",
			Help:    "Tool handler duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"tool", "success"}),
		stmtCache: prom.NewCounterVec(prom.CounterOpts{
			Name: "stmt_cache_total",
			Help: "Prepared statement cache lookups",
		}, []string{"op", "result"}),
		poolInUse: prom.NewGauge(prom.GaugeOpts{
			Name: "db_pool_in_use",
			Help: "Connections currently in use",
		}),
		poolIdle: prom.NewGauge(prom.GaugeOpts{
			Name: "db_pool_idle",
			Help: "Idle connections",
		}),
		chainCache: prom.NewCounterVec(prom.CounterOpts{
			Name: "chain_cache_total",
			Help: "Chain memo lookups",
		}, []string{"kind", "result"}),
		chainLength: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "chain_length_persons",
			Help:    "Number of persons in returned chains",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 50},
		}, []string{"kind"}),
		skippedTotal: prom.NewCounter(prom.CounterOpts{
			Name: "chain_waypoints_skipped_total",
			Help: "Waypoints left out of stitched chains",
		}),
	}

	registry.MustRegister(p.dbTotal, p.dbSeconds, p.toolTotal, p.toolSeconds,
		p.stmtCache, p.poolInUse, p.poolIdle, p.chainCache, p.chainLength, p.skippedTotal)
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
