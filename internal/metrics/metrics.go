package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"weightnav/internal/opt"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts solved cases by outcome (ok, cached, empty, error)
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weightnav_solves_total", Help: "Solved cases by outcome."},
		[]string{"outcome"},
	)
	// SolveDuration tracks wall clock per solved case
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "weightnav_solve_duration_seconds", Help: "Case solve duration in seconds.", Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}},
	)
	// BestStrategy counts which seed strategy produced the winning order
	BestStrategy = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weightnav_best_strategy_total", Help: "Winning seed strategy per case."},
		[]string{"strategy"},
	)
	// SeedsDropped counts seeds rejected before local search
	SeedsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weightnav_seeds_dropped_total", Help: "Seeds dropped as infeasible."},
		[]string{"strategy"},
	)
	// Moves counts accepted local search moves by family
	Moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "weightnav_local_search_moves_total", Help: "Accepted local search moves."},
		[]string{"move"},
	)
	// BudgetExhausted counts seeds whose local search hit the per-seed budget
	BudgetExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "weightnav_seed_budget_exhausted_total", Help: "Seeds stopped by the per-seed budget."},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers collectors to Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests, HTTPDuration)
		Registry.MustRegister(Solves, SolveDuration, BestStrategy, SeedsDropped, Moves, BudgetExhausted)
		Registry.MustRegister(WebhookDeliveries, WebhookLatency)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// ObserveSolve records one SolveCase run.
func ObserveSolve(m opt.Metrics) {
	outcome := "ok"
	if m.Reachable == 0 {
		outcome = "empty"
	}
	Solves.WithLabelValues(outcome).Inc()
	SolveDuration.Observe(m.Elapsed.Seconds())
	if m.BestStrategy != "" {
		BestStrategy.WithLabelValues(string(m.BestStrategy)).Inc()
	}
	for st, n := range m.SeedsDropped {
		SeedsDropped.WithLabelValues(string(st)).Add(float64(n))
	}
	Moves.WithLabelValues("2-opt").Add(float64(m.TwoOptMoves))
	Moves.WithLabelValues("or-opt").Add(float64(m.OrOptMoves))
	Moves.WithLabelValues("3-opt").Add(float64(m.ThreeOptMoves))
	BudgetExhausted.Add(float64(m.BudgetExhausted))
}
