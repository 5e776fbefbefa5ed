// Package api exposes the solver over HTTP: batch solves, stored solution
// lookup and a WebSocket feed of completed solutions.
package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"weightnav/internal/config"
	"weightnav/internal/metrics"
	"weightnav/internal/store"
	"weightnav/internal/webhooks"
)

type Server struct {
	Cfg      config.Config
	Store    store.Store
	Broker   EventBroker
	Notifier *webhooks.Notifier
	// Limiter throttles POST /v1/solve; nil disables limiting.
	Limiter *rate.Limiter
	Log     *log.Entry

	closers []func() error
}

// NewServer wires the store, broker and notifier selected by cfg. Without
// DATABASE_URL solutions live in memory; without REDIS_URL events stay in process.
func NewServer(ctx context.Context, cfg config.Config, logger *log.Entry) (*Server, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	s := &Server{Cfg: cfg, Log: logger}

	if cfg.DatabaseURL == "" {
		s.Store = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, errors.Wrap(err, "migrate")
			}
		}
		s.Store = pg
		s.closers = append(s.closers, pg.Close)
	}

	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL, logger)
		if err != nil {
			logger.WithError(err).Warn("redis broker unavailable, using in-process broker")
			s.Broker = NewBroker()
		} else {
			s.Broker = rb
			s.closers = append(s.closers, rb.Close)
		}
	} else {
		s.Broker = NewBroker()
	}

	s.Notifier = webhooks.NewNotifier(cfg.Webhook, logger)
	if cfg.RateRPS > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateRPS) + 1
		}
		s.Limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), burst)
	}
	metrics.RegisterDefault()
	return s, nil
}

// Start launches background workers; they stop when ctx is done.
func (s *Server) Start(ctx context.Context) {
	if s.Notifier.Enabled() {
		go s.Notifier.Run(ctx)
	}
}

func (s *Server) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Routes returns the service mux wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/solve", s.SolveHandler)
	mux.HandleFunc("/v1/solutions", s.SolutionsIndexHandler)
	mux.HandleFunc("/v1/solutions/", s.SolutionByIDHandler)
	mux.HandleFunc("/v1/solutions/stream", s.SolutionStreamHandler)

	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/info", s.DebugJSON)
	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", s.OpenAPIHandler)

	return s.logMiddleware(mux)
}
