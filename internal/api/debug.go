package api

import (
	"net/http"
	"time"

	"weightnav/internal/buildinfo"
)

// DebugJSON reports build information and the effective non-secret configuration.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	cfg := s.Cfg
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"port":               cfg.Port,
			"logLevel":           cfg.LogLevel,
			"rateRps":            cfg.RateRPS,
			"rateBurst":          cfg.RateBurst,
			"solver":             cfg.Solver,
			"webhookMaxAttempts": cfg.Webhook.MaxAttempts,
			"hasDatabaseUrl":     cfg.DatabaseURL != "",
			"hasRedisUrl":        cfg.RedisURL != "",
			"hasWebhookUrl":      cfg.Webhook.URL != "",
		},
	})
}
