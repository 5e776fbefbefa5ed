package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"weightnav/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader reach the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		path := routeLabel(r.URL.Path)
		status := strconv.Itoa(rec.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, path, status).Observe(dur.Seconds())

		entry := s.Log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": dur,
			"remote":   r.RemoteAddr,
		})
		switch {
		case path == "/healthz" || path == "/readyz" || path == "/metrics":
			entry.Debug("request")
		case rec.status >= 500:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}

// routeLabel collapses ids so metric label cardinality stays bounded.
func routeLabel(p string) string {
	if strings.HasPrefix(p, "/v1/solutions/") && p != "/v1/solutions/stream" {
		return "/v1/solutions/{id}"
	}
	switch p {
	case "/v1/solve", "/v1/solutions", "/v1/solutions/stream", "/healthz", "/readyz", "/metrics",
		"/debug/info", "/openapi.yaml", "/openapi.json":
		return p
	}
	return "other"
}
