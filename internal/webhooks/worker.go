// Package webhooks delivers solution events to a configured HTTP endpoint.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"weightnav/internal/config"
	"weightnav/internal/metrics"
)

const queueSize = 256

type delivery struct {
	ID        string
	EventType string
	Payload   []byte
	Attempts  int
}

// Notifier queues events and POSTs them to a single URL, retrying failed
// deliveries with exponential backoff until MaxAttempts is reached.
type Notifier struct {
	URL         string
	Secret      string
	MaxAttempts int
	HTTP        *http.Client
	Backoff     func(attempts int) time.Duration
	Log         *log.Entry

	queue chan delivery
}

func NewNotifier(cfg config.WebhookConfig, logger *log.Entry) *Notifier {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	max := cfg.MaxAttempts
	if max <= 0 {
		max = 10
	}
	return &Notifier{
		URL:         cfg.URL,
		Secret:      cfg.Secret,
		MaxAttempts: max,
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		Backoff:     nextBackoff,
		Log:         logger.WithField("component", "webhooks"),
		queue:       make(chan delivery, queueSize),
	}
}

// Enabled reports whether a target URL is configured.
func (n *Notifier) Enabled() bool { return n != nil && n.URL != "" }

// Enqueue wraps data in an event envelope and queues it. It returns false
// when the notifier is disabled or the queue is full.
func (n *Notifier) Enqueue(eventType string, data any) bool {
	if !n.Enabled() {
		return false
	}
	id := "evt_" + uuid.NewString()
	body, err := json.Marshal(map[string]any{
		"id":   id,
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	})
	if err != nil {
		n.Log.WithError(err).Error("encode webhook payload")
		return false
	}
	select {
	case n.queue <- delivery{ID: id, EventType: eventType, Payload: body}:
		return true
	default:
		n.Log.WithField("event", id).Warn("webhook queue full, dropping event")
		metrics.WebhookDeliveries.WithLabelValues(eventType, "dropped").Inc()
		return false
	}
}

// Run delivers queued events until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-n.queue:
			if !n.attempt(ctx, &d) {
				continue
			}
			wait := n.Backoff(d.Attempts - 1)
			go func(d delivery) {
				t := time.NewTimer(wait)
				defer t.Stop()
				select {
				case <-ctx.Done():
				case <-t.C:
					select {
					case n.queue <- d:
					case <-ctx.Done():
					}
				}
			}(d)
		}
	}
}

// attempt performs one delivery and reports whether it should be retried.
func (n *Notifier) attempt(ctx context.Context, d *delivery) bool {
	d.Attempts++
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	entry := n.Log.WithFields(log.Fields{"event": d.ID, "type": d.EventType, "attempt": d.Attempts})
	start := time.Now()
	code, err := n.post(ctx, d)
	latency := float64(time.Since(start).Milliseconds())

	if err == nil {
		metrics.WebhookDeliveries.WithLabelValues(d.EventType, "success").Inc()
		metrics.WebhookLatency.WithLabelValues(d.EventType, "success").Observe(latency)
		entry.WithField("code", code).Debug("webhook delivered")
		return false
	}
	metrics.WebhookLatency.WithLabelValues(d.EventType, "error").Observe(latency)
	if d.Attempts >= n.MaxAttempts {
		metrics.WebhookDeliveries.WithLabelValues(d.EventType, "failed").Inc()
		entry.WithError(err).Error("webhook delivery failed permanently")
		return false
	}
	metrics.WebhookDeliveries.WithLabelValues(d.EventType, "retry").Inc()
	entry.WithError(err).Warn("webhook delivery failed, retrying")
	return true
}

func (n *Notifier) post(ctx context.Context, d *delivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(d.Payload))
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", d.EventType)
	req.Header.Set("X-Event-Id", d.ID)
	if n.Secret != "" {
		req.Header.Set("X-Signature", SignHMAC(n.Secret, d.Payload))
	}
	resp, err := n.HTTP.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "post webhook")
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, errors.New("unexpected status " + strconv.Itoa(resp.StatusCode))
	}
	return resp.StatusCode, nil
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
