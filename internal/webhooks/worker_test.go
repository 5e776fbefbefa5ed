package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightnav/internal/config"
)

func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

func TestNotifierAttemptSignsPayload(t *testing.T) {
	var (
		mu      sync.Mutex
		gotSig  string
		gotType string
		body    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL, Secret: "secret", MaxAttempts: 3}, quietLogger())
	require.True(t, n.Enqueue("solution.completed", map[string]any{"solutionId": "s1"}))
	d := <-n.queue
	assert.False(t, n.attempt(context.Background(), &d))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "solution.completed", gotType)
	assert.True(t, VerifyHMAC("secret", body, gotSig))
	var env map[string]any
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "solution.completed", env["type"])
	assert.Equal(t, "s1", env["data"].(map[string]any)["solutionId"])
}

func TestNotifierAttemptRetriesUntilMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL, MaxAttempts: 2}, quietLogger())
	d := delivery{ID: "evt_1", EventType: "solution.completed", Payload: []byte(`{}`)}
	assert.True(t, n.attempt(context.Background(), &d))
	assert.False(t, n.attempt(context.Background(), &d))
	assert.Equal(t, 2, d.Attempts)
}

func TestNotifierRunRedelivers(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		close(done)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{URL: srv.URL, MaxAttempts: 5}, quietLogger())
	n.Backoff = func(int) time.Duration { return time.Millisecond }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	require.True(t, n.Enqueue("solution.completed", nil))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was not retried")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotifierDisabled(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.False(t, n.Enqueue("x", nil))
	n = NewNotifier(config.WebhookConfig{}, nil)
	assert.False(t, n.Enqueue("x", nil))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, time.Second, nextBackoff(-1))
	assert.Equal(t, 8*time.Second, nextBackoff(3))
	assert.Equal(t, 1024*time.Second, nextBackoff(50))
}

func TestSignature(t *testing.T) {
	sig := SignHMAC("k", []byte("body"))
	assert.Len(t, sig, 64)
	assert.True(t, VerifyHMAC("k", []byte("body"), sig))
	assert.False(t, VerifyHMAC("other", []byte("body"), sig))
	assert.False(t, VerifyHMAC("k", []byte("body"), "zz"))
}
