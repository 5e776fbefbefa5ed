package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightnav/internal/api"
	"weightnav/internal/config"
	"weightnav/internal/model"
)

const batchInput = "3\n1 3\n3 0 1\n1 2\n1 0 5\n2 3\n1 0 1\n2 0 1\n"

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	rootCmd := createRootCommand(context.Background(), &Input{}, "test")
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSolveStdinStdout(t *testing.T) {
	out, err := runRoot(t, batchInput, "solve", "--random-seeds", "3")
	require.NoError(t, err)
	assert.Equal(t, "1\n0\n0\n\n2\n0 1\n", out)
}

func TestSolveFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte(batchInput), 0o644))

	_, err := runRoot(t, "", "solve", "-i", in, "-o", outPath, "--lengths", "--seed", "5")
	require.NoError(t, err)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "1\n0\n3.000000\n0\n\n0.000000\n2\n0 1\n2.000000\n", string(got))
}

func TestSolveBadInput(t *testing.T) {
	_, err := runRoot(t, "1\n1 3\n3 zero 1\n", "solve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestWatchPrintsEvents(t *testing.T) {
	srvDeps, err := api.NewServer(context.Background(), config.Default(), log.NewEntry(log.StandardLogger()))
	require.NoError(t, err)
	srv := httptest.NewServer(srvDeps.Routes())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rootCmd := createRootCommand(ctx, &Input{}, "test")
	var out safeBuffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"watch", "--url", "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/solutions/stream"})
	done := make(chan error, 1)
	go func() { done <- rootCmd.Execute() }()

	evt := model.SolutionEvent{Type: model.EventSolutionCompleted, SolutionID: "sol-1", Label: "demo", Reachable: 2, Length: 4}
	require.Eventually(t, func() bool {
		srvDeps.Broker.Publish(api.TopicSolutions, evt)
		return strings.Contains(out.String(), "sol-1")
	}, 5*time.Second, 50*time.Millisecond)
	assert.Contains(t, out.String(), `label="demo" reachable=2 length=4.000000`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseIntoReportsCloseError(t *testing.T) {
	var err error
	closeInto(&err, failingCloser{err: os.ErrClosed}, "close output")
	require.ErrorIs(t, err, os.ErrClosed)
	assert.Contains(t, err.Error(), "close output")

	first := assert.AnError
	err = first
	closeInto(&err, failingCloser{err: os.ErrClosed}, "close output")
	assert.Equal(t, first, err)

	err = nil
	closeInto(&err, failingCloser{}, "close output")
	assert.NoError(t, err)
}

func TestSolveReportsOutputFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	_, err := runRoot(t, batchInput, "solve", "--random-seeds", "1", "-o", "/dev/full")
	require.Error(t, err)
}

func TestSolveSeedTimeLimitFlag(t *testing.T) {
	out, err := runRoot(t, batchInput, "solve", "--random-seeds", "2", "--seed-time-limit", "0s")
	require.NoError(t, err)
	assert.Equal(t, "1\n0\n0\n\n2\n0 1\n", out)
}
