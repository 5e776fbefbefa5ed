package batch

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightnav/internal/opt"
)

func quietOptions() opt.Options {
	l := log.New()
	l.SetOutput(io.Discard)
	return opt.Options{RandomSeeds: 5, Logger: log.NewEntry(l)}
}

func TestRead(t *testing.T) {
	in := "3\n1 3\n3 0 1\n1 2\n1 0 5\n2 3\n1 0 1\n2 0 1\n"
	cases, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, 3.0, cases[0].W0)
	assert.Equal(t, []opt.Target{{X: 3, Y: 0, Z: 1}}, cases[0].Targets)
	assert.Equal(t, []opt.Target{{X: 1, Z: 1}, {X: 2, Z: 1}}, cases[2].Targets)
}

func TestReadTokensAcrossLines(t *testing.T) {
	cases, err := Read(strings.NewReader("1 2 10 -1\n-2 0 4 4 1"))
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, []opt.Target{{X: -1, Y: -2, Z: 0}, {X: 4, Y: 4, Z: 1}}, cases[0].Targets)
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"bad count":      "x\n",
		"negative count": "-1\n",
		"truncated":      "1\n2 3\n1 0 1\n",
		"not a number":   "1\n1 3\n1 zero 1\n",
		"negative n":     "1\n-2 3\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line")
		})
	}
}

func TestReadEmpty(t *testing.T) {
	cases, err := Read(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []opt.Solution{{Order: []int{0, 1}, Length: 2}, {Order: []int{}}}, false))
	assert.Equal(t, "2\n0 1\n0\n\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, []opt.Solution{{Order: []int{0}, Length: 3}}, true))
	assert.Equal(t, "1\n0\n3.000000\n", buf.String())
}

func TestRun(t *testing.T) {
	in := "3\n1 3\n3 0 1\n1 2\n1 0 5\n2 3\n1 0 1\n2 0 1\n"
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(in), &out, quietOptions(), false))
	assert.Equal(t, "1\n0\n0\n\n2\n0 1\n", out.String())
}

func TestRunReportsCase(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader("1\n1 0\n1 1 1\n"), &out, quietOptions(), false)
	require.ErrorIs(t, err, opt.ErrInvalidInput)
	assert.Contains(t, err.Error(), "case 1")
	assert.Empty(t, out.String())
}
