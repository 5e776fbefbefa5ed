// Package batch reads and writes the plain-text multi-case format:
//
//	T
//	n w0
//	x y z      (n lines)
//	...        (T cases)
//
// and answers each case with a line holding the number of visited targets
// followed by a line of 0-based target indices in visiting order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"weightnav/internal/opt"
)

// Case is one parsed problem instance.
type Case struct {
	W0      float64
	Targets []opt.Target
}

type tokenizer struct {
	sc   *bufio.Scanner
	line int
	buf  []string
}

func (t *tokenizer) next() (string, error) {
	for len(t.buf) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", errors.Wrap(err, "read input")
			}
			return "", io.ErrUnexpectedEOF
		}
		t.line++
		t.buf = strings.Fields(t.sc.Text())
	}
	tok := t.buf[0]
	t.buf = t.buf[1:]
	return tok, nil
}

func (t *tokenizer) int(what string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, errors.Wrapf(err, "line %d: reading %s", t.line, what)
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.Errorf("line %d: %s: %q is not an integer", t.line, what, tok)
	}
	return v, nil
}

func (t *tokenizer) float(what string) (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, errors.Wrapf(err, "line %d: reading %s", t.line, what)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Errorf("line %d: %s: %q is not a number", t.line, what, tok)
	}
	return v, nil
}

// Read parses every case from r. Empty input yields no cases.
func Read(r io.Reader) ([]Case, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	t := &tokenizer{sc: sc}
	first, err := t.next()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(first)
	if err != nil || count < 0 {
		return nil, errors.Errorf("line %d: case count %q is not a non-negative integer", t.line, first)
	}
	cases := make([]Case, 0, count)
	for c := 0; c < count; c++ {
		n, err := t.int(fmt.Sprintf("case %d target count", c+1))
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.Errorf("line %d: case %d has negative target count %d", t.line, c+1, n)
		}
		w0, err := t.float(fmt.Sprintf("case %d w0", c+1))
		if err != nil {
			return nil, err
		}
		cs := Case{W0: w0, Targets: make([]opt.Target, n)}
		for i := 0; i < n; i++ {
			what := fmt.Sprintf("case %d target %d", c+1, i)
			if cs.Targets[i].X, err = t.float(what + " x"); err != nil {
				return nil, err
			}
			if cs.Targets[i].Y, err = t.float(what + " y"); err != nil {
				return nil, err
			}
			if cs.Targets[i].Z, err = t.float(what + " z"); err != nil {
				return nil, err
			}
		}
		cases = append(cases, cs)
	}
	return cases, nil
}

// Write emits the answer for every solution; withLengths appends a line
// holding the path length.
func Write(w io.Writer, sols []opt.Solution, withLengths bool) error {
	bw := bufio.NewWriter(w)
	for _, s := range sols {
		ids := make([]string, len(s.Order))
		for i, id := range s.Order {
			ids[i] = strconv.Itoa(id)
		}
		fmt.Fprintf(bw, "%d\n%s\n", len(s.Order), strings.Join(ids, " "))
		if withLengths {
			fmt.Fprintf(bw, "%.6f\n", s.Length)
		}
	}
	return errors.Wrap(bw.Flush(), "write output")
}

// Run reads every case from r, solves them in input order and writes the answers to w.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts opt.Options, withLengths bool) error {
	cases, err := Read(r)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	sols := make([]opt.Solution, 0, len(cases))
	for i, c := range cases {
		opts.Logger = logger.WithField("case", i+1)
		sol, m, err := opt.SolveCase(ctx, c.Targets, c.W0, opts)
		if err != nil {
			return errors.WithMessagef(err, "case %d", i+1)
		}
		opts.Logger.WithFields(log.Fields{
			"targets":   len(c.Targets),
			"reachable": m.Reachable,
			"length":    sol.Length,
			"strategy":  m.BestStrategy,
			"elapsed":   m.Elapsed,
		}).Info("case solved")
		sols = append(sols, sol)
	}
	return Write(w, sols, withLengths)
}
