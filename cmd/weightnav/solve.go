package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weightnav/internal/batch"
)

func newSolveCommand(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		cfg, err := loadConfig(input)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Solver.Seed = input.seed
		}
		if flags.Changed("random-seeds") {
			cfg.Solver.RandomSeeds = input.randomSeeds
		}
		if flags.Changed("workers") {
			cfg.Solver.Workers = input.workers
		}
		if flags.Changed("seed-time-limit") {
			cfg.Solver.SeedTimeLimit = input.seedTimeLimit
		}

		var in io.Reader = cmd.InOrStdin()
		if input.inputPath != "-" {
			f, err := os.Open(input.inputPath)
			if err != nil {
				return errors.Wrap(err, "open input")
			}
			defer f.Close()
			in = f
		}
		var out io.Writer = cmd.OutOrStdout()
		if input.outputPath != "-" {
			f, cerr := os.Create(input.outputPath)
			if cerr != nil {
				return errors.Wrap(cerr, "create output")
			}
			defer closeInto(&err, f, "close output")
			out = f
		}

		opts := cfg.Solver.Options(log.WithField("component", "solver"))
		return batch.Run(ctx, in, out, opts, input.lengths)
	}
}

// closeInto closes c and records its error in *err unless an earlier error is already set.
func closeInto(err *error, c io.Closer, what string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = errors.Wrap(cerr, what)
	}
}
