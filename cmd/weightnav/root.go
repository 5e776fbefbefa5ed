package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"weightnav/internal/config"
)

// Input collects flag values for all commands.
type Input struct {
	configPath string
	verbose    bool
	jsonLogs   bool

	inputPath   string
	outputPath  string
	seed        int64
	randomSeeds int
	workers     int
	lengths     bool

	seedTimeLimit time.Duration

	streamURL string
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "weightnav",
		Short:        "Plan shortest weight-feasible open paths through 3D targets.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&input.configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&input.jsonLogs, "json", false, "log as JSON")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve cases in the plain-text batch format",
		Args:  cobra.NoArgs,
		RunE:  newSolveCommand(ctx, input),
	}
	solveCmd.Flags().StringVarP(&input.inputPath, "input", "i", "-", "input file, - for stdin")
	solveCmd.Flags().StringVarP(&input.outputPath, "output", "o", "-", "output file, - for stdout")
	solveCmd.Flags().Int64Var(&input.seed, "seed", 0, "RNG seed (overrides config)")
	solveCmd.Flags().IntVar(&input.randomSeeds, "random-seeds", 0, "random restarts per case, negative disables (overrides config)")
	solveCmd.Flags().IntVar(&input.workers, "workers", 0, "parallel seed workers (overrides config)")
	solveCmd.Flags().DurationVar(&input.seedTimeLimit, "seed-time-limit", 0, "local search wall clock per seed, 0 for unbounded (overrides config)")
	solveCmd.Flags().BoolVar(&input.lengths, "lengths", false, "print the path length after each case")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE:  newServeCommand(ctx, input),
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print solution events from a running service",
		Args:  cobra.NoArgs,
		RunE:  newWatchCommand(ctx, input),
	}
	watchCmd.Flags().StringVar(&input.streamURL, "url", "ws://localhost:8080/v1/solutions/stream", "stream endpoint")

	rootCmd.AddCommand(solveCmd, serveCmd, watchCmd)
	return rootCmd
}

// loadConfig reads the config file and environment and sets up logging.
func loadConfig(input *Input) (config.Config, error) {
	cfg, err := config.Load(input.configPath)
	if err != nil {
		return cfg, err
	}
	if input.verbose {
		cfg.LogLevel = log.DebugLevel.String()
	}
	cfg.ConfigureLogging(input.jsonLogs)
	return cfg, nil
}
