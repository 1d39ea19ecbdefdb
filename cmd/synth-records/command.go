package main

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/licmaster/internal/synth"
)

const (
	defaultBaseURL    = "http://localhost:9080"
	defaultIdentities = 10_000
	defaultBatchSize  = 500
	defaultDuplicates = 3
	defaultTimeout    = 5 * time.Minute
	defaultSeed       = 1
	workersPerCPU     = 2
)

func newRootCommand() *cobra.Command {
	cfg := synth.Config{}
	var logFile string

	cmd := &cobra.Command{
		Use:   "synth-records",
		Short: "Submit synthetic license records and verify reconciliation",
		Long: `Generates people holding licenses in several states, posts them to
/records in batches, replays a few batches to check idempotency, runs
/reconcile and verifies that every accepted record appears in the full list.`,
		Example: `  synth-records --identities 50000 --workers 16 --url http://localhost:8080
  synth-records --verbose --output batches.json --log run.log`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := synth.SetupLogging(cmd.ErrOrStderr(), logFile)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			_, err = synth.Run(cmd.Context(), &cfg)
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", defaultBaseURL, "base URL of the service")
	cmd.Flags().IntVarP(&cfg.Identities, "identities", "n", defaultIdentities, "number of people to generate")
	cmd.Flags().IntVarP(&cfg.BatchSize, "batch-size", "b", defaultBatchSize, "records per batch")
	cmd.Flags().IntVar(&cfg.Duplicates, "duplicates", defaultDuplicates, "batches to submit twice")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU()*workersPerCPU, "concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", defaultSeed, "generator seed")
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "save generated batches to this JSON file")
	cmd.Flags().StringVar(&logFile, "log", "", "also write logs to this file")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every batch")

	return cmd
}
