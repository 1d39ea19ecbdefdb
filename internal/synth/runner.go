package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/licmaster/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

var errNoBatches = errors.New("no batches to save")

// Run generates records, submits them, reconciles and verifies the result.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		StartTime:  time.Now(),
		Identities: cfg.Identities,
	}

	logger.Get().Info(ctx, "starting synthetic record run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("identities", cfg.Identities),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("duplicates", cfg.Duplicates),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	before, err := client.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("stats retrieval failed: %w", err)
	}
	stats.StagedBefore = before.Staged

	batches := Generate(cfg)
	stats.Batches = len(batches)
	stats.RecordsGenerated = countRecords(batches)
	logger.Get().Info(ctx, "records generated",
		logger.Int("records", stats.RecordsGenerated),
		logger.Int("batches", stats.Batches))

	if err := submitBatches(ctx, cfg, client, batches, stats); err != nil {
		return stats, fmt.Errorf("batch submission failed: %w", err)
	}
	if replay := batches[:min(cfg.Duplicates, len(batches))]; len(replay) > 0 {
		if err := submitBatches(ctx, cfg, client, replay, stats); err != nil {
			return stats, fmt.Errorf("batch replay failed: %w", err)
		}
	}

	run, err := client.Reconcile(ctx)
	if err != nil {
		return stats, fmt.Errorf("reconcile failed: %w", err)
	}
	stats.Run = &run

	after, err := client.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("stats retrieval failed: %w", err)
	}
	stats.StagedAfter = after.Staged

	if err := verifyResults(ctx, cfg, run, after, stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveBatches(ctx, cfg.OutputFile, batches); err != nil {
			logger.Get().Warn(ctx, "failed to save batches to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// saveBatches writes the generated batches as a JSON array.
func saveBatches(ctx context.Context, filename string, batches []Batch) error {
	if len(batches) == 0 {
		return errNoBatches
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batches: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	logger.Get().Info(ctx, "batches saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var recordsPerSecond float64
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsGenerated) / stats.Duration.Seconds()
	}
	fields := []logger.Field{
		logger.Int("identities", stats.Identities),
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("batches", stats.Batches),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("stagedAfter", stats.StagedAfter),
		logger.Duration("duration", stats.Duration),
		logger.Float64("recordsPerSecond", recordsPerSecond),
	}
	if stats.Run != nil {
		fields = append(fields, logger.String("runID", stats.Run.RunID))
		for _, v := range stats.Run.Views {
			fields = append(fields, logger.Int(string(v.View)+"Identities", v.Identities))
		}
	}
	logger.Get().Info(ctx, "final statistics", fields...)
}
