package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/licmaster/internal/adapters/export"
	"github.com/okian/licmaster/internal/adapters/ingest"
	"github.com/okian/licmaster/internal/adapters/repository"
	app "github.com/okian/licmaster/internal/app"
	"github.com/okian/licmaster/internal/config"
	"github.com/okian/licmaster/internal/domain/report"
	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/logger"
)

// Output file per view.
var outputFiles = map[types.View]string{ //nolint:gochecknoglobals // fixed file names
	types.ViewAll:    "master_all_licenses.csv",
	types.ViewActive: "master_active_licenses.csv",
}

var (
	errNoSources   = errors.New("no sources configured")
	errSourceFlag  = errors.New("--source must be STATE=PATH")
	errBadLogLevel = errors.New("invalid --log-level")
)

type options struct {
	configPath   string
	outputDir    string
	sqlitePath   string
	logLevel     string
	logFormat    string
	sources      []string
	allowUndated bool
	workers      int
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Link license registry exports into master lists",
		Long: `Reads every configured registry export, links licenses that belong to the
same person and writes master_all_licenses.csv and master_active_licenses.csv.

Sources come from the config file (LICMASTER_CONFIG or --config) and from
repeated --source flags.`,
		Example: `  reconcile --source IL=data/il.csv --source GA=data/ga.json -d out
  reconcile --config licmaster.yaml --sqlite master.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr(), opts.logFormat); err != nil {
				return err
			}
			return run(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default $LICMASTER_CONFIG)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "d", "", "directory for the CSV files (overrides output_dir)")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "also persist the master lists to this SQLite file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", logger.FormatText, "text or json")
	cmd.Flags().StringArrayVarP(&opts.sources, "source", "s", nil, "registry export as STATE=PATH; repeatable")
	cmd.Flags().BoolVar(&opts.allowUndated, "allow-undated", false, "keep records without a license date")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "linkage workers (overrides worker_count)")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	log := logger.Get().Named("reconcile")

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", errBadLogLevel, err)
	}

	var store repository.Store = repository.NewMemoryStore()
	if cfg.SQLitePath != "" {
		if store, err = repository.NewSQLiteStore(ctx, cfg.SQLitePath); err != nil {
			return err
		}
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithSources(cfg.Sources),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithRequireLicenseDate(cfg.RequireLicenseDate),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	info, err := svc.Reconcile(ctx)
	if err != nil {
		return err
	}
	for _, src := range info.Sources {
		log.Info(ctx, "source read",
			logger.String("state", src.State),
			logger.Int("read", src.Read),
			logger.Int("accepted", src.Accepted),
			logger.Any("rejected", src.Rejected),
		)
	}

	for _, view := range types.Views {
		rows, err := store.All(ctx, view)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.OutputDir, outputFiles[view])
		if err := export.WriteFile(path, rows); err != nil {
			return err
		}
		logSummary(ctx, log, report.Summarize(view, rows), path)
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// loadConfig layers the flags over the loaded configuration.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(ctx, opts.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	for _, raw := range opts.sources {
		src, err := parseSource(raw)
		if err != nil {
			return nil, err
		}
		cfg.Sources = append(cfg.Sources, src)
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.sqlitePath != "" {
		cfg.SQLitePath = opts.sqlitePath
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.workers > 0 {
		cfg.WorkerCount = opts.workers
	}
	if cmd.Flags().Changed("allow-undated") {
		cfg.RequireLicenseDate = !opts.allowUndated
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Sources) == 0 {
		return nil, errNoSources
	}
	return cfg, nil
}

func parseSource(raw string) (ingest.Source, error) {
	state, path, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(state) == "" || strings.TrimSpace(path) == "" {
		return ingest.Source{}, fmt.Errorf("%w: %q", errSourceFlag, raw)
	}
	return ingest.Source{State: strings.ToUpper(strings.TrimSpace(state)), Path: strings.TrimSpace(path)}, nil
}

func logSummary(ctx context.Context, log logger.Logger, sum types.Summary, path string) {
	fields := []logger.Field{
		logger.String("view", string(sum.View)),
		logger.String("file", path),
		logger.Int("identities", sum.UniqueIdentities),
		logger.Int("licenses", sum.TotalLicenses),
		logger.Float64("licensesPerIdentity", sum.LicensesPerIdentity),
		logger.Int("multiLicenseHolders", sum.MultiLicenseHolders),
	}
	for _, share := range sum.Confidence {
		fields = append(fields, logger.Int(strings.ToLower(string(share.Confidence)), share.Count))
	}
	log.Info(ctx, "master list written", fields...)
}
