// Package service stages license records, runs reconciliation and answers
// queries over the resulting master lists. It implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/licmaster/internal/adapters/ingest"
	"github.com/okian/licmaster/internal/adapters/mq/queue"
	"github.com/okian/licmaster/internal/adapters/mq/worker"
	"github.com/okian/licmaster/internal/adapters/repository"
	"github.com/okian/licmaster/internal/domain/dedupe"
	"github.com/okian/licmaster/internal/domain/linkage"
	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/report"
	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/logger"
	"github.com/okian/licmaster/pkg/metrics"
)

const (
	defaultQueueSize  = 10000
	defaultDedupeSize = 50000
)

// Service implements the API dependencies for the license master list.
type Service struct {
	mu          sync.RWMutex
	reconcileMu sync.Mutex

	store   repository.Store
	deduper dedupe.Deduper
	linker  worker.Linker

	workerCount        int
	queueSize          int
	dedupeSize         int
	sources            []ingest.Source
	requireLicenseDate bool

	staged  []model.NormalizedRecord
	lastRun *types.RunInfo
	started bool

	logger logger.Logger
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		requireLicenseDate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.linker == nil {
		s.linker = worker.DefaultLinker
		if !s.requireLicenseDate {
			// undated records are admitted but cannot anchor a match
			s.linker = worker.NewLinker(linkage.WithUndatedSingletons())
		}
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	s.started = true
	s.logger.Info(ctx, "license service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sources", len(s.sources)),
		logger.Bool("requireLicenseDate", s.requireLicenseDate),
	)
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "license service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Stage adds a batch of normalized records to the next reconcile run. A batch
// whose ID was seen before is acknowledged without being staged again. An
// empty batch ID is replaced by a fresh one.
func (s *Service) Stage(ctx context.Context, batchID string, records []model.NormalizedRecord) (types.StageResult, error) {
	if err := s.ready(); err != nil {
		return types.StageResult{}, err
	}
	if len(records) == 0 {
		return types.StageResult{}, ErrEmptyBatch
	}
	if batchID == "" {
		batchID = uuid.NewString()
	}

	res := types.StageResult{BatchID: batchID}
	if s.deduper.SeenAndRecord(ctx, batchID) {
		metrics.RecordBatchDuplicate()
		s.logger.Debug(ctx, "duplicate batch skipped", logger.String("batchID", batchID))
		res.Duplicate = true
		return res, nil
	}

	opts := ingest.Options{RequireLicenseDate: s.requireLicenseDate}
	accepted := make([]model.NormalizedRecord, 0, len(records))
	perState := make(map[string]int)
	for i := range records {
		r := records[i]
		ingest.Canonicalize(&r)
		if reason := ingest.Admit(&r, opts); reason != "" {
			if res.Rejected == nil {
				res.Rejected = make(map[string]int)
			}
			res.Rejected[reason]++
			metrics.RecordRejected(r.SourceState, reason)
			continue
		}
		accepted = append(accepted, r)
		perState[r.SourceState]++
	}
	for state, n := range perState {
		metrics.RecordIngested(state, n)
	}

	s.mu.Lock()
	s.staged = append(s.staged, accepted...)
	staged := len(s.staged)
	s.mu.Unlock()

	res.Accepted = len(accepted)
	metrics.UpdateStagedRecords(staged)
	s.logger.Info(ctx, "batch staged",
		logger.String("batchID", batchID),
		logger.Int("accepted", res.Accepted),
		logger.Int("rejected", len(records)-res.Accepted),
	)
	return res, nil
}

// Reconcile links every staged record together with the configured sources
// and replaces both master lists. Staged records are kept, so a later run
// sees them again alongside newer batches.
func (s *Service) Reconcile(ctx context.Context) (types.RunInfo, error) {
	if err := s.ready(); err != nil {
		return types.RunInfo{}, err
	}
	if !s.reconcileMu.TryLock() {
		return types.RunInfo{}, ErrReconcileRunning
	}
	defer s.reconcileMu.Unlock()

	start := time.Now()
	run := types.RunInfo{RunID: uuid.NewString(), StartedAt: start.UTC()}
	log := s.logger.Named("reconcile")

	info, err := s.reconcile(ctx, &run, log)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordReconcileRun("error", float64(elapsed.Milliseconds()))
		log.Error(ctx, "reconcile failed", logger.String("runID", run.RunID), logger.Error(err))
		return types.RunInfo{}, err
	}
	info.DurationMs = elapsed.Milliseconds()
	metrics.RecordReconcileRun("success", float64(elapsed.Milliseconds()))

	s.mu.Lock()
	s.lastRun = &info
	s.mu.Unlock()

	log.Info(ctx, "reconcile finished",
		logger.String("runID", info.RunID),
		logger.Int("staged", info.Staged),
		logger.Duration("took", elapsed),
	)
	return info, nil
}

func (s *Service) reconcile(ctx context.Context, run *types.RunInfo, log logger.Logger) (types.RunInfo, error) {
	s.mu.RLock()
	records := make([]model.NormalizedRecord, len(s.staged))
	copy(records, s.staged)
	s.mu.RUnlock()
	run.Staged = len(records)

	if len(s.sources) > 0 {
		loaded, stats, err := ingest.LoadAll(ctx, s.sources, ingest.Options{RequireLicenseDate: s.requireLicenseDate})
		if err != nil {
			return types.RunInfo{}, fmt.Errorf("load sources: %w", err)
		}
		run.Sources = stats
		records = append(records, loaded...)
	}
	if len(records) == 0 {
		return types.RunInfo{}, ErrNothingToReconcile
	}

	// Both lists are built before either is stored so a failing view leaves
	// the previous run in place.
	lists := make(map[types.View][]model.MasterRecord, len(types.Views))
	for _, view := range types.Views {
		subset := viewRecords(view, records)
		groups := linkage.GroupByName(subset)
		rows, err := s.link(ctx, groups)
		if err != nil {
			return types.RunInfo{}, fmt.Errorf("link %s view: %w", view, err)
		}
		lists[view] = rows
		run.Views = append(run.Views, types.ViewRun{
			View:       view,
			Records:    len(subset),
			Groups:     len(groups),
			Rows:       len(rows),
			Identities: countIdentities(rows),
		})
	}
	if err := s.store.ReplaceAll(ctx, lists); err != nil {
		return types.RunInfo{}, fmt.Errorf("store master lists: %w", err)
	}

	for _, v := range run.Views {
		metrics.UpdateMasterList(string(v.View), v.Rows, v.Identities)
		log.Info(ctx, "view rebuilt",
			logger.String("view", string(v.View)),
			logger.Int("records", v.Records),
			logger.Int("rows", v.Rows),
			logger.Int("identities", v.Identities),
		)
	}
	return *run, nil
}

// link fans the name groups out to a worker pool and gathers the sorted rows.
func (s *Service) link(ctx context.Context, groups []model.NameGroup) ([]model.MasterRecord, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	sink := newCollector()
	pool := worker.NewPool(s.workerCount, q, s.linker, sink)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		for _, grp := range groups {
			if err := q.EnqueueWait(gctx, grp); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error { return pool.Run(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := sink.drain()
	linkage.SortMaster(rows)
	return rows, nil
}

// Identity returns the rows of one identity.
func (s *Service) Identity(ctx context.Context, view types.View, key string) ([]model.MasterRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Identity(ctx, view, key)
}

// Page returns a slice of the master list.
func (s *Service) Page(ctx context.Context, view types.View, offset, limit int) (types.Page, error) {
	if err := s.ready(); err != nil {
		return types.Page{}, err
	}
	rows, total, err := s.store.Page(ctx, view, offset, limit)
	if err != nil {
		return types.Page{}, err
	}
	return types.Page{View: view, Offset: offset, Limit: limit, Total: total, Rows: rows}, nil
}

// Summary describes one master list.
func (s *Service) Summary(ctx context.Context, view types.View) (types.Summary, error) {
	rows, err := s.all(ctx, view)
	if err != nil {
		return types.Summary{}, err
	}
	return report.Summarize(view, rows), nil
}

// StateCounts returns licenses per issuing state.
func (s *Service) StateCounts(ctx context.Context, view types.View) ([]types.StateCount, error) {
	rows, err := s.all(ctx, view)
	if err != nil {
		return nil, err
	}
	return report.StateCounts(rows), nil
}

// LicenseeCounts returns how many identities hold N licenses.
func (s *Service) LicenseeCounts(ctx context.Context, view types.View) ([]types.LicenseeCount, error) {
	rows, err := s.all(ctx, view)
	if err != nil {
		return nil, err
	}
	return report.LicenseeCounts(rows), nil
}

// LicenseAge returns licenses per year of issue and activity.
func (s *Service) LicenseAge(ctx context.Context, view types.View) ([]types.LicenseAgeBucket, error) {
	rows, err := s.all(ctx, view)
	if err != nil {
		return nil, err
	}
	return report.LicenseAge(rows), nil
}

func (s *Service) all(ctx context.Context, view types.View) ([]model.MasterRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.All(ctx, view)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.ServiceStats {
	s.mu.RLock()
	stats := types.ServiceStats{
		Started:     s.started,
		WorkerCount: s.workerCount,
		QueueSize:   s.queueSize,
		DedupeSize:  s.dedupeSize,
		Staged:      len(s.staged),
		LastRun:     s.lastRun,
		Summaries:   []types.Summary{},
	}
	if s.deduper != nil {
		stats.BatchesSeen = s.deduper.Size()
	}
	s.mu.RUnlock()

	if !stats.Started {
		return stats
	}
	for _, view := range types.Views {
		sum, err := s.Summary(ctx, view)
		if err != nil {
			s.logger.Warn(ctx, "summary unavailable", logger.String("view", string(view)), logger.Error(err))
			continue
		}
		stats.Summaries = append(stats.Summaries, sum)
	}
	metrics.UpdateStagedRecords(stats.Staged)
	return stats
}

func viewRecords(view types.View, records []model.NormalizedRecord) []model.NormalizedRecord {
	if view != types.ViewActive {
		return records
	}
	out := make([]model.NormalizedRecord, 0, len(records))
	for i := range records {
		if records[i].LicenseActive {
			out = append(out, records[i])
		}
	}
	return out
}

func countIdentities(rows []model.MasterRecord) int {
	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		seen[rows[i].IdentityKey] = struct{}{}
	}
	return len(seen)
}
