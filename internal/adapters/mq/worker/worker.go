// Package worker links name groups pulled off the queue and hands the results to a sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/licmaster/internal/domain/linkage"
	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/pkg/logger"
	"github.com/okian/licmaster/pkg/metrics"
)

// Queue defines how workers receive name groups.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.NameGroup
}

// Linker turns one name group into master rows.
type Linker interface {
	Link(ctx context.Context, group model.NameGroup) (linkage.GroupResult, error)
}

// LinkerFunc adapts a function to Linker.
type LinkerFunc func(ctx context.Context, group model.NameGroup) (linkage.GroupResult, error)

// Link calls f.
func (f LinkerFunc) Link(ctx context.Context, group model.NameGroup) (linkage.GroupResult, error) {
	return f(ctx, group)
}

// DefaultLinker runs the linkage pipeline on one group.
var DefaultLinker = NewLinker() //nolint:gochecknoglobals // stateless adapter

// NewLinker returns a Linker running the linkage pipeline with opts.
func NewLinker(opts ...linkage.LinkOption) Linker {
	return LinkerFunc(func(_ context.Context, group model.NameGroup) (linkage.GroupResult, error) {
		return linkage.LinkGroup(group, opts...)
	})
}

// Sink receives linked groups. Implementations must be safe for concurrent use.
type Sink interface {
	Collect(ctx context.Context, key model.NameKey, res linkage.GroupResult)
}

// InMemoryWorker links groups until the queue drains or linking fails.
type InMemoryWorker struct {
	queue  Queue
	linker Linker
	sink   Sink
	name   string
	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, linker Linker, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  q,
		linker: linker,
		sink:   sink,
		name:   "worker",
		logger: logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes groups until the queue is closed and drained or ctx ends.
// The first linking error stops the worker and is returned.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	groups := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case g, ok := <-groups:
			if !ok {
				return nil
			}
			if err := w.process(ctx, g); err != nil {
				return err
			}
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, g model.NameGroup) error { //nolint:gocritic // hugeParam: groups travel by value through the queue
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	res, err := w.linker.Link(ctx, g)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "link_error")
		w.logger.Error(ctx, "linking failed",
			logger.String("worker", w.name),
			logger.String("group", g.Key.String()),
			logger.Error(err),
		)
		return fmt.Errorf("link %s: %w", g.Key, err)
	}

	metrics.RecordGroupProcessed()
	for _, c := range res.Matches {
		metrics.RecordMatch(string(c))
	}
	metrics.RecordSingletons(res.Singletons)
	if res.OriginConflict {
		metrics.RecordOriginConflict()
	}

	w.sink.Collect(ctx, g.Key, res)
	return nil
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a pool. workerCount < 1 means one worker per CPU.
func NewPool(workerCount int, q Queue, linker Linker, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, linker, sink, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Run starts every worker and waits for all of them. The first error cancels
// the remaining workers and is returned.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn(ctx, "worker pool stopped", logger.Error(err))
		return err
	}
	return nil
}
