package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/licmaster/internal/adapters/mq/queue"
	"github.com/okian/licmaster/internal/adapters/mq/worker"
	"github.com/okian/licmaster/internal/domain/linkage"
	"github.com/okian/licmaster/internal/domain/model"
	logging "github.com/okian/licmaster/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var errLink = errors.New("link failed")

type mockLinker struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (m *mockLinker) Link(_ context.Context, g model.NameGroup) (linkage.GroupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail[g.Key.FirstName] {
		return linkage.GroupResult{}, errLink
	}
	rows := make([]model.MasterRecord, len(g.Records))
	for i, r := range g.Records {
		rows[i] = model.MasterRecord{FirstName: r.FirstName, LicenseState: r.SourceState}
	}
	return linkage.GroupResult{Rows: rows, Singletons: len(rows)}, nil
}

type collectSink struct {
	mu   sync.Mutex
	keys []model.NameKey
	rows int
}

func (s *collectSink) Collect(_ context.Context, key model.NameKey, res linkage.GroupResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	s.rows += len(res.Rows)
}

func (s *collectSink) count() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys), s.rows
}

func nameGroup(first string, states ...string) model.NameGroup {
	g := model.NameGroup{Key: model.NameKey{FirstName: first, LastNameWithSuffix: "SMITH"}}
	for _, st := range states {
		g.Records = append(g.Records, &model.NormalizedRecord{FirstName: first, LastName: "SMITH", SourceState: st})
	}
	return g
}

func filledQueue(groups ...model.NameGroup) *queue.InMemoryQueue {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(groups) + 1))
	for _, g := range groups {
		q.Enqueue(context.Background(), g)
	}
	_ = q.Close()
	return q
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a closed queue", t, func() {
		_ = logging.Init()
		sink := &collectSink{}
		linker := &mockLinker{}
		q := filledQueue(nameGroup("JOHN", "IL", "CA"), nameGroup("JANE", "WA"))

		convey.Convey("When the worker runs", func() {
			w := worker.NewInMemoryWorker(q, linker, sink, worker.WithName("test-worker"))
			err := w.Run(context.Background())

			convey.Convey("Then every group reaches the sink", func() {
				convey.So(err, convey.ShouldBeNil)
				groups, rows := sink.count()
				convey.So(groups, convey.ShouldEqual, 2)
				convey.So(rows, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When linking fails", func() {
			linker.fail = map[string]bool{"JOHN": true}
			w := worker.NewInMemoryWorker(q, linker, sink)
			err := w.Run(context.Background())

			convey.Convey("Then the worker stops with the error", func() {
				convey.So(errors.Is(err, errLink), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "JOHN SMITH")
				groups, _ := sink.count()
				convey.So(groups, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a worker over an open empty queue", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &mockLinker{}, &collectSink{})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := w.Run(ctx)

			convey.Convey("Then Run returns the context error", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		convey.Convey("When created with a non-positive size", func() {
			p := worker.NewPool(0, queue.NewInMemoryQueue(), &mockLinker{}, &collectSink{})

			convey.Convey("Then it defaults to at least one worker", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		convey.Convey("When many groups are linked concurrently", func() {
			groups := make([]model.NameGroup, 0, 200)
			for i := 0; i < 200; i++ {
				groups = append(groups, nameGroup(string(rune('A'+i%26))+string(rune('A'+i/26)), "IL"))
			}
			sink := &collectSink{}
			p := worker.NewPool(8, filledQueue(groups...), &mockLinker{}, sink)
			err := p.Run(context.Background())

			convey.Convey("Then each group is collected exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				n, rows := sink.count()
				convey.So(n, convey.ShouldEqual, 200)
				convey.So(rows, convey.ShouldEqual, 200)
			})
		})

		convey.Convey("When one group fails", func() {
			linker := &mockLinker{fail: map[string]bool{"BAD": true}}
			q := filledQueue(nameGroup("OK", "IL"), nameGroup("BAD", "CA"))
			err := worker.NewPool(2, q, linker, &collectSink{}).Run(context.Background())

			convey.Convey("Then the pool returns that error", func() {
				convey.So(errors.Is(err, errLink), convey.ShouldBeTrue)
			})
		})
	})
}

func TestDefaultLinker(t *testing.T) {
	convey.Convey("Given the default linker", t, func() {
		g := nameGroup("JOHN", "IL", "CA")
		d := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
		for _, r := range g.Records {
			r.LicenseDate = &d
		}

		convey.Convey("When a group without middle names spans two states", func() {
			res, err := worker.DefaultLinker.Link(context.Background(), g)

			convey.Convey("Then it is merged with low confidence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Rows, convey.ShouldHaveLength, 2)
				convey.So(res.Matches, convey.ShouldResemble, []model.Confidence{model.ConfidenceLow})
			})
		})
	})
}
