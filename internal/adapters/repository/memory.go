package repository

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/metrics"
)

// snapshot is an immutable master list. Readers never lock.
type snapshot struct {
	rows  []model.MasterRecord
	byKey map[string][]int
}

func newSnapshot(rows []model.MasterRecord) *snapshot {
	s := &snapshot{
		rows:  make([]model.MasterRecord, len(rows)),
		byKey: make(map[string][]int),
	}
	copy(s.rows, rows)
	for i := range s.rows {
		k := s.rows[i].IdentityKey
		s.byKey[k] = append(s.byKey[k], i)
	}
	return s
}

// MemoryStore keeps one snapshot per view. All views are published together
// through a single atomic pointer, so readers never see a half-applied
// ReplaceAll.
type MemoryStore struct {
	writeMu sync.Mutex
	views   atomic.Pointer[map[types.View]*snapshot]
	closed  atomic.Bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	empty := newSnapshot(nil)
	views := make(map[types.View]*snapshot, len(types.Views))
	for _, v := range types.Views {
		views[v] = empty
	}
	s.views.Store(&views)
	return s
}

func (s *MemoryStore) snapshot(view types.View) (*snapshot, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	if err := checkView(view); err != nil {
		return nil, err
	}
	return (*s.views.Load())[view], nil
}

func (s *MemoryStore) Replace(ctx context.Context, view types.View, rows []model.MasterRecord) error {
	return s.ReplaceAll(ctx, map[types.View][]model.MasterRecord{view: rows})
}

func (s *MemoryStore) ReplaceAll(_ context.Context, lists map[types.View][]model.MasterRecord) error {
	start := time.Now()
	defer func() { metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds())) }()

	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := checkViews(lists); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	next := maps.Clone(*s.views.Load())
	for view, rows := range lists {
		next[view] = newSnapshot(rows)
	}
	s.views.Store(&next)
	return nil
}

func (s *MemoryStore) Identity(_ context.Context, view types.View, key string) ([]model.MasterRecord, error) {
	defer observeQuery(time.Now())

	snap, err := s.snapshot(view)
	if err != nil {
		return nil, err
	}
	idx, ok := snap.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.MasterRecord, len(idx))
	for i, j := range idx {
		out[i] = snap.rows[j]
	}
	return out, nil
}

func (s *MemoryStore) Page(_ context.Context, view types.View, offset, limit int) ([]model.MasterRecord, int, error) {
	defer observeQuery(time.Now())

	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	snap, err := s.snapshot(view)
	if err != nil {
		return nil, 0, err
	}
	total := len(snap.rows)
	if offset >= total {
		return []model.MasterRecord{}, total, nil
	}
	end := min(offset+limit, total)
	out := make([]model.MasterRecord, end-offset)
	copy(out, snap.rows[offset:end])
	return out, total, nil
}

func (s *MemoryStore) All(_ context.Context, view types.View) ([]model.MasterRecord, error) {
	defer observeQuery(time.Now())

	snap, err := s.snapshot(view)
	if err != nil {
		return nil, err
	}
	out := make([]model.MasterRecord, len(snap.rows))
	copy(out, snap.rows)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, view types.View) (int, error) {
	snap, err := s.snapshot(view)
	if err != nil {
		return 0, err
	}
	return len(snap.rows), nil
}

func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}
