package service

import (
	"context"
	"sync"

	"github.com/okian/licmaster/internal/domain/linkage"
	"github.com/okian/licmaster/internal/domain/model"
)

// collector gathers the rows produced by the workers of one run.
type collector struct {
	mu   sync.Mutex
	rows []model.MasterRecord
}

func newCollector() *collector {
	return &collector{}
}

func (c *collector) Collect(_ context.Context, _ model.NameKey, res linkage.GroupResult) {
	c.mu.Lock()
	c.rows = append(c.rows, res.Rows...)
	c.mu.Unlock()
}

func (c *collector) drain() []model.MasterRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.rows
	c.rows = nil
	if rows == nil {
		rows = []model.MasterRecord{}
	}
	return rows
}
