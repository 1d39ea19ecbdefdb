package service

import (
	"github.com/okian/licmaster/internal/adapters/ingest"
	"github.com/okian/licmaster/internal/adapters/mq/worker"
	"github.com/okian/licmaster/internal/adapters/repository"
	"github.com/okian/licmaster/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of linkage workers per reconcile run.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the name-group queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many batch IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the master list store. Defaults to a MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSources adds registry exports read on every reconcile.
func WithSources(sources []ingest.Source) Option {
	return func(s *Service) {
		s.sources = append(s.sources, sources...)
	}
}

// WithRequireLicenseDate drops records without a license date at ingest.
// When false, undated records are kept and always emitted as singletons.
func WithRequireLicenseDate(required bool) Option {
	return func(s *Service) {
		s.requireLicenseDate = required
	}
}

// WithLinker replaces the linkage pipeline run by the workers. It takes
// precedence over the linker chosen by WithRequireLicenseDate.
func WithLinker(l worker.Linker) Option {
	return func(s *Service) {
		if l != nil {
			s.linker = l
		}
	}
}
