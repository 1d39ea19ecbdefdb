// Package ingest reads state registry exports and normalizes them into records.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/logger"
	"github.com/okian/licmaster/pkg/metrics"
)

// Options controls which records are admitted.
type Options struct {
	// ActiveOnly drops records whose license is not active.
	ActiveOnly bool
	// RequireLicenseDate drops records without an original license date.
	RequireLicenseDate bool
}

// Source is one registry export on disk.
type Source struct {
	State  string `koanf:"state"`
	Path   string `koanf:"path"`
	Format string `koanf:"format"`
}

// Stats counts what happened to the rows of one source.
type Stats = types.SourceStats

func reject(s *Stats, reason string) {
	if s.Rejected == nil {
		s.Rejected = make(map[string]int)
	}
	s.Rejected[reason]++
	metrics.RecordRejected(s.State, reason)
}

// Admit returns the reason r must be dropped under opts, or "" when it is kept.
func Admit(r *model.NormalizedRecord, opts Options) string {
	switch {
	case r.FirstName == "" && r.LastName == "":
		return ReasonMissingName
	case r.SourceState == "":
		return ReasonMissingState
	case opts.ActiveOnly && !r.LicenseActive:
		return ReasonInactive
	case opts.RequireLicenseDate && r.LicenseDate == nil:
		return ReasonMissingDate
	}
	return ""
}

// Canonicalize tidies a record submitted in already-normalized form.
func Canonicalize(r *model.NormalizedRecord) {
	r.FirstName = CleanName(r.FirstName)
	r.MiddleName = CleanName(r.MiddleName)
	r.LastName = CleanName(r.LastName)
	r.Suffix = CleanName(r.Suffix)
	r.SourceState = strings.ToUpper(strings.TrimSpace(r.SourceState))
	r.OriginState = strings.ToUpper(strings.TrimSpace(r.OriginState))
}

// NormalizeRows maps raw rows of one state and applies opts.
func NormalizeRows(state string, rows []Row, opts Options) ([]model.NormalizedRecord, Stats, error) {
	m, err := MappingFor(state)
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{State: m.State, Read: len(rows)}
	out := make([]model.NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		r := m.Normalize(row)
		if reason := Admit(&r, opts); reason != "" {
			reject(&stats, reason)
			continue
		}
		out = append(out, r)
	}
	stats.Accepted = len(out)
	metrics.RecordIngested(m.State, stats.Accepted)
	return out, stats, nil
}

// Load reads and normalizes one source file.
func Load(ctx context.Context, src Source, opts Options) ([]model.NormalizedRecord, Stats, error) {
	format, err := FormatOf(src.Path, src.Format)
	if err != nil {
		return nil, Stats{}, err
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open %s source: %w", src.State, err)
	}
	defer f.Close()

	rows, err := ReadRows(f, format)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read %s source %s: %w", src.State, src.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	records, stats, err := NormalizeRows(src.State, rows, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	logger.Get().Named("ingest").Info(ctx, "source loaded",
		logger.String("state", stats.State),
		logger.String("path", src.Path),
		logger.Int("read", stats.Read),
		logger.Int("accepted", stats.Accepted),
	)
	return records, stats, nil
}

// LoadAll reads every source concurrently. Records come back in source order.
func LoadAll(ctx context.Context, sources []Source, opts Options) ([]model.NormalizedRecord, []Stats, error) {
	perSource := make([][]model.NormalizedRecord, len(sources))
	stats := make([]Stats, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			recs, st, err := Load(gctx, src, opts)
			if err != nil {
				return err
			}
			perSource[i], stats[i] = recs, st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var total int
	for _, recs := range perSource {
		total += len(recs)
	}
	out := make([]model.NormalizedRecord, 0, total)
	for _, recs := range perSource {
		out = append(out, recs...)
	}
	return out, stats, nil
}
