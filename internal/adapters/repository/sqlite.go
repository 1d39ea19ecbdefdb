package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3" // database/sql driver

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
	"github.com/okian/licmaster/pkg/metrics"
)

const (
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 1
)

const schema = `
CREATE TABLE IF NOT EXISTS master_records (
    view                    TEXT    NOT NULL,
    pos                     INTEGER NOT NULL,
    identity_key            TEXT    NOT NULL,
    license_state           TEXT    NOT NULL,
    first_name              TEXT    NOT NULL,
    middle_name             TEXT    NOT NULL,
    last_name               TEXT    NOT NULL,
    match_confidence        TEXT    NOT NULL,
    license_date            TEXT,
    license_year            INTEGER,
    origin_state            TEXT    NOT NULL,
    license_active          INTEGER NOT NULL,
    license_expiration_date TEXT,
    first_license           INTEGER NOT NULL,
    oldest_active_license   TEXT    NOT NULL,
    PRIMARY KEY (view, pos)
);
CREATE INDEX IF NOT EXISTS idx_master_records_identity ON master_records (view, identity_key);
`

const columns = `identity_key, license_state, first_name, middle_name, last_name, match_confidence,
    license_date, license_year, origin_state, license_active, license_expiration_date,
    first_license, oldest_active_license`

// SQLiteStore persists master lists in a SQLite database file.
type SQLiteStore struct {
	db           *sql.DB
	closed       atomic.Bool
	busyTimeout  time.Duration
	maxOpenConns int
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout, maxOpenConns: defaultMaxOpenConns}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

func (s *SQLiteStore) Replace(ctx context.Context, view types.View, rows []model.MasterRecord) error {
	return s.ReplaceAll(ctx, map[types.View][]model.MasterRecord{view: rows})
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, lists map[types.View][]model.MasterRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds())) }()

	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := checkViews(lists); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO master_records (view, pos, `+columns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, view := range types.Views {
		rows, ok := lists[view]
		if !ok {
			continue
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM master_records WHERE view = ?`, string(view)); err != nil {
			return fmt.Errorf("clear %s: %w", view, err)
		}
		for i := range rows {
			r := &rows[i]
			if _, err = stmt.ExecContext(ctx, string(view), i,
				r.IdentityKey, r.LicenseState, r.FirstName, r.MiddleName, r.LastName, string(r.MatchConfidence),
				nullDate(r.LicenseDate), nullYear(r.LicenseYear), r.OriginState, r.LicenseActive,
				nullDate(r.LicenseExpirationDate), r.FirstLicense, r.OldestActiveLicense.String(),
			); err != nil {
				return fmt.Errorf("insert %s row %d: %w", view, i, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Identity(ctx context.Context, view types.View, key string) ([]model.MasterRecord, error) {
	defer observeQuery(time.Now())

	if err := s.check(view); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, `SELECT `+columns+` FROM master_records
        WHERE view = ? AND identity_key = ? ORDER BY pos`, string(view), key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows, nil
}

func (s *SQLiteStore) Page(ctx context.Context, view types.View, offset, limit int) ([]model.MasterRecord, int, error) {
	defer observeQuery(time.Now())

	if err := checkPage(offset, limit); err != nil {
		return nil, 0, err
	}
	total, err := s.Count(ctx, view)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.query(ctx, `SELECT `+columns+` FROM master_records
        WHERE view = ? ORDER BY pos LIMIT ? OFFSET ?`, string(view), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *SQLiteStore) All(ctx context.Context, view types.View) ([]model.MasterRecord, error) {
	defer observeQuery(time.Now())

	if err := s.check(view); err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT `+columns+` FROM master_records WHERE view = ? ORDER BY pos`, string(view))
}

func (s *SQLiteStore) Count(ctx context.Context, view types.View) (int, error) {
	if err := s.check(view); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM master_records WHERE view = ?`, string(view)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", view, err)
	}
	return n, nil
}

// Close closes the database. Later calls fail with ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) check(view types.View) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return checkView(view)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.MasterRecord, error) {
	rs, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query master records: %w", err)
	}
	defer rs.Close()

	out := []model.MasterRecord{}
	for rs.Next() {
		var (
			r                 model.MasterRecord
			confidence, flag  string
			licensed, expires sql.NullString
			year              sql.NullInt64
		)
		if err := rs.Scan(&r.IdentityKey, &r.LicenseState, &r.FirstName, &r.MiddleName, &r.LastName, &confidence,
			&licensed, &year, &r.OriginState, &r.LicenseActive, &expires, &r.FirstLicense, &flag); err != nil {
			return nil, fmt.Errorf("scan master record: %w", err)
		}
		r.MatchConfidence = model.Confidence(confidence)
		if r.OldestActiveLicense, err = model.ParseActiveFlag(flag); err != nil {
			return nil, err
		}
		if r.LicenseDate, err = parseNullDate(licensed); err != nil {
			return nil, err
		}
		if r.LicenseExpirationDate, err = parseNullDate(expires); err != nil {
			return nil, err
		}
		if year.Valid {
			y := int(year.Int64)
			r.LicenseYear = &y
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		// files written before times were kept hold plain days
		if t, err = time.Parse(time.DateOnly, s.String); err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", s.String, err)
		}
	}
	return &t, nil
}
