package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/alexanderjulianmartinez/data-guard/pkg/types"
)

// Store keeps one audit row per guard run so operators can query when a
// dataset last shrank and what the collector added over time.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}

	return &Store{
		db:      db,
		timeout: 5 * time.Second,
	}, nil
}

func (s *Store) RecordRun(ctx context.Context, run types.RunSummary) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guard_runs
			(started_at, finished_at, ok, changed, collector_ok, files_checked, files_shrunk, records_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.FinishedAt, run.OK, run.Changed, run.CollectorOK,
		run.FilesChecked, run.FilesShrunk, run.RecordsAdded)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
