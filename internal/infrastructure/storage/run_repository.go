package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// RunRepository journals run reports into the sync_runs / sync_run_targets
// tables. It is write-only audit: the pipeline never reads it back.
type RunRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RunRepository = (*RunRepository)(nil)

// NewRunRepository wires a sql.DB implementation.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun inserts the run row and one row per synchronized target.
func (r *RunRepository) SaveRun(ctx context.Context, report domain.RunReport) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("sync_runs").
		Columns("id", "started_at", "finished_at", "feed_size").
		Values(report.ID, report.StartedAt, report.FinishedAt, report.FeedSize).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, target := range report.Targets {
		query, args, err := r.builder.
			Insert("sync_run_targets").
			Columns("run_id", "target", "catalog_size", "stocks", "in_stock", "prices").
			Values(report.ID, target.Target, target.CatalogSize, target.Stocks, target.InStock, target.Prices).
			ToSql()
		if err != nil {
			return fmt.Errorf("build target insert: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert target %s: %w", target.Target, err)
		}
	}

	return nil
}
