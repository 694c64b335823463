// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
)

// Postgres stores runs in a shared PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close releases every pooled connection.
func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

func (db *Postgres) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		trials INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		mechanic SMALLINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		mechanic INTEGER NOT NULL,
		incursions_per_map INTEGER NOT NULL,
		skip_after_alpha BOOLEAN NOT NULL,
		skip_after_gamma BOOLEAN NOT NULL,
		skip_after_beta BOOLEAN NOT NULL,
		skip_last_if_level0 BOOLEAN NOT NULL,
		switch_if_level0 BOOLEAN NOT NULL,
		trials INTEGER NOT NULL,
		total_alpha INTEGER NOT NULL,
		total_gamma INTEGER NOT NULL,
		total_both INTEGER NOT NULL,
		only_alpha INTEGER NOT NULL,
		only_gamma INTEGER NOT NULL,
		total_any INTEGER NOT NULL,
		summed_epochs BIGINT NOT NULL,
		truncated INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.pool.Exec(ctx, schema)
	return err
}

// SaveRun inserts the run and copies its rows in one transaction.
func (db *Postgres) SaveRun(ctx context.Context, run Run, rows []experiment.Row) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO runs (id, started_at, trials, seed, mechanic) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.StartedAt, run.Trials, int64(run.Seed), int16(run.Mechanic)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	columns := []string{"run_id"}
	for _, c := range strings.Split(resultColumns, ",") {
		columns = append(columns, strings.TrimSpace(c))
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"results"}, columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return append([]any{run.ID}, toResultRow(i, rows[i]).args()...), nil
		}))
	if err != nil {
		return fmt.Errorf("copy results: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadRun reads a run and its rows in sweep order.
func (db *Postgres) LoadRun(ctx context.Context, id uuid.UUID) (Run, []experiment.Row, error) {
	run, err := db.scanRun(db.pool.QueryRow(ctx,
		`SELECT id::text, started_at, trials, seed, mechanic FROM runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load results: %w", err)
	}
	rs, err := pgx.CollectRows(rows, pgx.RowToStructByName[resultRow])
	if err != nil {
		return Run{}, nil, fmt.Errorf("scan results: %w", err)
	}
	return run, fromResultRows(rs), nil
}

// Runs lists stored runs, newest first.
func (db *Postgres) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, started_at, trials, seed, mechanic FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := db.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (db *Postgres) scanRun(row pgx.Row) (Run, error) {
	var (
		id       string
		started  time.Time
		trials   int
		seed     int64
		mechanic int16
	)
	if err := row.Scan(&id, &started, &trials, &seed, &mechanic); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	return Run{
		ID:        parsed,
		StartedAt: started.UTC(),
		Trials:    trials,
		Seed:      uint64(seed),
		Mechanic:  uint8(mechanic),
	}, nil
}
