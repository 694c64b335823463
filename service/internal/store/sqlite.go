// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite stores runs in a local database file.
type SQLite struct {
	conn *sqlx.DB
}

// runRecord is the SQLite form of a Run. The seed is stored as the int64
// with the same bits, and timestamps as fixed-width UTC text.
type runRecord struct {
	ID        string `db:"id"`
	StartedAt string `db:"started_at"`
	Trials    int    `db:"trials"`
	Seed      int64  `db:"seed"`
	Mechanic  int    `db:"mechanic"`
}

func (r runRecord) run() (Run, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	started, err := time.Parse(timeLayout, r.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run start: %w", err)
	}
	return Run{
		ID:        id,
		StartedAt: started,
		Trials:    r.Trials,
		Seed:      uint64(r.Seed),
		Mechanic:  uint8(r.Mechanic),
	}, nil
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		trials INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		mechanic INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id),
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
		summed_epochs INTEGER NOT NULL,
		truncated INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes the run and all its rows in one transaction.
func (db *SQLite) SaveRun(ctx context.Context, run Run, rows []experiment.Row) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, trials, seed, mechanic) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt.UTC().Format(timeLayout),
		run.Trials, int64(run.Seed), int(run.Mechanic)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO results (run_id, `+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := append([]any{run.ID.String()}, toResultRow(i, row).args()...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadRun reads a run and its rows in sweep order.
func (db *SQLite) LoadRun(ctx context.Context, id uuid.UUID) (Run, []experiment.Row, error) {
	var rec runRecord
	err := db.conn.GetContext(ctx, &rec,
		`SELECT id, started_at, trials, seed, mechanic FROM runs WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run: %w", err)
	}
	run, err := rec.run()
	if err != nil {
		return Run{}, nil, err
	}

	var rs []resultRow
	if err := db.conn.SelectContext(ctx, &rs,
		`SELECT `+resultColumns+` FROM results WHERE run_id = ? ORDER BY position`, id.String()); err != nil {
		return Run{}, nil, fmt.Errorf("load results: %w", err)
	}
	return run, fromResultRows(rs), nil
}

// Runs lists stored runs, newest first.
func (db *SQLite) Runs(ctx context.Context) ([]Run, error) {
	var recs []runRecord
	if err := db.conn.SelectContext(ctx, &recs,
		`SELECT id, started_at, trials, seed, mechanic FROM runs ORDER BY started_at DESC`); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]Run, 0, len(recs))
	for _, rec := range recs {
		run, err := rec.run()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}
