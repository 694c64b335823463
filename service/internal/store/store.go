// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/experiment"
)

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run describes one stored sweep of a single mechanic.
type Run struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Trials    int       `json:"trials"`
	Seed      uint64    `json:"seed"`
	Mechanic  uint8     `json:"mechanic"`
}

// NewRun stamps a fresh run id and start time.
func NewRun(trials int, seed uint64, mechanic uint8) Run {
	return Run{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Trials:    trials,
		Seed:      seed,
		Mechanic:  mechanic,
	}
}

// ResultStore persists finished sweeps.
type ResultStore interface {
	SaveRun(ctx context.Context, run Run, rows []experiment.Row) error
	LoadRun(ctx context.Context, id uuid.UUID) (Run, []experiment.Row, error)
	Runs(ctx context.Context) ([]Run, error)
	Close() error
}

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs go
// to Postgres, anything else is a SQLite file path (an optional sqlite://
// prefix is stripped).
func Open(ctx context.Context, dsn string) (ResultStore, error) {
	switch {
	case dsn == "":
		return nil, fmt.Errorf("open store: empty dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		db, err := OpenSQLite(strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

// resultRow is the flat form of an experiment.Row shared by both backends.
type resultRow struct {
	Position         int  `db:"position"`
	Mechanic         int  `db:"mechanic"`
	IncursionsPerMap int  `db:"incursions_per_map"`
	SkipAfterAlpha   bool `db:"skip_after_alpha"`
	SkipAfterGamma   bool `db:"skip_after_gamma"`
	SkipAfterBeta    bool `db:"skip_after_beta"`
	SkipLastIfLevel0 bool `db:"skip_last_if_level0"`
	SwitchIfLevel0   bool `db:"switch_if_level0"`
	Trials           int  `db:"trials"`
	TotalAlpha       int  `db:"total_alpha"`
	TotalGamma       int  `db:"total_gamma"`
	TotalBoth        int  `db:"total_both"`
	OnlyAlpha        int  `db:"only_alpha"`
	OnlyGamma        int  `db:"only_gamma"`
	TotalAny         int  `db:"total_any"`
	SummedEpochs     int  `db:"summed_epochs"`
	Truncated        int  `db:"truncated"`
}

const resultColumns = `position, mechanic, incursions_per_map,
	skip_after_alpha, skip_after_gamma, skip_after_beta, skip_last_if_level0, switch_if_level0,
	trials, total_alpha, total_gamma, total_both, only_alpha, only_gamma, total_any,
	summed_epochs, truncated`

func toResultRow(i int, row experiment.Row) resultRow {
	r, t := row.Rules, row.Tally
	return resultRow{
		Position:         i,
		Mechanic:         int(r.Mechanic),
		IncursionsPerMap: int(r.IncursionsPerMap),
		SkipAfterAlpha:   r.SkipAfterAlpha,
		SkipAfterGamma:   r.SkipAfterGamma,
		SkipAfterBeta:    r.SkipAfterBeta,
		SkipLastIfLevel0: r.SkipLastIfLevel0,
		SwitchIfLevel0:   r.SwitchIfLevel0,
		Trials:           t.Trials,
		TotalAlpha:       t.TotalAlpha,
		TotalGamma:       t.TotalGamma,
		TotalBoth:        t.TotalBoth,
		OnlyAlpha:        t.OnlyAlpha,
		OnlyGamma:        t.OnlyGamma,
		TotalAny:         t.TotalAny,
		SummedEpochs:     t.Epochs,
		Truncated:        t.Truncated,
	}
}

// args lists the values in resultColumns order.
func (r resultRow) args() []any {
	return []any{
		r.Position, r.Mechanic, r.IncursionsPerMap,
		r.SkipAfterAlpha, r.SkipAfterGamma, r.SkipAfterBeta, r.SkipLastIfLevel0, r.SwitchIfLevel0,
		r.Trials, r.TotalAlpha, r.TotalGamma, r.TotalBoth, r.OnlyAlpha, r.OnlyGamma, r.TotalAny,
		r.SummedEpochs, r.Truncated,
	}
}

func (r resultRow) row() experiment.Row {
	return experiment.Row{
		Rules: engine.RuleSet{
			Mechanic:         uint8(r.Mechanic),
			IncursionsPerMap: uint8(r.IncursionsPerMap),
			SkipAfterAlpha:   r.SkipAfterAlpha,
			SkipAfterGamma:   r.SkipAfterGamma,
			SkipAfterBeta:    r.SkipAfterBeta,
			SkipLastIfLevel0: r.SkipLastIfLevel0,
			SwitchIfLevel0:   r.SwitchIfLevel0,
		},
		Tally: experiment.Tally{
			Trials:     r.Trials,
			TotalAlpha: r.TotalAlpha,
			TotalGamma: r.TotalGamma,
			TotalBoth:  r.TotalBoth,
			OnlyAlpha:  r.OnlyAlpha,
			OnlyGamma:  r.OnlyGamma,
			TotalAny:   r.TotalAny,
			Epochs:     r.SummedEpochs,
			Truncated:  r.Truncated,
		},
	}
}

func fromResultRows(rs []resultRow) []experiment.Row {
	out := make([]experiment.Row, len(rs))
	for i, r := range rs {
		out[i] = r.row()
	}
	return out
}
