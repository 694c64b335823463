// internal/experiment/runner.go
package experiment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoTrials is returned when a Runner is asked to run zero trials.
var ErrNoTrials = errors.New("trial count must be positive")

// chunkSize is the number of consecutive trials a worker runs between
// cancellation checks.
const chunkSize = 4096

// Cache stores finished tallies. Implementations live in internal/cache.
type Cache interface {
	Get(ctx context.Context, key string) (Tally, bool, error)
	Set(ctx context.Context, key string, t Tally) error
}

// Runner runs batches of independent trials for rule sets.
type Runner struct {
	Trials  int
	Workers int // <= 0 runs on a single goroutine
	Seed    uint64
	Cache   Cache              // optional
	Log     logrus.FieldLogger // optional
}

var discard = logging.Discard()

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return discard
	}
	return r.Log
}

// Run executes r.Trials trials of rules and returns their tally. A cached
// tally for the same rules, trial count and seed is returned without running.
func (r *Runner) Run(ctx context.Context, rules engine.RuleSet) (Tally, error) {
	if r.Trials <= 0 {
		return Tally{}, ErrNoTrials
	}
	if err := rules.Validate(); err != nil {
		return Tally{}, fmt.Errorf("run %s: %w", rules, err)
	}
	log := r.logger().WithField("rules", rules.String())
	key := CacheKey(rules, r.Trials, r.Seed)

	if r.Cache != nil {
		t, ok, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.WithError(err).Warn("cache lookup failed, recomputing")
		case ok:
			log.Debug("served from cache")
			return t, nil
		}
	}

	started := time.Now()
	t, err := r.simulate(ctx, rules)
	if err != nil {
		return Tally{}, err
	}
	log.WithFields(logrus.Fields{
		"trials":    t.Trials,
		"truncated": t.Truncated,
		"elapsed":   time.Since(started).String(),
	}).Debug("rule set finished")

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, t); err != nil {
			log.WithError(err).Warn("cache store failed")
		}
	}
	return t, nil
}

func (r *Runner) simulate(ctx context.Context, rules engine.RuleSet) (Tally, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		mu    sync.Mutex
		total Tally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < r.Trials; start += chunkSize {
		if gctx.Err() != nil {
			break
		}
		end := min(start+chunkSize, r.Trials)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part := runChunk(rules, r.Seed, start, end)
			mu.Lock()
			total.Merge(part)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Tally{}, fmt.Errorf("run %s: %w", rules, err)
	}
	if err := ctx.Err(); err != nil {
		return Tally{}, fmt.Errorf("run %s: %w", rules, err)
	}
	return total, nil
}

func runChunk(rules engine.RuleSet, seed uint64, start, end int) Tally {
	var t Tally
	for i := start; i < end; i++ {
		temple := engine.NewTemple(rules, TrialSeed(seed, rules, i))
		if temple.Run() != engine.StopCompleted {
			t.Truncated++
		}
		t.Add(temple.Result())
	}
	return t
}

// RunAll runs every rule set in order. visit, when non-nil, is called with
// each row as soon as it is ready.
func (r *Runner) RunAll(ctx context.Context, rules []engine.RuleSet, visit func(Row)) ([]Row, error) {
	rows := make([]Row, 0, len(rules))
	for _, rs := range rules {
		t, err := r.Run(ctx, rs)
		if err != nil {
			return rows, err
		}
		row := Row{Rules: rs, Tally: t}
		rows = append(rows, row)
		if visit != nil {
			visit(row)
		}
	}
	return rows, nil
}

// RunSweep runs the full sweep of one mechanic.
func (r *Runner) RunSweep(ctx context.Context, mechanic uint8, visit func(Row)) ([]Row, error) {
	r.logger().WithField("mechanic", mechanic).Info("sweep started")
	return r.RunAll(ctx, Sweep(mechanic), visit)
}
