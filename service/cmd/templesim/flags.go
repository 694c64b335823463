// cmd/templesim/flags.go
package main

import (
	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/config"
	"github.com/spf13/cobra"
)

// ruleFlags binds one engine.RuleSet to command flags.
type ruleFlags struct {
	mechanic   uint8
	incursions uint8
	skipAlpha  bool
	skipGamma  bool
	skipBeta   bool
	skipLast   bool
	switchLvl0 bool
}

func (f *ruleFlags) bind(cmd *cobra.Command) {
	def := engine.DefaultRuleSet()
	fl := cmd.Flags()
	fl.Uint8Var(&f.mechanic, "mechanic", def.Mechanic, "Room selection mechanic (1 or 2)")
	fl.Uint8Var(&f.incursions, "incursions", def.IncursionsPerMap, "Incursions per map (3 or 4)")
	fl.BoolVar(&f.skipAlpha, "skip-alpha", false, "Open a new map after resolving an incomplete Alpha room")
	fl.BoolVar(&f.skipGamma, "skip-gamma", false, "Open a new map after resolving an incomplete Gamma room")
	fl.BoolVar(&f.skipBeta, "skip-beta", false, "Open a new map after resolving an incomplete Beta room beside a settled Alpha")
	fl.BoolVar(&f.skipLast, "skip-last", false, "Skip the last incursion of each map when no token is on offer")
	fl.BoolVar(&f.switchLvl0, "switch", false, "Take the right content in level 0 rooms while Alpha is unseen")
}

func (f *ruleFlags) ruleSet() engine.RuleSet {
	return engine.RuleSet{
		Mechanic:         f.mechanic,
		IncursionsPerMap: f.incursions,
		SkipAfterAlpha:   f.skipAlpha,
		SkipAfterGamma:   f.skipGamma,
		SkipAfterBeta:    f.skipBeta,
		SkipLastIfLevel0: f.skipLast,
		SwitchIfLevel0:   f.switchLvl0,
	}
}

// runFlags overrides the batch settings of config.Config.
type runFlags struct {
	trials  int
	seed    uint64
	workers int
}

func (f *runFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.trials, "trials", 0, "Trials per rule set (overrides TEMPLESIM_TRIALS)")
	fl.Uint64Var(&f.seed, "seed", 0, "Run seed, 0 draws a random one (overrides TEMPLESIM_SEED)")
	fl.IntVar(&f.workers, "workers", 0, "Worker goroutines, 0 uses GOMAXPROCS (overrides TEMPLESIM_WORKERS)")
}

// apply copies every flag the user set into cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("trials") {
		cfg.Trials = f.trials
	}
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
}
