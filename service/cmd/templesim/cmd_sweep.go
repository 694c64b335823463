// cmd/templesim/cmd_sweep.go
package main

import (
	"fmt"

	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/jason-s-yu/templesim/service/internal/report"
	"github.com/jason-s-yu/templesim/service/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		rf        runFlags
		mechanics []int
		outDir    string
		storeDSN  string
		redisAddr string
		planPath  string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every rule combination and write one CSV per mechanic",
		Long: `Run the full sweep of 64 rule sets for each selected mechanic, print a
summary line per rule set and write temple_simulation_mechanic_<m>.csv.

A YAML plan (--plan) can set trials, seed and mechanics, or list explicit
rule sets instead of the full sweep. Flags override the plan.

Examples:
  templesim sweep --trials 100000 --seed 42
  templesim sweep --mechanic 2 --out results --store results/runs.db
  templesim sweep --plan plans/short.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			var plan experiment.Plan
			if planPath != "" {
				p, err := experiment.LoadPlan(planPath)
				if err != nil {
					return err
				}
				plan = p
				if plan.Trials > 0 {
					cfg.Trials = plan.Trials
				}
				if plan.Seed != 0 {
					cfg.Seed = plan.Seed
				}
				if len(plan.Mechanics) > 0 {
					cfg.Mechanics = nil
					for _, m := range plan.Mechanics {
						cfg.Mechanics = append(cfg.Mechanics, int(m))
					}
				}
			}

			rf.apply(cmd, &cfg)
			fl := cmd.Flags()
			if fl.Changed("mechanic") {
				cfg.Mechanics = mechanics
			}
			if fl.Changed("out") {
				cfg.OutDir = outDir
			}
			if fl.Changed("store") {
				cfg.StoreDSN = storeDSN
			}
			if fl.Changed("redis") {
				cfg.RedisAddr = redisAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ResolveSeed(); err != nil {
				return err
			}

			var groups []experiment.Group
			if len(plan.Rules) > 0 {
				groups = plan.Groups()
			} else {
				for _, m := range cfg.Mechanics {
					groups = append(groups, experiment.Group{Mechanic: uint8(m), Rules: experiment.Sweep(uint8(m))})
				}
			}

			a.log.WithFields(logrus.Fields{
				"trials":  cfg.Trials,
				"seed":    cfg.Seed,
				"workers": cfg.WorkerCount(),
			}).Info("sweep configured")

			runner, release := a.newRunner(ctx, cfg)
			defer release()

			results, err := a.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if results != nil {
				defer results.Close()
			}

			out := cmd.OutOrStdout()
			for _, g := range groups {
				fmt.Fprintln(out, report.Header(g.Mechanic, cfg.Trials, cfg.Seed))
				rows, err := runner.RunAll(ctx, g.Rules, func(row experiment.Row) {
					if !quiet {
						fmt.Fprintln(out, report.Summary(row))
					}
				})
				if err != nil {
					return err
				}

				path, err := report.SaveCSV(cfg.OutDir, g.Mechanic, rows)
				if err != nil {
					return err
				}
				log := a.log.WithField("mechanic", g.Mechanic)
				log.WithField("path", path).Info("results written")

				if results != nil {
					run := store.NewRun(cfg.Trials, cfg.Seed, g.Mechanic)
					if err := results.SaveRun(ctx, run, rows); err != nil {
						return fmt.Errorf("store run: %w", err)
					}
					log.WithField("run_id", run.ID).Info("run stored")
				}
			}
			return nil
		},
	}

	rf.bind(cmd)
	fl := cmd.Flags()
	fl.IntSliceVar(&mechanics, "mechanic", nil, "Mechanics to sweep (overrides TEMPLESIM_MECHANICS)")
	fl.StringVar(&outDir, "out", "", "Directory for CSV output (overrides TEMPLESIM_OUT_DIR)")
	fl.StringVar(&storeDSN, "store", "", "Result store: SQLite path or postgres:// URL (overrides TEMPLESIM_STORE_DSN)")
	fl.StringVar(&redisAddr, "redis", "", "Redis address for the tally cache (overrides TEMPLESIM_REDIS_ADDR)")
	fl.StringVar(&planPath, "plan", "", "YAML sweep plan")
	fl.BoolVarP(&quiet, "quiet", "q", false, "Do not print per-rule summaries")
	return cmd
}
