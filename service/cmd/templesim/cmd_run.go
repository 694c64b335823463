// cmd/templesim/cmd_run.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/templesim/service/internal/experiment"
	"github.com/jason-s-yu/templesim/service/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		rules     ruleFlags
		rf        runFlags
		redisAddr string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run trials for a single rule set",
		Long: `Run trials for the rule set described by the flags and print its summary.

Examples:
  templesim run --trials 100000 --seed 42
  templesim run --mechanic 2 --incursions 4 --skip-last --switch --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			rf.apply(cmd, &cfg)
			if cmd.Flags().Changed("redis") {
				cfg.RedisAddr = redisAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ResolveSeed(); err != nil {
				return err
			}

			rs := rules.ruleSet()
			if err := rs.Validate(); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"trials": cfg.Trials,
				"seed":   cfg.Seed,
				"rules":  rs.String(),
			}).Info("run configured")

			runner, release := a.newRunner(ctx, cfg)
			defer release()

			t, err := runner.Run(ctx, rs)
			if err != nil {
				return err
			}
			row := experiment.Row{Rules: rs, Tally: t}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(row)
			}
			fmt.Fprintln(out, report.Summary(row))
			return nil
		},
	}

	rules.bind(cmd)
	rf.bind(cmd)
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the tally cache (overrides TEMPLESIM_REDIS_ADDR)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the row as JSON")
	return cmd
}
