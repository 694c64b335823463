// cmd/templesim/cmd_show.go
package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/templesim/service/internal/report"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		storeDSN string
		csvOut   bool
	)

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "List stored runs or print one",
		Long: `Without arguments, list the runs in the result store, newest first.
With a run id, print the stored summaries of that run, or its CSV with --csv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			if cmd.Flags().Changed("store") {
				cfg.StoreDSN = storeDSN
			}
			if cfg.StoreDSN == "" {
				return fmt.Errorf("no result store configured: set TEMPLESIM_STORE_DSN or --store")
			}
			results, err := a.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer results.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := results.Runs(ctx)
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %s  mechanic=%d trials=%d seed=%d\n",
						r.ID, r.StartedAt.Format(time.RFC3339), r.Mechanic, r.Trials, r.Seed)
				}
				return nil
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			run, rows, err := results.LoadRun(ctx, id)
			if err != nil {
				return err
			}
			if csvOut {
				return report.WriteCSV(out, rows)
			}
			fmt.Fprintln(out, report.Header(run.Mechanic, run.Trials, run.Seed))
			for _, row := range rows {
				fmt.Fprintln(out, report.Summary(row))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storeDSN, "store", "", "Result store: SQLite path or postgres:// URL (overrides TEMPLESIM_STORE_DSN)")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Print the run as CSV")
	return cmd
}
