// cmd/templesim/cmd_trial.go
package main

import (
	"encoding/json"

	engine "github.com/jason-s-yu/templesim/engine"
	"github.com/jason-s-yu/templesim/service/internal/config"
	"github.com/spf13/cobra"
)

// trialRoom is the JSON form of a room in the final trace line.
type trialRoom struct {
	Room  uint8     `json:"room"`
	Left  engine.ID `json:"left"`
	Right engine.ID `json:"right"`
	Level uint8     `json:"level"`
}

// trialEnd is the last line of a trace.
type trialEnd struct {
	Seed   uint64         `json:"seed"`
	Rules  engine.RuleSet `json:"rules"`
	Stop   string         `json:"stop"`
	Result engine.Result  `json:"result"`
	Deck   []int          `json:"deck"`
	Rooms  []trialRoom    `json:"rooms"`
}

func newTrialCmd(a *app) *cobra.Command {
	var (
		rules ruleFlags
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Trace a single trial as JSON lines",
		Long: `Run one trial and print every resolved incursion as a JSON object,
followed by a final line with the stop reason, result, deck and rooms.

Contents are printed as numbers: 0 Alpha, 1 Beta, 2 Gamma, 255 empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs := rules.ruleSet()
			if err := rs.Validate(); err != nil {
				return err
			}
			if seed == 0 {
				s, err := config.NewSeed()
				if err != nil {
					return err
				}
				seed = s
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			var encErr error
			t := engine.NewTemple(rs, seed)
			t.OnIncursion = func(inc engine.Incursion) {
				if encErr == nil {
					encErr = enc.Encode(inc)
				}
			}
			stop := t.Run()
			if encErr != nil {
				return encErr
			}
			a.log.WithField("stop", stop.String()).Debug("trial finished")

			end := trialEnd{
				Seed:   seed,
				Rules:  rs,
				Stop:   stop.String(),
				Result: t.Result(),
			}
			deck := t.Deck()
			for _, id := range deck.IDs() {
				end.Deck = append(end.Deck, int(id))
			}
			for _, r := range t.Rooms() {
				end.Rooms = append(end.Rooms, trialRoom{Room: r.Number, Left: r.Left, Right: r.Right, Level: r.Level})
			}
			return enc.Encode(end)
		},
	}

	rules.bind(cmd)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Trial seed, 0 draws a random one")
	return cmd
}
