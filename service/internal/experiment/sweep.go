// internal/experiment/sweep.go
package experiment

import engine "github.com/jason-s-yu/templesim/engine"

// Enumeration order of the sweep: incursions per map is the outer loop and
// every toggle is tried true before false.
var (
	sweepIncursions = [...]uint8{3, 4}
	sweepToggles    = [...]bool{true, false}
)

// SweepSize is the number of rule sets per mechanic.
const SweepSize = len(sweepIncursions) * 32

// Sweep returns every rule-set combination for one mechanic, in a fixed order
// shared by the console output and the CSV rows.
func Sweep(mechanic uint8) []engine.RuleSet {
	out := make([]engine.RuleSet, 0, SweepSize)
	for _, ipm := range sweepIncursions {
		for _, a := range sweepToggles {
			for _, g := range sweepToggles {
				for _, b := range sweepToggles {
					for _, sl := range sweepToggles {
						for _, sw := range sweepToggles {
							out = append(out, engine.RuleSet{
								Mechanic:         mechanic,
								IncursionsPerMap: ipm,
								SkipAfterAlpha:   a,
								SkipAfterGamma:   g,
								SkipAfterBeta:    b,
								SkipLastIfLevel0: sl,
								SwitchIfLevel0:   sw,
							})
						}
					}
				}
			}
		}
	}
	return out
}
