// internal/experiment/seed.go
package experiment

import (
	"fmt"

	engine "github.com/jason-s-yu/templesim/engine"
)

const golden = 0x9E3779B97F4A7C15

// TrialSeed derives the seed of trial i. It depends only on the run seed,
// the rule set and the index, so a tally never depends on how trials were
// split between workers.
func TrialSeed(seed uint64, rules engine.RuleSet, i int) uint64 {
	return splitmix64(seed + uint64(rules.Key())<<40 + uint64(i)*golden)
}

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// CacheKey identifies a tally by everything that determines it.
func CacheKey(rules engine.RuleSet, trials int, seed uint64) string {
	return fmt.Sprintf("v1:%d:%d:%d", rules.Key(), trials, seed)
}
