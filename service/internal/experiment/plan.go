// internal/experiment/plan.go
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	engine "github.com/jason-s-yu/templesim/engine"
	"gopkg.in/yaml.v3"
)

// Plan is a sweep description loaded from YAML. Zero Trials or Seed leave
// the configured values in place. An explicit Rules list replaces the full
// sweep of the listed mechanics.
type Plan struct {
	Trials    int        `yaml:"trials,omitempty"`
	Seed      uint64     `yaml:"seed,omitempty"`
	Mechanics []uint8    `yaml:"mechanics,omitempty"`
	Rules     []PlanRule `yaml:"rules,omitempty"`
}

// PlanRule is one explicit rule set in a Plan.
type PlanRule struct {
	Mechanic         uint8 `yaml:"mechanic"`
	IncursionsPerMap uint8 `yaml:"incursions_per_map"`
	SkipAfterAlpha   bool  `yaml:"skip_after_alpha"`
	SkipAfterGamma   bool  `yaml:"skip_after_gamma"`
	SkipAfterBeta    bool  `yaml:"skip_after_beta"`
	SkipLastIfLevel0 bool  `yaml:"skip_last_if_level0"`
	SwitchIfLevel0   bool  `yaml:"switch_if_level0"`
}

// RuleSet converts the plan entry.
func (p PlanRule) RuleSet() engine.RuleSet {
	return engine.RuleSet{
		Mechanic:         p.Mechanic,
		IncursionsPerMap: p.IncursionsPerMap,
		SkipAfterAlpha:   p.SkipAfterAlpha,
		SkipAfterGamma:   p.SkipAfterGamma,
		SkipAfterBeta:    p.SkipAfterBeta,
		SkipLastIfLevel0: p.SkipLastIfLevel0,
		SwitchIfLevel0:   p.SwitchIfLevel0,
	}
}

// ParsePlan decodes and validates a YAML plan. Unknown keys are rejected.
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(data)
}

// Validate checks trial count, mechanics and every explicit rule.
func (p Plan) Validate() error {
	if p.Trials < 0 {
		return fmt.Errorf("plan: trials must not be negative, got %d", p.Trials)
	}
	for _, m := range p.Mechanics {
		if m != 1 && m != 2 {
			return fmt.Errorf("plan: mechanic must be 1 or 2, got %d", m)
		}
	}
	for i, r := range p.Rules {
		if err := r.RuleSet().Validate(); err != nil {
			return fmt.Errorf("plan: rule %d: %w", i, err)
		}
	}
	return nil
}

// Groups returns the rule sets to run, keyed by mechanic in first-seen
// order. Explicit rules are grouped by their mechanic; otherwise each listed
// mechanic expands to its full Sweep.
func (p Plan) Groups() []Group {
	if len(p.Rules) == 0 {
		out := make([]Group, 0, len(p.Mechanics))
		for _, m := range p.Mechanics {
			out = append(out, Group{Mechanic: m, Rules: Sweep(m)})
		}
		return out
	}

	var out []Group
	index := map[uint8]int{}
	for _, r := range p.Rules {
		rs := r.RuleSet()
		i, ok := index[rs.Mechanic]
		if !ok {
			i = len(out)
			index[rs.Mechanic] = i
			out = append(out, Group{Mechanic: rs.Mechanic})
		}
		out[i].Rules = append(out[i].Rules, rs)
	}
	return out
}

// RuleSets flattens Groups.
func (p Plan) RuleSets() []engine.RuleSet {
	var out []engine.RuleSet
	for _, g := range p.Groups() {
		out = append(out, g.Rules...)
	}
	return out
}

// Group is the set of rule sets written to one mechanic's CSV file.
type Group struct {
	Mechanic uint8
	Rules    []engine.RuleSet
}
