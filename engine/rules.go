package engine

import "fmt"

// RuleSet parameterizes how a Temple resolves incursions. It is read-only
// once a trial starts and may be shared by every trial of a configuration.
type RuleSet struct {
	Mechanic         uint8 `json:"mechanic"`           // 1 or 2
	IncursionsPerMap uint8 `json:"incursions_per_map"` // 3 or 4
	SkipAfterAlpha   bool  `json:"skip_after_alpha"`
	SkipAfterGamma   bool  `json:"skip_after_gamma"`
	SkipAfterBeta    bool  `json:"skip_after_beta"`
	SkipLastIfLevel0 bool  `json:"skip_last_if_level0"`
	SwitchIfLevel0   bool  `json:"switch_if_level0"`
}

// DefaultRuleSet returns mechanic 1 with three incursions per map and every
// toggle off.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Mechanic:         1,
		IncursionsPerMap: 3,
	}
}

// Validate checks the enumerated fields.
func (r RuleSet) Validate() error {
	if r.Mechanic != 1 && r.Mechanic != 2 {
		return fmt.Errorf("mechanic must be 1 or 2, got %d", r.Mechanic)
	}
	if r.IncursionsPerMap != 3 && r.IncursionsPerMap != 4 {
		return fmt.Errorf("incursions per map must be 3 or 4, got %d", r.IncursionsPerMap)
	}
	return nil
}

func (r RuleSet) String() string {
	return fmt.Sprintf("Rules(m=%d, inc_per_map=%d, skip_after[a=%t, g=%t, b=%t], skip_last_if_lvl0=%t, switch_if_lvl0=%t)",
		r.Mechanic, r.IncursionsPerMap,
		r.SkipAfterAlpha, r.SkipAfterGamma, r.SkipAfterBeta,
		r.SkipLastIfLevel0, r.SwitchIfLevel0)
}

// Key packs the rule set into a compact stable integer, used to derive
// per-trial seeds and cache keys.
func (r RuleSet) Key() uint16 {
	k := uint16(r.Mechanic)<<8 | uint16(r.IncursionsPerMap)<<5
	flags := [5]bool{r.SkipAfterAlpha, r.SkipAfterGamma, r.SkipAfterBeta, r.SkipLastIfLevel0, r.SwitchIfLevel0}
	for i, f := range flags {
		if f {
			k |= 1 << i
		}
	}
	return k
}
