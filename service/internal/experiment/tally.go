// internal/experiment/tally.go
package experiment

import engine "github.com/jason-s-yu/templesim/engine"

// Tally aggregates trial results for one rule set.
type Tally struct {
	Trials     int `json:"trials"`
	TotalAlpha int `json:"total_alpha"`
	TotalGamma int `json:"total_gamma"`
	TotalBoth  int `json:"total_both"`
	OnlyAlpha  int `json:"only_alpha"`
	OnlyGamma  int `json:"only_gamma"`
	TotalAny   int `json:"total_any"`
	Epochs     int `json:"summed_epochs"`
	Truncated  int `json:"truncated"` // trials that stopped before the last incursion
}

// Add folds one trial result into the tally.
func (t *Tally) Add(r engine.Result) {
	t.Trials++
	t.Epochs += r.Epochs
	if r.AlphaComplete {
		t.TotalAlpha++
	}
	if r.GammaComplete {
		t.TotalGamma++
	}
	switch {
	case r.AlphaComplete && r.GammaComplete:
		t.TotalBoth++
	case r.AlphaComplete:
		t.OnlyAlpha++
	case r.GammaComplete:
		t.OnlyGamma++
	}
	if r.AlphaComplete || r.GammaComplete {
		t.TotalAny++
	}
}

// Merge adds every counter of o into t.
func (t *Tally) Merge(o Tally) {
	t.Trials += o.Trials
	t.TotalAlpha += o.TotalAlpha
	t.TotalGamma += o.TotalGamma
	t.TotalBoth += o.TotalBoth
	t.OnlyAlpha += o.OnlyAlpha
	t.OnlyGamma += o.OnlyGamma
	t.TotalAny += o.TotalAny
	t.Epochs += o.Epochs
	t.Truncated += o.Truncated
}

// Percent returns n as a percentage of the trial count.
func (t Tally) Percent(n int) float64 {
	if t.Trials == 0 {
		return 0
	}
	return float64(n) / float64(t.Trials) * 100
}

// AvgEpochs is the mean number of epochs (maps) per trial.
func (t Tally) AvgEpochs() float64 {
	if t.Trials == 0 {
		return 0
	}
	return float64(t.Epochs) / float64(t.Trials)
}

// Row pairs a rule set with its aggregate.
type Row struct {
	Rules engine.RuleSet `json:"rules"`
	Tally Tally          `json:"tally"`
}
