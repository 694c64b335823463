package engine

// Result is the outcome of one trial.
type Result struct {
	AlphaComplete bool `json:"alpha_complete"`
	GammaComplete bool `json:"gamma_complete"`
	Epochs        int  `json:"epochs"`
}

// Result reports whether a completed room settled on Alpha and on Gamma,
// plus the number of epochs the trial used.
func (t *Temple) Result() Result {
	res := Result{Epochs: t.epoch}
	for i := range t.rooms {
		room := &t.rooms[i]
		if !room.IsComplete() {
			continue
		}
		switch room.Left {
		case Alpha:
			res.AlphaComplete = true
		case Gamma:
			res.GammaComplete = true
		}
	}
	return res
}
