package engine

// Branch identifies which resolution rule fired for an incursion.
type Branch uint8

const (
	BranchNone         Branch = iota
	BranchAlphaLeft           // Alpha settled on the left: consume right
	BranchAlphaRight          // Alpha offered on the right: promote it
	BranchBetaLeft            // Beta settled next to a settled Alpha
	BranchBetaRight           // Beta offered next to a settled Alpha
	BranchGammaLeft           // Gamma settled on the left
	BranchGammaRight          // Gamma offered on the right
	BranchSkipLast            // last incursion of the epoch skipped
	BranchSeenFallback        // Alpha already seen: keep the left
	BranchSwitchLevel0        // Alpha unseen, level 0: take the right
	BranchDefault             // Alpha unseen: keep the left
)

var branchNames = [...]string{
	BranchNone:         "none",
	BranchAlphaLeft:    "alpha_left",
	BranchAlphaRight:   "alpha_right",
	BranchBetaLeft:     "beta_left",
	BranchBetaRight:    "beta_right",
	BranchGammaLeft:    "gamma_left",
	BranchGammaRight:   "gamma_right",
	BranchSkipLast:     "skip_last",
	BranchSeenFallback: "seen_fallback",
	BranchSwitchLevel0: "switch_level0",
	BranchDefault:      "default",
}

func (b Branch) String() string {
	if int(b) < len(branchNames) {
		return branchNames[b]
	}
	return "unknown"
}

// MarshalText renders the branch by name in traces.
func (b Branch) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// resolve applies the first matching rule to room. Token rules always win
// over the fallbacks, and for each token the left slot is tested first.
func (t *Temple) resolve(room *Room) (Branch, error) {
	r := &t.rules

	switch {
	case room.Matches(Left, Alpha):
		t.alphaSeen = true
		return BranchAlphaLeft, t.settle(room, Right, r.SkipAfterAlpha)

	case room.Matches(Right, Alpha):
		t.alphaSeen = true
		return BranchAlphaRight, t.settle(room, Left, r.SkipAfterAlpha)

	case room.Matches(Left, Beta) && t.betaLinked(room):
		return BranchBetaLeft, t.settle(room, Right, r.SkipAfterBeta)

	case room.Matches(Right, Beta) && t.betaLinked(room):
		return BranchBetaRight, t.settle(room, Left, r.SkipAfterBeta)

	case room.Matches(Left, Gamma):
		return BranchGammaLeft, t.settle(room, Right, r.SkipAfterGamma)

	case room.Matches(Right, Gamma):
		return BranchGammaRight, t.settle(room, Left, r.SkipAfterGamma)

	case r.SkipLastIfLevel0 && t.epochCount+1 == r.IncursionsPerMap:
		t.forceNext = true
		return BranchSkipLast, nil

	case t.alphaSeen:
		return BranchSeenFallback, t.settle(room, Right, false)

	case r.SwitchIfLevel0 && room.Level == 0:
		return BranchSwitchLevel0, t.settle(room, Left, false)

	default:
		return BranchDefault, t.settle(room, Right, false)
	}
}

// settle resolves room toward side and, when skip is set and the room is
// still short of MaxLevel, forces the next epoch.
func (t *Temple) settle(room *Room, side Side, skip bool) error {
	if side == Left {
		if err := room.ResolveTowardLeft(&t.deck, &t.rng); err != nil {
			return err
		}
	} else {
		room.ResolveTowardRight(&t.rng)
	}
	if skip && !room.IsComplete() {
		t.forceNext = true
	}
	return nil
}

// betaLinked reports whether Alpha has been seen and sits settled in a
// room adjacent to room.
func (t *Temple) betaLinked(room *Room) bool {
	if !t.alphaSeen {
		return false
	}
	for _, n := range Neighbors(room.Number) {
		if t.rooms[n].Matches(Left, Alpha) {
			return true
		}
	}
	return false
}
