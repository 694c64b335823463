package engine

import "testing"

// allRuleSets returns every mechanic/quota/toggle combination.
func allRuleSets() []RuleSet {
	var out []RuleSet
	for m := uint8(1); m <= 2; m++ {
		for q := uint8(3); q <= 4; q++ {
			for f := 0; f < 32; f++ {
				out = append(out, RuleSet{
					Mechanic:         m,
					IncursionsPerMap: q,
					SkipAfterAlpha:   f&1 != 0,
					SkipAfterGamma:   f&2 != 0,
					SkipAfterBeta:    f&4 != 0,
					SkipLastIfLevel0: f&8 != 0,
					SwitchIfLevel0:   f&16 != 0,
				})
			}
		}
	}
	return out
}

// record runs a trial and returns every reported incursion.
func record(rules RuleSet, seed uint64) (*Temple, []Incursion) {
	tp := NewTemple(rules, seed)
	var steps []Incursion
	tp.OnIncursion = func(inc Incursion) { steps = append(steps, inc) }
	tp.Run()
	return tp, steps
}

// TestPopulate verifies room filling: 22 distinct IDs, 3 left in the deck,
// starting levels 0 or 1, alphaSeen set only for Alpha revealed at level 1.
func TestPopulate(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		tp := NewTemple(DefaultRuleSet(), seed)
		if err := tp.Populate(); err != nil {
			t.Fatalf("seed %d: Populate: %v", seed, err)
		}

		seen := make(map[ID]bool)
		wantSeen := false
		for i, room := range tp.Rooms() {
			if room.Number != uint8(i) {
				t.Fatalf("room %d has Number %d", i, room.Number)
			}
			if room.Level > 1 {
				t.Errorf("seed %d room %d: Level = %d, want 0 or 1", seed, i, room.Level)
			}
			for _, id := range []ID{room.Left, room.Right} {
				if id >= NumIDs {
					t.Fatalf("seed %d room %d: slot holds %s", seed, i, id)
				}
				if seen[id] {
					t.Fatalf("seed %d: ID %s assigned twice", seed, id)
				}
				seen[id] = true
			}
			if room.Left == Alpha && room.Level == 1 {
				wantSeen = true
			}
		}

		deck := tp.Deck()
		if deck.Len() != NumIDs-2*NumRooms {
			t.Errorf("seed %d: deck Len = %d, want %d", seed, deck.Len(), NumIDs-2*NumRooms)
		}
		for _, id := range deck.IDs() {
			if seen[id] {
				t.Errorf("seed %d: ID %s both in deck and a room", seed, id)
			}
		}
		if tp.AlphaSeen() != wantSeen {
			t.Errorf("seed %d: AlphaSeen = %v, want %v", seed, tp.AlphaSeen(), wantSeen)
		}
	}
}

// TestPopulateIdempotent verifies a second Populate changes nothing.
func TestPopulateIdempotent(t *testing.T) {
	tp := NewTemple(DefaultRuleSet(), 9)
	tp.Populate()
	before := tp.Rooms()
	tp.Populate()
	if tp.Rooms() != before {
		t.Error("second Populate mutated rooms")
	}
}

// TestTrialGoldenSeed42 pins the default rule set at seed 42.
func TestTrialGoldenSeed42(t *testing.T) {
	tp, steps := record(DefaultRuleSet(), 42)

	want := Result{AlphaComplete: true, GammaComplete: true, Epochs: 4}
	if got := tp.Result(); got != want {
		t.Fatalf("Result = %+v, want %+v", got, want)
	}

	wantRooms := []uint8{7, 2, 9, 7, 2, 4, 10, 0, 1, 9, 8, 6}
	wantBranches := []Branch{
		BranchSeenFallback, BranchSeenFallback, BranchGammaRight,
		BranchSeenFallback, BranchSeenFallback, BranchAlphaLeft,
		BranchSeenFallback, BranchSeenFallback, BranchSeenFallback,
		BranchGammaLeft, BranchBetaLeft, BranchSeenFallback,
	}
	if len(steps) != IncursionsPerTrial {
		t.Fatalf("got %d incursions, want %d", len(steps), IncursionsPerTrial)
	}
	for i, s := range steps {
		if s.Room != wantRooms[i] || s.Branch != wantBranches[i] {
			t.Errorf("step %d: room %d %s, want room %d %s", i+1, s.Room, s.Branch, wantRooms[i], wantBranches[i])
		}
		if wantEpoch := i/3 + 1; s.Epoch != wantEpoch {
			t.Errorf("step %d: epoch %d, want %d", i+1, s.Epoch, wantEpoch)
		}
	}

	wantFinal := [NumRooms]Room{
		{0, 24, Empty, 1}, {1, 4, Empty, 3}, {2, 19, Empty, 3}, {3, 10, 21, 0},
		{4, Alpha, Empty, 3}, {5, 17, 6, 1}, {6, 15, Empty, 2}, {7, 3, Empty, 3},
		{8, Beta, Empty, 2}, {9, Gamma, Empty, 3}, {10, 12, Empty, 2},
	}
	if got := tp.Rooms(); got != wantFinal {
		t.Errorf("final rooms:\n got %+v\nwant %+v", got, wantFinal)
	}
	deck := tp.Deck()
	if ids := deck.IDs(); len(ids) != 3 || ids[0] != Gamma || ids[1] != 11 || ids[2] != 20 {
		t.Errorf("final deck = %v, want [gamma 11 20]", ids)
	}
}

// TestTrialGoldenForcedEpochs pins a seed where skip toggles force epochs
// through both boundary paths.
func TestTrialGoldenForcedEpochs(t *testing.T) {
	rules := RuleSet{
		Mechanic:         1,
		IncursionsPerMap: 3,
		SkipAfterAlpha:   true,
		SkipAfterGamma:   true,
		SkipAfterBeta:    true,
		SkipLastIfLevel0: true,
	}
	tp, steps := record(rules, 42)

	want := Result{AlphaComplete: true, GammaComplete: false, Epochs: 5}
	if got := tp.Result(); got != want {
		t.Fatalf("Result = %+v, want %+v", got, want)
	}

	wantRooms := []uint8{7, 2, 9, 7, 2, 4, 10, 0, 1, 9, 5, 8}
	wantEpochs := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 5, 5}
	wantForce := map[int]bool{3: true, 9: true, 10: true}
	for i, s := range steps {
		if s.Room != wantRooms[i] || s.Epoch != wantEpochs[i] {
			t.Errorf("step %d: room %d epoch %d, want room %d epoch %d", s.Step, s.Room, s.Epoch, wantRooms[i], wantEpochs[i])
		}
		if s.ForceNext != wantForce[s.Step] {
			t.Errorf("step %d: ForceNext = %v", s.Step, s.ForceNext)
		}
	}
	if steps[8].Branch != BranchSkipLast {
		t.Errorf("step 9 branch = %s, want skip_last", steps[8].Branch)
	}
}

// TestTrialGoldenMechanic2 pins mechanic 2 with the level-0 toggles.
func TestTrialGoldenMechanic2(t *testing.T) {
	rules := RuleSet{Mechanic: 2, IncursionsPerMap: 4, SkipLastIfLevel0: true, SwitchIfLevel0: true}
	got := Trial(rules, 42)
	want := Result{AlphaComplete: true, GammaComplete: true, Epochs: 3}
	if got != want {
		t.Errorf("Result = %+v, want %+v", got, want)
	}
}

// TestTrialDeterministic verifies the same seed reproduces the same trial.
func TestTrialDeterministic(t *testing.T) {
	for _, rules := range allRuleSets() {
		for seed := uint64(1); seed <= 5; seed++ {
			_, a := record(rules, seed)
			_, b := record(rules, seed)
			if len(a) != len(b) {
				t.Fatalf("%s seed %d: %d vs %d incursions", rules, seed, len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("%s seed %d: step %d differs: %+v vs %+v", rules, seed, i+1, a[i], b[i])
				}
			}
			if Trial(rules, seed) != Trial(rules, seed) {
				t.Fatalf("%s seed %d: results differ", rules, seed)
			}
		}
	}
}

// TestTrialExclusionWithinEpoch verifies no room is visited twice in an epoch.
func TestTrialExclusionWithinEpoch(t *testing.T) {
	for _, rules := range allRuleSets() {
		for seed := uint64(1); seed <= 20; seed++ {
			_, steps := record(rules, seed)
			visited := make(map[[2]int]bool)
			for _, s := range steps {
				k := [2]int{s.Epoch, int(s.Room)}
				if visited[k] {
					t.Fatalf("%s seed %d: room %d visited twice in epoch %d", rules, seed, s.Room, s.Epoch)
				}
				visited[k] = true
			}
		}
	}
}

// TestTrialEpochBoundary verifies the last room of an epoch is barred from
// the first step of the next one: always under mechanic 1, and under
// mechanic 2 when the boundary was forced before the quota was reached.
func TestTrialEpochBoundary(t *testing.T) {
	for _, rules := range allRuleSets() {
		for seed := uint64(1); seed <= 20; seed++ {
			_, steps := record(rules, seed)
			inEpoch := 0
			for i := 1; i < len(steps); i++ {
				prev, cur := steps[i-1], steps[i]
				if cur.Epoch == prev.Epoch {
					inEpoch++
					continue
				}
				inEpoch++
				forced := inEpoch < int(rules.IncursionsPerMap)
				if (rules.Mechanic == 1 || forced) && cur.Room == prev.Room {
					t.Fatalf("%s seed %d: room %d repeated across boundary at step %d", rules, seed, cur.Room, cur.Step)
				}
				if cur.Epoch != prev.Epoch+1 {
					t.Fatalf("%s seed %d: epoch jumped %d -> %d", rules, seed, prev.Epoch, cur.Epoch)
				}
				inEpoch = 0
			}
		}
	}
}

// TestTrialInvariants checks, after every incursion, that levels never
// decrease or exceed MaxLevel, that the deck keeps its size, and that the
// deck and the right slots never share an ID.
func TestTrialInvariants(t *testing.T) {
	for _, rules := range allRuleSets() {
		for seed := uint64(1); seed <= 20; seed++ {
			tp := NewTemple(rules, seed)
			if err := tp.Populate(); err != nil {
				t.Fatalf("Populate: %v", err)
			}
			prev := tp.Rooms()
			check := func(where string) {
				rooms := tp.Rooms()
				deck := tp.Deck()
				if deck.Len() != NumIDs-2*NumRooms {
					t.Fatalf("%s seed %d %s: deck Len = %d", rules, seed, where, deck.Len())
				}
				rights := make(map[ID]bool)
				for i, room := range rooms {
					if room.Level < prev[i].Level || room.Level > MaxLevel {
						t.Fatalf("%s seed %d %s: room %d level %d -> %d", rules, seed, where, i, prev[i].Level, room.Level)
					}
					if room.Left == Empty {
						t.Fatalf("%s seed %d %s: room %d lost its left", rules, seed, where, i)
					}
					if room.Right == Empty {
						continue
					}
					if rights[room.Right] || deck.Contains(room.Right) {
						t.Fatalf("%s seed %d %s: right slot %s duplicated", rules, seed, where, room.Right)
					}
					rights[room.Right] = true
				}
				prev = rooms
			}
			tp.OnIncursion = func(inc Incursion) { check("step") }
			tp.Run()
			check("final")
		}
	}
}

// TestResultMatchesRooms verifies Result agrees with the final rooms.
func TestResultMatchesRooms(t *testing.T) {
	for seed := uint64(1); seed <= 300; seed++ {
		tp := NewTemple(RuleSet{Mechanic: 2, IncursionsPerMap: 3, SkipAfterGamma: true}, seed)
		tp.Run()
		var alpha, gamma bool
		for _, room := range tp.Rooms() {
			if room.IsComplete() && room.Left == Alpha {
				alpha = true
			}
			if room.IsComplete() && room.Left == Gamma {
				gamma = true
			}
		}
		res := tp.Result()
		if res.AlphaComplete != alpha || res.GammaComplete != gamma || res.Epochs != tp.Epoch() {
			t.Fatalf("seed %d: Result = %+v, rooms say alpha=%v gamma=%v epoch=%d", seed, res, alpha, gamma, tp.Epoch())
		}
	}
}

// TestRunNoEligibleRoom verifies the loop stops quietly when every room is
// complete and the trial still finalizes.
func TestRunNoEligibleRoom(t *testing.T) {
	tp := NewTemple(DefaultRuleSet(), 3)
	tp.Populate()
	for i := range tp.rooms {
		tp.rooms[i].Level = MaxLevel
	}
	tp.rooms[2].Left = Alpha

	if got := tp.Run(); got != StopNoEligibleRoom {
		t.Fatalf("Run = %s, want no_eligible_room", got)
	}
	res := tp.Result()
	if !res.AlphaComplete || res.Epochs != 1 {
		t.Errorf("Result = %+v", res)
	}
	if again := tp.Run(); again != StopNoEligibleRoom {
		t.Errorf("second Run = %s", again)
	}
}

// TestRunDeckExhausted verifies an empty deck aborts the trial without
// touching the room being resolved.
func TestRunDeckExhausted(t *testing.T) {
	tp := newScriptedTemple(DefaultRuleSet())
	for i := range tp.rooms {
		tp.rooms[i].Level = MaxLevel
	}
	tp.rooms[0] = Room{Number: 0, Left: 5, Right: Alpha, Level: 0}
	tp.deck = Deck{}

	var calls int
	tp.OnIncursion = func(Incursion) { calls++ }
	if got := tp.Run(); got != StopDeckExhausted {
		t.Fatalf("Run = %s, want deck_exhausted", got)
	}
	if calls != 0 {
		t.Errorf("OnIncursion called %d times", calls)
	}
	if room := tp.Rooms()[0]; room.Left != 5 || room.Right != Alpha || room.Level != 0 {
		t.Errorf("room 0 = %+v, want untouched", room)
	}
	if reason, done := tp.Stopped(); !done || reason != StopDeckExhausted {
		t.Errorf("Stopped = %s, %v", reason, done)
	}
}

// TestFinalizeBetaBonus verifies the first completed Beta room raises its
// neighbors and a later one is ignored.
func TestFinalizeBetaBonus(t *testing.T) {
	tp := newScriptedTemple(DefaultRuleSet())
	tp.rooms[3].Left = Beta
	tp.rooms[3].Level = MaxLevel
	tp.rooms[10].Left = Beta
	tp.rooms[10].Level = MaxLevel
	tp.rooms[0].Level = 2

	tp.finalize()

	for _, n := range Neighbors(3) {
		want := uint8(2)
		if n == 0 {
			want = MaxLevel
		}
		if tp.rooms[n].Level != want {
			t.Errorf("neighbor %d: Level = %d, want %d", n, tp.rooms[n].Level, want)
		}
	}
	for _, n := range Neighbors(10) {
		if Adjacent(n, 3) || n == 3 {
			continue
		}
		if tp.rooms[n].Level != 1 {
			t.Errorf("room %d next to second beta: Level = %d, want 1", n, tp.rooms[n].Level)
		}
	}
}

// TestFinalizeIncompleteBeta verifies a Beta short of MaxLevel gives nothing.
func TestFinalizeIncompleteBeta(t *testing.T) {
	tp := newScriptedTemple(DefaultRuleSet())
	tp.rooms[5].Left = Beta
	tp.rooms[5].Level = 2
	before := tp.Rooms()
	tp.finalize()
	if tp.Rooms() != before {
		t.Error("incomplete beta applied a bonus")
	}
}

// TestAdvanceEpoch exercises both boundary paths directly.
func TestAdvanceEpoch(t *testing.T) {
	tests := []struct {
		name         string
		mechanic     uint8
		used         uint8
		force        bool
		wantEpoch    int
		wantExcluded uint16
	}{
		{"mid epoch", 1, 2, false, 1, 0xFFFF},
		{"quota mechanic 1", 1, 3, false, 2, 1 << 5},
		{"quota mechanic 2", 2, 3, false, 2, 0},
		{"forced mechanic 2", 2, 1, true, 2, 1 << 5},
		{"forced mechanic 1", 1, 2, true, 2, 1 << 5},
		{"forced at quota mechanic 2", 2, 3, true, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := NewTemple(RuleSet{Mechanic: tt.mechanic, IncursionsPerMap: 3}, 1)
			tp.epochCount = tt.used
			tp.forceNext = tt.force
			tp.last = 5
			tp.excluded = 0xFFFF

			tp.advanceEpoch()

			if tp.epoch != tt.wantEpoch {
				t.Errorf("epoch = %d, want %d", tp.epoch, tt.wantEpoch)
			}
			if tp.excluded != tt.wantExcluded {
				t.Errorf("excluded = %#x, want %#x", tp.excluded, tt.wantExcluded)
			}
			if tp.forceNext {
				t.Error("forceNext not cleared")
			}
			if tt.wantEpoch > 1 && tp.epochCount != 0 {
				t.Errorf("epochCount = %d, want 0", tp.epochCount)
			}
		})
	}
}

func BenchmarkTrial(b *testing.B) {
	rules := DefaultRuleSet()
	for i := 0; i < b.N; i++ {
		Trial(rules, uint64(i)+1)
	}
}
