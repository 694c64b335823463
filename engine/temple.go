// Package engine implements the temple incursion simulation.
//
// A Temple is one self-contained trial: eleven rooms on a fixed graph, a
// deck of unused contents and a xorshift generator, mutated by twelve
// incursions. State is held in flat arrays and bitsets so that millions of
// trials can be run without touching the allocator in the hot loop.
package engine

// StopReason tells how a trial's incursion loop ended. None of them is an
// error: the Temple always finalizes and reports a result.
type StopReason uint8

const (
	StopCompleted      StopReason = iota // all incursions ran
	StopNoEligibleRoom                   // every room complete or excluded
	StopDeckExhausted                    // a draw found an empty pool
)

func (s StopReason) String() string {
	switch s {
	case StopCompleted:
		return "completed"
	case StopNoEligibleRoom:
		return "no_eligible_room"
	case StopDeckExhausted:
		return "deck_exhausted"
	}
	return "unknown"
}

// Incursion describes one resolved step, as reported to OnIncursion.
type Incursion struct {
	Step        int    `json:"step"`
	Epoch       int    `json:"epoch"`
	Room        uint8  `json:"room"`
	Branch      Branch `json:"branch"`
	Left        ID     `json:"left"`
	Right       ID     `json:"right"`
	LevelBefore uint8  `json:"level_before"`
	LevelAfter  uint8  `json:"level_after"`
	ForceNext   bool   `json:"force_next"`
}

// Temple holds the complete state of one trial.
type Temple struct {
	rules RuleSet
	rng   Rand
	deck  Deck
	rooms [NumRooms]Room

	alphaSeen  bool
	epoch      int
	epochCount uint8  // incursions resolved in the current epoch
	excluded   uint16 // bitset of room numbers barred this epoch
	forceNext  bool
	last       int8 // room resolved by the previous step, -1 before the first

	populated bool
	finished  bool
	stop      StopReason

	// OnIncursion, when set, is called after every resolved step.
	OnIncursion func(Incursion)
}

// NewTemple creates an unpopulated Temple seeded with seed.
func NewTemple(rules RuleSet, seed uint64) *Temple {
	t := &Temple{
		rules: rules,
		rng:   NewRand(seed),
		deck:  NewDeck(),
		epoch: 1,
		last:  -1,
	}
	for i := range t.rooms {
		t.rooms[i] = Room{Number: uint8(i), Left: Empty, Right: Empty}
	}
	return t
}

// Trial runs a whole trial and returns its result.
func Trial(rules RuleSet, seed uint64) Result {
	t := NewTemple(rules, seed)
	t.Run()
	return t.Result()
}

// Populate fills every room, in room order, with two fresh IDs and a
// starting level of 0 or 1. Calling it again is a no-op.
func (t *Temple) Populate() error {
	if t.populated {
		return nil
	}
	t.populated = true
	for i := range t.rooms {
		room := &t.rooms[i]
		left, err := t.deck.Take(&t.rng)
		if err != nil {
			return err
		}
		right, err := t.deck.Take(&t.rng)
		if err != nil {
			return err
		}
		room.Left, room.Right = left, right
		room.Level = uint8(t.rng.IntN(2))

		// Alpha revealed at level 1 counts as already seen.
		if left == Alpha && room.Level == 1 {
			t.alphaSeen = true
		}
	}
	return nil
}

// Run populates the Temple if needed, executes the incursion loop and
// applies the end-of-trial bonus. A second call returns the first reason.
func (t *Temple) Run() StopReason {
	if t.finished {
		return t.stop
	}
	t.stop = t.incursions()
	t.finalize()
	t.finished = true
	return t.stop
}

func (t *Temple) incursions() StopReason {
	if err := t.Populate(); err != nil {
		return StopDeckExhausted
	}

	for step := 0; step < IncursionsPerTrial; step++ {
		t.advanceEpoch()

		n, ok := t.selectRoom()
		if !ok {
			return StopNoEligibleRoom
		}
		room := &t.rooms[n]
		before := room.Level

		branch, err := t.resolve(room)
		if err != nil {
			return StopDeckExhausted
		}

		t.excluded |= 1 << n
		t.epochCount++
		t.last = int8(n)

		if t.OnIncursion != nil {
			t.OnIncursion(Incursion{
				Step:        step + 1,
				Epoch:       t.epoch,
				Room:        n,
				Branch:      branch,
				Left:        room.Left,
				Right:       room.Right,
				LevelBefore: before,
				LevelAfter:  room.Level,
				ForceNext:   t.forceNext,
			})
		}
	}
	return StopCompleted
}

// advanceEpoch opens a new epoch when the previous step forced one or the
// quota is used up. The two paths differ in how the exclusion set is
// reseeded.
func (t *Temple) advanceEpoch() {
	quota := t.rules.IncursionsPerMap

	if t.forceNext && t.epochCount != quota {
		t.newEpoch()
		t.excludeLast()
	}

	if t.epochCount == quota {
		t.newEpoch()
		// Mechanic 1 never repeats the last room across a boundary.
		if t.rules.Mechanic == 1 {
			t.excludeLast()
		}
	}

	t.forceNext = false
}

func (t *Temple) newEpoch() {
	t.epoch++
	t.epochCount = 0
	t.excluded = 0
}

func (t *Temple) excludeLast() {
	if t.last >= 0 {
		t.excluded |= 1 << uint8(t.last)
	}
}

// selectRoom picks uniformly among rooms that are neither complete nor
// excluded, scanning in room order.
func (t *Temple) selectRoom() (uint8, bool) {
	var candidates [NumRooms]uint8
	n := 0
	for i := range t.rooms {
		if t.rooms[i].IsComplete() || t.excluded&(1<<i) != 0 {
			continue
		}
		candidates[n] = uint8(i)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return candidates[t.rng.IntN(n)], true
}

// finalize lets the first completed Beta room, in room order, raise every
// neighbor by one level.
func (t *Temple) finalize() {
	for i := range t.rooms {
		room := &t.rooms[i]
		if room.Left != Beta || !room.IsComplete() {
			continue
		}
		for _, n := range Neighbors(room.Number) {
			t.rooms[n].BumpLevel()
		}
		return
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// Rules returns the rule set the Temple was built with.
func (t *Temple) Rules() RuleSet { return t.rules }

// Rooms returns a copy of the room array.
func (t *Temple) Rooms() [NumRooms]Room { return t.rooms }

// Deck returns a copy of the deck.
func (t *Temple) Deck() Deck { return t.deck }

// Epoch returns the current epoch, starting at 1.
func (t *Temple) Epoch() int { return t.epoch }

// AlphaSeen reports whether Alpha has been revealed.
func (t *Temple) AlphaSeen() bool { return t.alphaSeen }

// Stopped returns the stop reason once Run has finished.
func (t *Temple) Stopped() (StopReason, bool) { return t.stop, t.finished }
