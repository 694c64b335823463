package engine

// Room is one node of the temple. Left holds the settled content that
// accumulates levels; Right holds the candidate offered on the next visit.
type Room struct {
	Number uint8
	Left   ID
	Right  ID
	Level  uint8
}

// IsComplete reports whether the room reached MaxLevel.
func (r *Room) IsComplete() bool { return r.Level >= MaxLevel }

// Matches tests the named slot against id.
func (r *Room) Matches(s Side, id ID) bool {
	if s == Right {
		return r.Right == id
	}
	return r.Left == id
}

// ResolveTowardLeft promotes the right slot. The old left is dropped for
// good, the old right becomes the left and is recycled into the deck after a
// fresh right has been drawn. Level rises by one.
//
// On ErrDeckExhausted the room and the deck are left untouched.
func (r *Room) ResolveTowardLeft(d *Deck, rng *Rand) error {
	next, err := d.Draw(rng, r.Right)
	if err != nil {
		return err
	}
	d.Remove(next)
	if r.Right != Empty {
		d.Add(r.Right)
		r.Left = r.Right
	}
	r.Right = next
	r.raise(1)
	return nil
}

// ResolveTowardRight confirms the left slot and consumes the right one.
// Level rises by 1 or 2 with equal probability.
func (r *Room) ResolveTowardRight(rng *Rand) {
	r.Right = Empty
	r.raise(1 + uint8(rng.IntN(2)))
}

// BumpLevel raises the level by one.
func (r *Room) BumpLevel() { r.raise(1) }

func (r *Room) raise(n uint8) {
	r.Level = min(MaxLevel, r.Level+n)
}
