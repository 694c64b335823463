package engine

import (
	"errors"
	"math/bits"
)

// ErrDeckExhausted is returned when a draw finds no eligible ID.
var ErrDeckExhausted = errors.New("deck exhausted")

const fullDeck uint32 = 1<<NumIDs - 1

// Deck is the pool of IDs available for fresh assignment, kept as an
// occupancy bitset. Iteration is always ascending, so draws depend only on
// the pool contents and the generator.
type Deck struct {
	present uint32
}

// NewDeck returns a deck holding every ID.
func NewDeck() Deck { return Deck{present: fullDeck} }

// Len returns the number of IDs in the pool.
func (d *Deck) Len() int { return bits.OnesCount32(d.present) }

// Contains reports whether id is in the pool.
func (d *Deck) Contains(id ID) bool {
	return id < NumIDs && d.present&(1<<id) != 0
}

// Remove takes id out of the pool. Uniqueness across rooms is the caller's job.
func (d *Deck) Remove(id ID) {
	if id < NumIDs {
		d.present &^= 1 << id
	}
}

// Add returns id to the pool. Empty and out-of-range IDs are ignored.
func (d *Deck) Add(id ID) {
	if id < NumIDs {
		d.present |= 1 << id
	}
}

// IDs returns the pool contents in ascending order.
func (d *Deck) IDs() []ID {
	out := make([]ID, 0, d.Len())
	for w := d.present; w != 0; w &= w - 1 {
		out = append(out, ID(bits.TrailingZeros32(w)))
	}
	return out
}

// Draw samples one ID uniformly from the pool minus exclude without
// removing it.
func (d *Deck) Draw(r *Rand, exclude ...ID) (ID, error) {
	mask := d.present
	for _, id := range exclude {
		if id < NumIDs {
			mask &^= 1 << id
		}
	}

	var eligible [NumIDs]ID
	n := 0
	for w := mask; w != 0; w &= w - 1 {
		eligible[n] = ID(bits.TrailingZeros32(w))
		n++
	}
	if n == 0 {
		return Empty, ErrDeckExhausted
	}
	return eligible[r.IntN(n)], nil
}

// Take draws an ID and removes it from the pool.
func (d *Deck) Take(r *Rand, exclude ...ID) (ID, error) {
	id, err := d.Draw(r, exclude...)
	if err != nil {
		return Empty, err
	}
	d.Remove(id)
	return id, nil
}
