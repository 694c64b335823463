package engine

// Rand is an inline xorshift64 generator. Each Temple owns one, so trials
// never share random state.
type Rand struct {
	state uint64
}

// NewRand seeds a generator. Seed 0 is corrected to 1 (xorshift can't start at 0).
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = 1
	}
	return Rand{state: seed}
}

// Uint64 advances the generator.
func (r *Rand) Uint64() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// IntN returns a number in [0, n). n must be positive.
func (r *Rand) IntN(n int) int {
	return int(r.Uint64() % uint64(n))
}
