package engine

import "strconv"

// ID identifies one of the room contents. IDs are dense in [0, NumIDs).
type ID uint8

// Distinguished tokens. Every other ID is plain filler.
const (
	Alpha ID = 0
	Beta  ID = 1
	Gamma ID = 2
)

// Empty marks a right slot that has been consumed.
const Empty ID = 0xFF

const (
	NumIDs             = 25
	NumRooms           = 11
	MaxLevel           = 3
	IncursionsPerTrial = 12
)

// IsToken reports whether id carries a dedicated resolution policy.
func (id ID) IsToken() bool { return id <= Gamma }

func (id ID) String() string {
	switch id {
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Gamma:
		return "gamma"
	case Empty:
		return "empty"
	}
	return strconv.Itoa(int(id))
}

// Side names one of the two content slots of a room.
type Side uint8

const (
	Left  Side = 0
	Right Side = 1
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}
