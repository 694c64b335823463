package engine

// adjacency is the fixed room graph. It is symmetric.
var adjacency = [NumRooms][]uint8{
	0:  {1, 2, 3},
	1:  {0, 3, 4},
	2:  {0, 3, 5, 6},
	3:  {0, 1, 2, 4, 6, 7},
	4:  {1, 3, 7, 8},
	5:  {2, 6, 9},
	6:  {2, 3, 5, 7, 9},
	7:  {3, 4, 6, 8, 10},
	8:  {4, 7, 10},
	9:  {5, 6},
	10: {7, 8},
}

// Neighbors returns the rooms adjacent to room. The slice must not be modified.
func Neighbors(room uint8) []uint8 {
	if room >= NumRooms {
		return nil
	}
	return adjacency[room]
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b uint8) bool {
	for _, n := range Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}
