// Package position assigns sparse integer sort keys to tasks dropped into a column.
//
// Keys leave wide gaps so an insert normally needs no renumbering of siblings:
// the first task gets Base, appends add Base, and inserts between two tasks take
// the midpoint. When the gap is too small to split, the key jumps CollisionOffset
// past the previous task, which can land at or beyond the next task. Renumber
// produces fresh keys for a column when that happens.
package position

// Allocation constants.
const (
	Base            int64 = 65536
	MinGap          int64 = 10
	CollisionOffset int64 = 32768
)

// Branch names the rule that produced a position.
type Branch int

const (
	BranchEmpty Branch = iota
	BranchHead
	BranchTail
	BranchMidpoint
	BranchCollision
)

func (b Branch) String() string {
	switch b {
	case BranchEmpty:
		return "empty"
	case BranchHead:
		return "head"
	case BranchTail:
		return "tail"
	case BranchMidpoint:
		return "midpoint"
	case BranchCollision:
		return "collision"
	}
	return "unknown"
}

// Allocate returns the position for an item inserted at index into a column
// whose current positions, excluding the item itself, are given in ascending order.
func Allocate(index int, positions []int64) int64 {
	pos, _ := AllocateWithBranch(index, positions)
	return pos
}

// AllocateWithBranch is Allocate that also reports which rule fired.
func AllocateWithBranch(index int, positions []int64) (int64, Branch) {
	n := len(positions)
	switch {
	case n == 0:
		return Base, BranchEmpty
	case index <= 0:
		return floorDiv(positions[0], 2), BranchHead
	case index >= n:
		return positions[n-1] + Base, BranchTail
	}

	before, after := positions[index-1], positions[index]
	if after-before > MinGap {
		return floorDiv(before+after, 2), BranchMidpoint
	}
	return before + CollisionOffset, BranchCollision
}

// Renumber returns n evenly spaced positions: Base, 2*Base, and so on.
func Renumber(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i+1) * Base
	}
	return out
}

// floorDiv rounds toward negative infinity, matching floor for negative keys.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
