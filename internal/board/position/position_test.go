package position

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		positions []int64
		want      int64
		branch    Branch
	}{
		{"empty column", 0, nil, 65536, BranchEmpty},
		{"empty column any index", 3, []int64{}, 65536, BranchEmpty},
		{"insert at head", 0, []int64{100000}, 50000, BranchHead},
		{"append at end", 1, []int64{100000}, 165536, BranchTail},
		{"index past end", 9, []int64{100, 200}, 65736, BranchTail},
		{"wide gap midpoint", 1, []int64{100, 200}, 150, BranchMidpoint},
		{"odd midpoint floors", 1, []int64{100, 111}, 105, BranchMidpoint},
		{"narrow gap", 1, []int64{100, 105}, 32868, BranchCollision},
		{"gap of exactly ten", 1, []int64{100, 110}, 32868, BranchCollision},
		{"negative index", -2, []int64{7}, 3, BranchHead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, branch := AllocateWithBranch(tt.index, tt.positions)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.branch, branch)
			assert.Equal(t, tt.want, Allocate(tt.index, tt.positions))
		})
	}
}

func TestAllocate_NarrowGapBreaksOrdering(t *testing.T) {
	got := Allocate(1, []int64{100, 105})
	assert.Equal(t, int64(100)+CollisionOffset, got)
	assert.Greater(t, got, int64(105))
}

func TestAllocate_MidpointStrictlyBetweenNeighbours(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		n := 2 + rng.Intn(20)
		positions := make([]int64, n)
		for j := range positions {
			positions[j] = rng.Int63n(1 << 40)
		}
		sort.Slice(positions, func(a, b int) bool { return positions[a] < positions[b] })

		index := 1 + rng.Intn(n-1)
		got, branch := AllocateWithBranch(index, positions)
		if positions[index]-positions[index-1] > MinGap {
			assert.Equal(t, BranchMidpoint, branch)
			assert.Greater(t, got, positions[index-1])
			assert.Less(t, got, positions[index])
		} else {
			assert.Equal(t, BranchCollision, branch)
		}
	}
}

func TestRenumber(t *testing.T) {
	assert.Empty(t, Renumber(0))
	assert.Equal(t, []int64{65536, 131072, 196608}, Renumber(3))

	// fresh keys leave room for a midpoint everywhere
	keys := Renumber(4)
	for i := 1; i < len(keys); i++ {
		_, branch := AllocateWithBranch(i, keys)
		assert.Equal(t, BranchMidpoint, branch)
	}
}

func TestBranchString(t *testing.T) {
	assert.Equal(t, "collision", BranchCollision.String())
	assert.Equal(t, "unknown", Branch(99).String())
}
