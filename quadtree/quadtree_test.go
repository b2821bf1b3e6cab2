package quadtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/aukilabs/quadmap/geometry"
	"github.com/stretchr/testify/require"
)

func region(x, y, w, h uint32) geometry.Region {
	return geometry.NewRegion(geometry.NewPoint(x, y), geometry.NewSize(w, h))
}

func sortPoints(points []geometry.Point) []geometry.Point {
	sorted := append([]geometry.Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted
}

func TestQuadtreeCreation(t *testing.T) {
	tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
	require.True(t, tree.IsLeaf())
	require.Equal(t, DefaultCapacity, tree.Capacity())
	require.Equal(t, region(0, 0, 4, 4), tree.Region())
	require.Zero(t, tree.Size())
	require.Empty(t, tree.Points())
	require.Nil(t, tree.Children())

	require.Panics(t, func() {
		NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(4, 4), 0)
	})
}

func TestQuadtreeFromRegion(t *testing.T) {
	tree := FromRegion(region(3, 5, 7, 2), 2)
	require.True(t, tree.IsLeaf())
	require.Equal(t, 2, tree.Capacity())
	require.Equal(t, region(3, 5, 7, 2), tree.Region())

	tree.InsertPoint(geometry.NewPoint(3, 5))
	tree.InsertPoint(geometry.NewPoint(9, 6))
	tree.InsertPoint(geometry.NewPoint(2, 5))
	require.Equal(t, 2, tree.Size())

	require.Panics(t, func() {
		FromRegion(region(0, 0, 1, 1), 0)
	})
}

func TestQuadtreeInsertPoint(t *testing.T) {
	t.Run("point outside the region is ignored", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		tree.InsertPoint(geometry.NewPoint(4, 0))
		tree.InsertPoint(geometry.NewPoint(0, 10))
		require.Zero(t, tree.Size())
		require.True(t, tree.IsLeaf())
	})

	t.Run("leaf keeps points up to capacity", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		for x := uint32(0); x < 4; x++ {
			tree.InsertPoint(geometry.NewPoint(x, 0))
		}
		require.True(t, tree.IsLeaf())
		require.Len(t, tree.Points(), 4)
	})

	t.Run("inserting past capacity splits", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		tree.InsertPoint(geometry.NewPoint(0, 0))
		tree.InsertPoint(geometry.NewPoint(1, 0))
		tree.InsertPoint(geometry.NewPoint(2, 0))
		tree.InsertPoint(geometry.NewPoint(3, 0))
		tree.InsertPoint(geometry.NewPoint(0, 1))

		require.False(t, tree.IsLeaf())
		require.Empty(t, tree.Points())
		require.Len(t, tree.Children(), 4)
		require.Equal(t, 5, tree.Size())

		children := tree.Children()
		require.Equal(t, region(0, 0, 2, 2), children[0].Region())
		require.Equal(t, region(2, 0, 2, 2), children[1].Region())
		require.Equal(t, region(0, 2, 2, 2), children[2].Region())
		require.Equal(t, region(2, 2, 2, 2), children[3].Region())
		require.Equal(t, 3, children[0].Size())
		require.Equal(t, 2, children[1].Size())

		points := tree.QueryRegion(region(0, 0, 2, 2))
		require.ElementsMatch(t, []geometry.Point{
			geometry.NewPoint(0, 0),
			geometry.NewPoint(1, 0),
			geometry.NewPoint(0, 1),
		}, points)

		points = tree.QueryRegion(region(0, 0, 2, 1))
		require.ElementsMatch(t, []geometry.Point{
			geometry.NewPoint(0, 0),
			geometry.NewPoint(1, 0),
		}, points)
	})

	t.Run("split node stays interior", func(t *testing.T) {
		tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(8, 8), 1)
		tree.InsertPoint(geometry.NewPoint(0, 0))
		tree.InsertPoint(geometry.NewPoint(7, 7))
		require.False(t, tree.IsLeaf())

		tree.RemovePoint(geometry.NewPoint(0, 0))
		tree.RemovePoint(geometry.NewPoint(7, 7))
		tree.InsertPoint(geometry.NewPoint(3, 3))
		require.False(t, tree.IsLeaf())
		require.Empty(t, tree.Points())
		require.Equal(t, 1, tree.Size())
	})

	t.Run("duplicates in a single cell do not split forever", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		for i := 0; i < 20; i++ {
			tree.InsertPoint(geometry.NewPoint(1, 1))
		}
		require.Equal(t, 20, tree.Size())
		require.Len(t, tree.QueryRegion(region(1, 1, 1, 1)), 20)
		require.LessOrEqual(t, tree.Depth(), 2)
	})

	t.Run("odd sized region", func(t *testing.T) {
		tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(5, 3), 1)
		var all []geometry.Point
		for y := uint32(0); y < 3; y++ {
			for x := uint32(0); x < 5; x++ {
				p := geometry.NewPoint(x, y)
				tree.InsertPoint(p)
				all = append(all, p)
			}
		}
		require.Equal(t, 15, tree.Size())
		require.ElementsMatch(t, all, tree.QueryRegion(tree.Region()))
	})
}

func TestQuadtreeSplitContract(t *testing.T) {
	tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
	tree.InsertPoint(geometry.NewPoint(0, 0))

	require.Panics(t, func() {
		tree.split()
	})
}

func TestQuadtreeQueryRegion(t *testing.T) {
	t.Run("query order puts own points before quadrants", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		tree.InsertPoint(geometry.NewPoint(3, 3))
		tree.InsertPoint(geometry.NewPoint(0, 0))
		tree.InsertPoint(geometry.NewPoint(2, 0))
		tree.InsertPoint(geometry.NewPoint(0, 2))
		tree.InsertPoint(geometry.NewPoint(1, 1))

		require.Equal(t, []geometry.Point{
			geometry.NewPoint(0, 0),
			geometry.NewPoint(1, 1),
			geometry.NewPoint(2, 0),
			geometry.NewPoint(0, 2),
			geometry.NewPoint(3, 3),
		}, tree.QueryRegion(tree.Region()))
	})

	t.Run("query outside the tree is empty", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		tree.InsertPoint(geometry.NewPoint(1, 1))
		require.Empty(t, tree.QueryRegion(region(10, 10, 5, 5)))
		require.Empty(t, tree.QueryRegion(region(0, 0, 0, 0)))
	})

	t.Run("query overlapping but not containing quadrants", func(t *testing.T) {
		tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(16, 16), 2)
		for i := uint32(0); i < 16; i++ {
			tree.InsertPoint(geometry.NewPoint(i, i))
		}

		points := tree.QueryRegion(region(6, 6, 4, 4))
		require.ElementsMatch(t, []geometry.Point{
			geometry.NewPoint(6, 6),
			geometry.NewPoint(7, 7),
			geometry.NewPoint(8, 8),
			geometry.NewPoint(9, 9),
		}, points)
	})
}

func TestQuadtreeInsertQueryAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, capacity := range []int{1, 2, 4, 7} {
		tree := NewWithCapacity(geometry.NewPoint(3, 2), geometry.NewSize(37, 23), capacity)

		var inserted []geometry.Point
		for i := 0; i < 300; i++ {
			p := geometry.NewPoint(3+uint32(rng.Intn(37)), 2+uint32(rng.Intn(23)))
			tree.InsertPoint(p)
			inserted = append(inserted, p)
		}
		require.Equal(t, len(inserted), tree.Size())

		for i := 0; i < 50; i++ {
			q := region(uint32(rng.Intn(45)), uint32(rng.Intn(30)), uint32(rng.Intn(20)), uint32(rng.Intn(20)))

			var expected []geometry.Point
			for _, p := range inserted {
				if q.Contains(p) {
					expected = append(expected, p)
				}
			}
			require.Equal(t, sortPoints(expected), sortPoints(tree.QueryRegion(q)), "capacity %d query %s", capacity, q)
		}
	}
}

func TestQuadtreeRemovePoint(t *testing.T) {
	tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(8, 8), 2)
	tree.InsertPoint(geometry.NewPoint(1, 1))
	tree.InsertPoint(geometry.NewPoint(1, 1))
	tree.InsertPoint(geometry.NewPoint(6, 6))
	tree.InsertPoint(geometry.NewPoint(2, 5))

	tree.RemovePoint(geometry.NewPoint(1, 1))
	require.Equal(t, 2, tree.Size())
	require.Empty(t, tree.QueryRegion(region(1, 1, 1, 1)))
	require.False(t, tree.IsLeaf())

	tree.RemovePoint(geometry.NewPoint(100, 100))
	tree.RemovePoint(geometry.NewPoint(3, 3))
	require.Equal(t, 2, tree.Size())
}

func TestQuadtreeClear(t *testing.T) {
	tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(8, 8), 1)
	tree.InsertPoint(geometry.NewPoint(1, 1))
	tree.InsertPoint(geometry.NewPoint(6, 6))
	require.False(t, tree.IsLeaf())

	tree.Clear()
	require.True(t, tree.IsLeaf())
	require.Zero(t, tree.Size())

	tree.InsertPoint(geometry.NewPoint(2, 2))
	require.Equal(t, []geometry.Point{geometry.NewPoint(2, 2)}, tree.Points())
}

func TestQuadtreeRedistributePoints(t *testing.T) {
	tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(16, 16), 2)
	for i := uint32(0); i < 16; i++ {
		tree.InsertPoint(geometry.NewPoint(i, i))
	}
	for i := uint32(0); i < 15; i++ {
		tree.RemovePoint(geometry.NewPoint(i, i))
	}
	require.False(t, tree.IsLeaf())
	require.Equal(t, 1, tree.Size())

	tree.RedistributePoints()
	require.True(t, tree.IsLeaf())
	require.Equal(t, []geometry.Point{geometry.NewPoint(15, 15)}, tree.Points())
}

func TestQuadtreeBalance(t *testing.T) {
	t.Run("leaf is left untouched", func(t *testing.T) {
		tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
		tree.InsertPoint(geometry.NewPoint(1, 1))
		tree.Balance()
		require.True(t, tree.IsLeaf())
		require.Equal(t, 1, tree.Size())
	})

	t.Run("sparse subtrees are collapsed", func(t *testing.T) {
		tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(16, 16), 2)
		for i := uint32(0); i < 16; i++ {
			tree.InsertPoint(geometry.NewPoint(i, i))
		}
		for i := uint32(2); i < 16; i++ {
			tree.RemovePoint(geometry.NewPoint(i, i))
		}

		tree.Balance()
		require.True(t, tree.IsLeaf())
		require.ElementsMatch(t, []geometry.Point{
			geometry.NewPoint(0, 0),
			geometry.NewPoint(1, 1),
		}, tree.Points())

		tree.Balance()
		require.True(t, tree.IsLeaf())
		require.Equal(t, 2, tree.Size())
	})

	t.Run("dense subtrees are kept", func(t *testing.T) {
		tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(16, 16), 2)
		for i := uint32(0); i < 16; i++ {
			tree.InsertPoint(geometry.NewPoint(i, i))
		}
		before := tree.DebugInfo()

		tree.Balance()
		require.Equal(t, before, tree.DebugInfo())
	})
}

func TestQuadtreeClone(t *testing.T) {
	tree := NewWithCapacity(geometry.NewPoint(0, 0), geometry.NewSize(8, 8), 1)
	tree.InsertPoint(geometry.NewPoint(1, 1))
	tree.InsertPoint(geometry.NewPoint(6, 6))

	clone := tree.Clone()
	clone.InsertPoint(geometry.NewPoint(2, 6))
	clone.RemovePoint(geometry.NewPoint(1, 1))

	require.Equal(t, 2, tree.Size())
	require.ElementsMatch(t, []geometry.Point{
		geometry.NewPoint(1, 1),
		geometry.NewPoint(6, 6),
	}, tree.Collect())
	require.ElementsMatch(t, []geometry.Point{
		geometry.NewPoint(6, 6),
		geometry.NewPoint(2, 6),
	}, clone.Collect())
}

func TestQuadtreeToGrid(t *testing.T) {
	tree := New(geometry.NewPoint(10, 20), geometry.NewSize(3, 2))
	tree.InsertPoint(geometry.NewPoint(10, 20))
	tree.InsertPoint(geometry.NewPoint(12, 21))
	tree.InsertPoint(geometry.NewPoint(12, 21))

	require.Equal(t, [][]uint8{
		{1, 0, 0},
		{0, 0, 1},
	}, tree.ToGrid())

	for y, row := range tree.ToGrid() {
		for x, cell := range row {
			cellRegion := region(10+uint32(x), 20+uint32(y), 1, 1)
			require.Equal(t, cell == 1, len(tree.QueryRegion(cellRegion)) != 0)
		}
	}
}

func TestQuadtreeDebugInfo(t *testing.T) {
	tree := New(geometry.NewPoint(0, 0), geometry.NewSize(4, 4))
	for x := uint32(0); x < 4; x++ {
		tree.InsertPoint(geometry.NewPoint(x, 0))
	}
	tree.InsertPoint(geometry.NewPoint(0, 1))

	var index SpatialIndex = tree
	info := index.DebugInfo()
	require.Equal(t, region(0, 0, 4, 4), info.Region)
	require.Equal(t, DefaultCapacity, info.Capacity)
	require.Equal(t, 5, info.PointCount)
	require.Equal(t, 5, info.NodeCount)
	require.Equal(t, 4, info.LeafCount)
	require.Equal(t, 1, info.MaxDepth)
}
