package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionContains(t *testing.T) {
	r := NewRegion(NewPoint(2, 3), NewSize(4, 2))

	require.True(t, r.Contains(NewPoint(2, 3)))
	require.True(t, r.Contains(NewPoint(5, 4)))
	require.False(t, r.Contains(NewPoint(6, 4)))
	require.False(t, r.Contains(NewPoint(5, 5)))
	require.False(t, r.Contains(NewPoint(1, 3)))
	require.False(t, r.Contains(NewPoint(2, 2)))

	empty := NewRegion(NewPoint(2, 3), NewSize(0, 2))
	require.False(t, empty.Contains(NewPoint(2, 3)))
}

func TestRegionContainsAtMaxCoordinates(t *testing.T) {
	r := NewRegion(NewPoint(^uint32(0)-1, 0), NewSize(2, 1))
	require.True(t, r.Contains(NewPoint(^uint32(0), 0)))
	require.Equal(t, NewPoint(^uint32(0), 0), r.BottomRight())
}

func TestIntersects(t *testing.T) {
	a := NewRegion(NewPoint(0, 0), NewSize(4, 4))

	tests := []struct {
		name     string
		b        Region
		expected bool
	}{
		{"same", a, true},
		{"overlapping corner", NewRegion(NewPoint(3, 3), NewSize(4, 4)), true},
		{"inside", NewRegion(NewPoint(1, 1), NewSize(1, 1)), true},
		{"containing", NewRegion(NewPoint(0, 0), NewSize(10, 10)), true},
		{"crossing", NewRegion(NewPoint(1, 0), NewSize(1, 10)), true},
		{"adjacent right", NewRegion(NewPoint(4, 0), NewSize(4, 4)), false},
		{"adjacent below", NewRegion(NewPoint(0, 4), NewSize(4, 4)), false},
		{"far away", NewRegion(NewPoint(10, 10), NewSize(1, 1)), false},
		{"empty inside", NewRegion(NewPoint(1, 1), NewSize(0, 0)), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Intersects(a, test.b))
			require.Equal(t, test.expected, Intersects(test.b, a))
		})
	}
}

func TestIsSubset(t *testing.T) {
	a := NewRegion(NewPoint(0, 0), NewSize(4, 4))

	require.True(t, IsSubset(a, a))
	require.True(t, IsSubset(a, NewRegion(NewPoint(1, 1), NewSize(3, 3))))
	require.True(t, IsSubset(a, NewRegion(NewPoint(3, 3), NewSize(1, 1))))
	require.False(t, IsSubset(a, NewRegion(NewPoint(3, 3), NewSize(2, 1))))
	require.False(t, IsSubset(NewRegion(NewPoint(1, 1), NewSize(1, 1)), a))
	require.True(t, IsSubset(a, NewRegion(NewPoint(2, 2), NewSize(0, 0))))
	require.False(t, IsSubset(a, NewRegion(NewPoint(4, 4), NewSize(0, 0))))
}

func TestSizeHalfAndSub(t *testing.T) {
	s := NewSize(5, 3)
	require.Equal(t, NewSize(2, 1), s.Half())
	require.Equal(t, NewSize(3, 2), s.Sub(s.Half()))
	require.Equal(t, uint64(15), s.Area())
	require.False(t, s.IsEmpty())
	require.True(t, NewSize(0, 3).IsEmpty())
}

func TestSplit(t *testing.T) {
	t.Run("even region", func(t *testing.T) {
		s := Split(NewRegion(NewPoint(0, 0), NewSize(4, 4)))
		require.Equal(t, NewRegion(NewPoint(0, 0), NewSize(2, 2)), s.NW)
		require.Equal(t, NewRegion(NewPoint(2, 0), NewSize(2, 2)), s.NE)
		require.Equal(t, NewRegion(NewPoint(0, 2), NewSize(2, 2)), s.SW)
		require.Equal(t, NewRegion(NewPoint(2, 2), NewSize(2, 2)), s.SE)
	})

	t.Run("odd region", func(t *testing.T) {
		s := Split(NewRegion(NewPoint(1, 1), NewSize(5, 3)))
		require.Equal(t, NewRegion(NewPoint(1, 1), NewSize(2, 1)), s.NW)
		require.Equal(t, NewRegion(NewPoint(3, 1), NewSize(3, 1)), s.NE)
		require.Equal(t, NewRegion(NewPoint(1, 2), NewSize(2, 2)), s.SW)
		require.Equal(t, NewRegion(NewPoint(3, 2), NewSize(3, 2)), s.SE)
	})

	t.Run("unit region", func(t *testing.T) {
		s := Split(NewRegion(NewPoint(7, 7), NewSize(1, 1)))
		require.Equal(t, NewSize(0, 0), s.NW.Size)
		require.Equal(t, NewSize(1, 0), s.NE.Size)
		require.Equal(t, NewSize(0, 1), s.SW.Size)
		require.Equal(t, NewRegion(NewPoint(7, 7), NewSize(1, 1)), s.SE)
	})
}

func TestSplitTilesRegion(t *testing.T) {
	for w := uint32(1); w <= 9; w++ {
		for h := uint32(1); h <= 9; h++ {
			r := NewRegion(NewPoint(3, 5), NewSize(w, h))
			quadrants := Split(r).Array()

			var area uint64
			for _, q := range quadrants {
				area += q.Size.Area()
			}
			require.Equal(t, r.Size.Area(), area, "region %s", r)

			for x := r.TopLeft.X; x < r.TopLeft.X+w; x++ {
				for y := r.TopLeft.Y; y < r.TopLeft.Y+h; y++ {
					matches := 0
					for _, q := range quadrants {
						if q.Contains(NewPoint(x, y)) {
							matches++
						}
					}
					require.Equal(t, 1, matches, "cell (%d,%d) of %s", x, y, r)
				}
			}

			for i := range quadrants {
				require.True(t, IsSubset(r, quadrants[i]) || quadrants[i].IsEmpty())
				for j := i + 1; j < len(quadrants); j++ {
					require.False(t, Intersects(quadrants[i], quadrants[j]))
				}
			}
		}
	}
}
