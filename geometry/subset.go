package geometry

// RegionSubset holds the four quadrants of a split region.
type RegionSubset struct {
	NW Region
	NE Region
	SW Region
	SE Region
}

// Array returns the quadrants in NW, NE, SW, SE order.
func (s RegionSubset) Array() [4]Region {
	return [4]Region{s.NW, s.NE, s.SW, s.SE}
}

// Split halves r along both axes. West and north halves take the floor of
// the division and east and south halves take the remainder, so the four
// quadrants tile r exactly for odd sizes too.
//
// A 1x1 region splits into NW 0x0, NE 1x0, SW 0x1 and SE 1x1: only SE covers
// the cell.
func Split(r Region) RegionSubset {
	near := r.Size.Half()
	far := r.Size.Sub(near)

	x := r.TopLeft.X
	y := r.TopLeft.Y
	midX := x + near.Width
	midY := y + near.Height

	return RegionSubset{
		NW: Region{TopLeft: Point{x, y}, Size: Size{near.Width, near.Height}},
		NE: Region{TopLeft: Point{midX, y}, Size: Size{far.Width, near.Height}},
		SW: Region{TopLeft: Point{x, midY}, Size: Size{near.Width, far.Height}},
		SE: Region{TopLeft: Point{midX, midY}, Size: Size{far.Width, far.Height}},
	}
}
