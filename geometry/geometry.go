package geometry

import "fmt"

// Point is a location in grid-cell coordinates.
type Point struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

func NewPoint(x, y uint32) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width and height in grid-cell units.
type Size struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func NewSize(width, height uint32) Size {
	return Size{Width: width, Height: height}
}

// Half returns the size with both dimensions floor-divided by two.
func (s Size) Half() Size {
	return Size{Width: s.Width / 2, Height: s.Height / 2}
}

// Sub returns s minus o, per dimension. The caller guarantees o <= s.
func (s Size) Sub(o Size) Size {
	return Size{Width: s.Width - o.Width, Height: s.Height - o.Height}
}

// Area returns the number of cells covered by the size.
func (s Size) Area() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}

func (s Size) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Region is an axis-aligned rectangle of grid cells. It is half-open: it
// covers the cells [X, X+Width) x [Y, Y+Height).
type Region struct {
	TopLeft Point `json:"top_left"`
	Size    Size  `json:"size"`
}

func NewRegion(topLeft Point, size Size) Region {
	return Region{TopLeft: topLeft, Size: size}
}

func (r Region) String() string {
	return fmt.Sprintf("%s+%s", r.TopLeft, r.Size)
}

// maxX and maxY are exclusive bounds, widened to avoid uint32 overflow.
func (r Region) maxX() uint64 {
	return uint64(r.TopLeft.X) + uint64(r.Size.Width)
}

func (r Region) maxY() uint64 {
	return uint64(r.TopLeft.Y) + uint64(r.Size.Height)
}

// BottomRight returns the last cell covered by a non-empty region.
func (r Region) BottomRight() Point {
	return Point{
		X: uint32(r.maxX() - 1),
		Y: uint32(r.maxY() - 1),
	}
}

func (r Region) IsEmpty() bool {
	return r.Size.IsEmpty()
}

// IsUnit reports whether the region covers at most one cell.
func (r Region) IsUnit() bool {
	return r.Size.Width <= 1 && r.Size.Height <= 1
}

func (r Region) Contains(p Point) bool {
	return Contains(r, p)
}

func (r Region) Intersects(o Region) bool {
	return Intersects(r, o)
}

func (r Region) IsSubset(o Region) bool {
	return IsSubset(r, o)
}

func (r Region) Split() RegionSubset {
	return Split(r)
}

// Contains reports whether p lies within the half-open bounds of r.
func Contains(r Region, p Point) bool {
	return p.X >= r.TopLeft.X &&
		p.Y >= r.TopLeft.Y &&
		uint64(p.X) < r.maxX() &&
		uint64(p.Y) < r.maxY()
}

// Intersects reports whether a and b share at least one cell.
func Intersects(a, b Region) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}

	if b.maxX() <= uint64(a.TopLeft.X) || a.maxX() <= uint64(b.TopLeft.X) {
		return false
	}
	if a.maxY() <= uint64(b.TopLeft.Y) || b.maxY() <= uint64(a.TopLeft.Y) {
		return false
	}

	// overlap on both axes
	return true
}

// IsSubset reports whether b lies entirely within a.
func IsSubset(a, b Region) bool {
	if a == b {
		return true
	}
	if b.IsEmpty() {
		return a.Contains(b.TopLeft)
	}
	return a.Contains(b.TopLeft) && a.Contains(b.BottomRight())
}
