package quadtree

import (
	"fmt"

	"github.com/aukilabs/quadmap/geometry"
)

// Point Region Quadtree
//
// A recursive spatial container over a bounded grid. The particularities are:
//   - a leaf stores up to capacity points. Inserting one more point splits the
//     leaf into four quadrants and pushes every stored point down. A split
//     node never stores points again.
//   - a leaf covering a single cell cannot be split any further and keeps
//     accepting points (duplicates) beyond its capacity.
//   - removing points never merges quadrants back. Balance and
//     RedistributePoints do that on request.

// DefaultCapacity is the number of points a leaf holds before it splits.
const DefaultCapacity = 4

const (
	rejectOutOfRegion = "out_of_region"
)

type Quadtree struct {
	region   geometry.Region
	capacity int
	points   []geometry.Point

	// nil for leaves, otherwise NW, NE, SW, SE.
	children []*Quadtree
}

// New creates an empty quadtree over the given region with the default
// capacity.
func New(topLeft geometry.Point, size geometry.Size) *Quadtree {
	return NewWithCapacity(topLeft, size, DefaultCapacity)
}

// NewWithCapacity creates an empty quadtree over the given region. It panics
// when capacity is lower than 1.
func NewWithCapacity(topLeft geometry.Point, size geometry.Size, capacity int) *Quadtree {
	if capacity < 1 {
		panic(fmt.Sprintf("quadtree capacity must be at least 1, got %d", capacity))
	}

	return &Quadtree{
		region:   geometry.NewRegion(topLeft, size),
		capacity: capacity,
		points:   make([]geometry.Point, 0, capacity),
	}
}

// FromRegion creates an empty quadtree over r. It panics when capacity is
// lower than 1.
func FromRegion(r geometry.Region, capacity int) *Quadtree {
	return NewWithCapacity(r.TopLeft, r.Size, capacity)
}

func (t *Quadtree) Region() geometry.Region {
	return t.region
}

func (t *Quadtree) Capacity() int {
	return t.capacity
}

func (t *Quadtree) IsLeaf() bool {
	return t.children == nil
}

// Points returns a copy of the points stored directly in this node.
func (t *Quadtree) Points() []geometry.Point {
	return append([]geometry.Point(nil), t.points...)
}

// Children returns the NW, NE, SW and SE quadrants, or nil for a leaf.
func (t *Quadtree) Children() []*Quadtree {
	if t.children == nil {
		return nil
	}
	return append([]*Quadtree(nil), t.children...)
}

// InsertPoint stores p. Points outside the tree region are ignored.
func (t *Quadtree) InsertPoint(p geometry.Point) {
	if !t.region.Contains(p) {
		instrumentRejectedInsert(rejectOutOfRegion)
		return
	}
	t.insert(p)
}

// insert expects p to be within the node region.
func (t *Quadtree) insert(p geometry.Point) {
	for {
		if t.IsLeaf() {
			if len(t.points) < t.capacity || t.region.IsUnit() {
				t.points = append(t.points, p)
				return
			}
			t.split()
		}

		child := t.childContaining(p)
		if child == nil {
			panic(fmt.Sprintf("point %s of region %s matches no quadrant", p, t.region))
		}
		t = child
	}
}

// split turns a full leaf into an interior node with four quadrants and moves
// its points into them.
func (t *Quadtree) split() {
	if len(t.points) != t.capacity {
		panic(fmt.Sprintf("can't split, not enough points (%d/%d)",
			len(t.points),
			t.capacity,
		))
	}

	quadrants := t.region.Split().Array()
	t.children = make([]*Quadtree, len(quadrants))
	for i, q := range quadrants {
		t.children[i] = NewWithCapacity(q.TopLeft, q.Size, t.capacity)
	}

	points := t.points
	t.points = nil

	for _, p := range points {
		child := t.childContaining(p)
		if child == nil {
			panic(fmt.Sprintf("point %s of region %s matches no quadrant", p, t.region))
		}
		child.insert(p)
	}

	instrumentSplit()
}

func (t *Quadtree) childContaining(p geometry.Point) *Quadtree {
	for _, c := range t.children {
		if c.region.Contains(p) {
			return c
		}
	}
	return nil
}

// QueryRegion returns the stored points contained in r. A node's own points
// come first, followed by the results of its NW, NE, SW and SE quadrants.
func (t *Quadtree) QueryRegion(r geometry.Region) []geometry.Point {
	return t.query(r, nil)
}

func (t *Quadtree) query(r geometry.Region, result []geometry.Point) []geometry.Point {
	if !t.region.Intersects(r) {
		return result
	}

	for _, p := range t.points {
		if r.Contains(p) {
			result = append(result, p)
		}
	}

	for _, c := range t.children {
		result = c.query(r, result)
	}
	return result
}

// RemovePoint removes every copy of p. Quadrants are not merged afterwards.
func (t *Quadtree) RemovePoint(p geometry.Point) {
	if !t.region.Contains(p) {
		return
	}

	for i := 0; i < len(t.points); {
		if t.points[i] == p {
			t.points = append(t.points[:i], t.points[i+1:]...)
			continue
		}
		i++
	}

	for _, c := range t.children {
		c.RemovePoint(p)
	}
}

// Clear drops every point and quadrant, leaving an empty leaf.
func (t *Quadtree) Clear() {
	t.points = make([]geometry.Point, 0, t.capacity)
	t.children = nil
}

// Size returns the number of points stored in the subtree.
func (t *Quadtree) Size() int {
	n := len(t.points)
	for _, c := range t.children {
		n += c.Size()
	}
	return n
}

// Collect returns every point stored in the subtree.
func (t *Quadtree) Collect() []geometry.Point {
	return t.collect(make([]geometry.Point, 0, t.Size()))
}

func (t *Quadtree) collect(result []geometry.Point) []geometry.Point {
	result = append(result, t.points...)
	for _, c := range t.children {
		result = c.collect(result)
	}
	return result
}

// RedistributePoints rebuilds the subtree by clearing it and inserting every
// point it held again.
func (t *Quadtree) RedistributePoints() {
	points := t.Collect()
	t.Clear()

	for _, p := range points {
		t.insert(p)
	}

	instrumentRedistribution()
}

// Balance collapses every interior node whose subtree holds no more than
// capacity points. Calling it on a leaf does nothing.
func (t *Quadtree) Balance() {
	if t.IsLeaf() {
		return
	}

	if t.Size() <= t.capacity {
		t.RedistributePoints()
		return
	}

	for _, c := range t.children {
		c.Balance()
	}
}

// Depth returns the number of levels below this node. A leaf has depth 0.
func (t *Quadtree) Depth() int {
	depth := 0
	for _, c := range t.children {
		if d := c.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Clone returns a deep copy of the subtree.
func (t *Quadtree) Clone() *Quadtree {
	clone := &Quadtree{
		region:   t.region,
		capacity: t.capacity,
		points:   append(make([]geometry.Point, 0, t.capacity), t.points...),
	}

	if t.children != nil {
		clone.children = make([]*Quadtree, len(t.children))
		for i, c := range t.children {
			clone.children[i] = c.Clone()
		}
	}
	return clone
}

// ToGrid materializes the tree into row-major cells relative to its top-left
// corner: grid[y][x] is 1 when cell (x, y) holds at least one point. It costs
// O(width*height) whatever the number of points.
func (t *Quadtree) ToGrid() [][]uint8 {
	width := t.region.Size.Width
	height := t.region.Size.Height

	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}

	for _, p := range t.Collect() {
		grid[p.Y-t.region.TopLeft.Y][p.X-t.region.TopLeft.X] = 1
	}
	return grid
}

func (t *Quadtree) DebugInfo() DebugInfo {
	info := DebugInfo{
		Region:   t.region,
		Capacity: t.capacity,
		MaxDepth: t.Depth(),
	}
	t.walk(func(n *Quadtree) {
		info.NodeCount++
		info.PointCount += len(n.points)
		if n.IsLeaf() {
			info.LeafCount++
		}
	})
	return info
}

func (t *Quadtree) walk(visit func(*Quadtree)) {
	visit(t)
	for _, c := range t.children {
		c.walk(visit)
	}
}
