package bitmap

import (
	"github.com/aukilabs/quadmap/geometry"
)

// Bitmap file format
//
//	[width u16 BE][height u16 BE][word u16 BE]...
//
// Bit j (least significant first) of word i is set when the cell at flattened
// index i*16+j holds a point, with x = index % width and y = index / width.
// The last word is zero padded when width*height is not a multiple of 16.
// There is no magic number, version or checksum.

const (
	HeaderSize = 4
	WordSize   = 2
	WordBits   = 16

	// MaxDimension is the largest width or height the header can hold.
	MaxDimension = 1<<16 - 1
)

const (
	ErrTypeMalformedInput = "malformed_input"
	ErrTypeOversizedGrid  = "oversized_grid"
)

// Grid is a row-major raster: grid[y][x] is 1 when the cell holds a point.
type Grid [][]uint8

// NewGrid rasterizes points into a grid of the given size. Points outside the
// grid are ignored.
func NewGrid(size geometry.Size, points []geometry.Point) Grid {
	grid := make(Grid, size.Height)
	for y := range grid {
		grid[y] = make([]uint8, size.Width)
	}

	for _, p := range points {
		if p.X < size.Width && p.Y < size.Height {
			grid[p.Y][p.X] = 1
		}
	}
	return grid
}

// Cell returns the value at (x, y), or 0 when the grid does not cover it.
func (g Grid) Cell(x, y int) uint8 {
	if y < 0 || y >= len(g) || x < 0 || x >= len(g[y]) {
		return 0
	}
	return g[y][x]
}

// Points returns the set cells in row-major order.
func (g Grid) Points() []geometry.Point {
	var points []geometry.Point
	for y, row := range g {
		for x, v := range row {
			if v == 1 {
				points = append(points, geometry.NewPoint(uint32(x), uint32(y)))
			}
		}
	}
	return points
}

// Rasterizer is implemented by containers that can materialize their content
// as a grid covering their region.
type Rasterizer interface {
	Region() geometry.Region
	ToGrid() [][]uint8
}

// EncodedLen returns the number of bytes Encode produces for a grid of the
// given size.
func EncodedLen(size geometry.Size) int {
	cells := size.Area()
	words := (cells + WordBits - 1) / WordBits
	return HeaderSize + int(words)*WordSize
}
