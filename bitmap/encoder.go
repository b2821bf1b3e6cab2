package bitmap

import (
	"encoding/binary"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/geometry"
)

// Encode packs the width*height cells of grid into the bitmap format. Cells
// missing from grid are encoded as empty.
func Encode(grid Grid, size geometry.Size) ([]byte, error) {
	if size.Width > MaxDimension || size.Height > MaxDimension {
		return nil, errors.New("grid is too large to be encoded").
			WithType(ErrTypeOversizedGrid).
			WithTag("width", size.Width).
			WithTag("height", size.Height)
	}

	b := make([]byte, HeaderSize, EncodedLen(size))
	binary.BigEndian.PutUint16(b[0:2], uint16(size.Width))
	binary.BigEndian.PutUint16(b[2:4], uint16(size.Height))

	var accumulator uint16
	bitPosition := 0

	for y := 0; y < int(size.Height); y++ {
		for x := 0; x < int(size.Width); x++ {
			if grid.Cell(x, y) == 1 {
				accumulator |= 1 << bitPosition
			}

			bitPosition++
			if bitPosition == WordBits {
				b = binary.BigEndian.AppendUint16(b, accumulator)
				accumulator = 0
				bitPosition = 0
			}
		}
	}

	// remaining bits when the cell count is not a multiple of 16
	if bitPosition != 0 {
		b = binary.BigEndian.AppendUint16(b, accumulator)
	}

	return b, nil
}

// EncodeRaster materializes r and encodes it with the size of its region.
func EncodeRaster(r Rasterizer) ([]byte, error) {
	return Encode(r.ToGrid(), r.Region().Size)
}
