package bitmap

import (
	"encoding/binary"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/geometry"
)

// DecodeHeader returns the grid size stored in the first 4 bytes of b.
func DecodeHeader(b []byte) (geometry.Size, error) {
	if len(b) < HeaderSize {
		return geometry.Size{}, errors.New("bitmap is shorter than its header").
			WithType(ErrTypeMalformedInput).
			WithTag("length", len(b))
	}

	return geometry.NewSize(
		uint32(binary.BigEndian.Uint16(b[0:2])),
		uint32(binary.BigEndian.Uint16(b[2:4])),
	), nil
}

// Decode returns the points set in b in row-major order. Any buffer holding
// a header decodes: bits past width*height are ignored and so is a trailing
// odd byte.
func Decode(b []byte) ([]geometry.Point, error) {
	size, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}

	points := []geometry.Point{}
	if size.Width == 0 || size.Height == 0 {
		return points, nil
	}

	width := uint64(size.Width)
	height := uint64(size.Height)
	data := b[HeaderSize:]

	for i := 0; i+WordSize <= len(data); i += WordSize {
		word := binary.BigEndian.Uint16(data[i : i+WordSize])
		if word == 0 {
			continue
		}

		wordIndex := uint64(i / WordSize)
		for j := 0; j < WordBits; j++ {
			if word&(1<<j) == 0 {
				continue
			}

			flat := wordIndex*WordBits + uint64(j)
			x := flat % width
			y := flat / width

			// padding bits of the last word
			if x < width && y < height {
				points = append(points, geometry.NewPoint(uint32(x), uint32(y)))
			}
		}
	}

	return points, nil
}
