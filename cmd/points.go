package main

import (
	"math/rand"
	"slices"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/bitmap"
	"github.com/aukilabs/quadmap/codec"
	"github.com/aukilabs/quadmap/files"
	"github.com/aukilabs/quadmap/geometry"
	"github.com/aukilabs/quadmap/models"
)

// randomPoints returns n points uniformly spread over a grid of the given
// size.
func randomPoints(r *rand.Rand, n int, size geometry.Size) []geometry.Point {
	if size.IsEmpty() {
		return nil
	}

	points := make([]geometry.Point, n)
	for i := range points {
		points[i] = geometry.NewPoint(
			uint32(r.Int63n(int64(size.Width))),
			uint32(r.Int63n(int64(size.Height))),
		)
	}
	return points
}

// verifyRoundTrip checks that decoded holds exactly the occupied cells of m.
func verifyRoundTrip(m *models.PointMap, decoded []geometry.Point) error {
	region := m.Region()

	expected := make([]geometry.Point, 0, m.Len())
	for _, p := range m.Query(region) {
		expected = append(expected, geometry.NewPoint(
			p.X-region.TopLeft.X,
			p.Y-region.TopLeft.Y,
		))
	}
	expected = bitmap.NewGrid(region.Size, expected).Points()

	if !slices.Equal(expected, decoded) {
		return errors.New("decoded points differ from the point map").
			WithTag("expected", len(expected)).
			WithTag("decoded", len(decoded))
	}
	return nil
}

// storePointMap encodes a snapshot of m to path and loads the file back into
// a cached decoder.
func storePointMap(m *models.PointMap, path string, c codec.Compressor) (*codec.CachedDecoder, error) {
	var store files.Store
	if err := (codec.Encoder{Compressor: c}).EncodeToFile(store, path, m.Snapshot()); err != nil {
		return nil, errors.New("writing point map failed").Wrap(err)
	}

	input, err := files.NewEncodedFile(path).Bytes()
	if err != nil {
		return nil, errors.New("reading point map failed").Wrap(err)
	}
	return codec.NewCachedDecoder(codec.Decoder{Compressor: c}, input), nil
}

// verifyStoredPointMap checks the cached decode against m, then decodes path
// again to make sure the file still holds the same points.
func verifyStoredPointMap(m *models.PointMap, path string, c codec.Compressor, cached *codec.CachedDecoder) error {
	decoded, err := cached.Decode()
	if err != nil {
		return err
	}

	if err := verifyRoundTrip(m, decoded); err != nil {
		return err
	}

	onDisk, err := codec.Decoder{Compressor: c}.DecodeFile(files.Store{}, path)
	if err != nil {
		return err
	}

	if !slices.Equal(decoded, onDisk) {
		return errors.New("point map file changed after it was written").
			WithTag("file_name", path).
			WithTag("decoded", len(decoded)).
			WithTag("on_disk", len(onDisk))
	}
	return nil
}
