package codec

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/quadmap/bitmap"
	"github.com/aukilabs/quadmap/geometry"
)

// ByteReader reads the whole content stored at a path.
type ByteReader interface {
	ReadBytes(path string) ([]byte, error)
}

// ByteWriter replaces the content stored at a path.
type ByteWriter interface {
	WriteBytes(path string, b []byte) error
}

// Encoder turns grids into bitmap bytes, compressed with Compressor.
type Encoder struct {
	Compressor Compressor
}

func (e Encoder) Encode(grid bitmap.Grid, size geometry.Size) ([]byte, error) {
	var b []byte

	err := measure(operationEncode, e.Compressor, func() error {
		encoded, err := bitmap.Encode(grid, size)
		if err != nil {
			return err
		}

		b, err = e.Compressor.Compress(encoded)
		return err
	})
	if err != nil {
		return nil, err
	}

	instrumentEncodedBytes(e.Compressor, len(b))
	return b, nil
}

// EncodeRaster materializes r and encodes it with the size of its region.
func (e Encoder) EncodeRaster(r bitmap.Rasterizer) ([]byte, error) {
	return e.Encode(r.ToGrid(), r.Region().Size)
}

// EncodeToFile encodes r and writes the result to path.
func (e Encoder) EncodeToFile(w ByteWriter, path string, r bitmap.Rasterizer) error {
	b, err := e.EncodeRaster(r)
	if err != nil {
		return errors.New("encoding failed").
			WithTag("file_name", path).
			Wrap(err)
	}

	if err := w.WriteBytes(path, b); err != nil {
		return err
	}

	logs.WithTag("file_name", path).
		WithTag("compressor", e.Compressor.String()).
		WithTag("bytes", len(b)).
		Debug("encoded file written")
	return nil
}

// Decoder turns bytes produced by an Encoder with the same Compressor back
// into points.
type Decoder struct {
	Compressor Compressor
}

func (d Decoder) Decode(b []byte) ([]geometry.Point, error) {
	var points []geometry.Point

	err := measure(operationDecode, d.Compressor, func() error {
		decompressed, err := d.Compressor.Decompress(b)
		if err != nil {
			return err
		}

		points, err = bitmap.Decode(decompressed)
		return err
	})
	if err != nil {
		return nil, err
	}

	instrumentDecodedPoints(d.Compressor, len(points))
	return points, nil
}

// DecodeFile reads path and decodes its content. Read failures are returned
// as is.
func (d Decoder) DecodeFile(r ByteReader, path string) ([]geometry.Point, error) {
	b, err := r.ReadBytes(path)
	if err != nil {
		return nil, err
	}

	points, err := d.Decode(b)
	if err != nil {
		return nil, errors.New("decoding file failed").
			WithTag("file_name", path).
			Wrap(err)
	}

	logs.WithTag("file_name", path).
		WithTag("compressor", d.Compressor.String()).
		WithTag("points", len(points)).
		Debug("encoded file read")
	return points, nil
}

// CachedDecoder decodes a fixed input once and serves the result afterwards.
// Failed decodes are not cached.
type CachedDecoder struct {
	decoder Decoder
	input   []byte

	mutex  sync.Mutex
	cached []geometry.Point
	ok     bool
}

func NewCachedDecoder(d Decoder, input []byte) *CachedDecoder {
	return &CachedDecoder{
		decoder: d,
		input:   input,
	}
}

func (c *CachedDecoder) Decode() ([]geometry.Point, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.ok {
		points, err := c.decoder.Decode(c.input)
		if err != nil {
			return nil, err
		}
		c.cached = points
		c.ok = true
	}

	return append([]geometry.Point(nil), c.cached...), nil
}
