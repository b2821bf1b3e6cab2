package codec

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/rle"
)

// Compressor selects the optional byte-level stage applied after bitmap
// encoding. The encoded stream does not record it, so both ends must agree.
type Compressor string

const (
	CompressorNone Compressor = "none"
	CompressorRLE  Compressor = "rle"
)

const (
	ErrTypeUnknownCompressor = "unknown_compressor"
)

// ParseCompressor returns the compressor named s. An empty name selects no
// compression.
func ParseCompressor(s string) (Compressor, error) {
	switch c := Compressor(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CompressorNone:
		return CompressorNone, nil

	case CompressorRLE:
		return c, nil

	default:
		return "", errors.New("unknown compressor").
			WithType(ErrTypeUnknownCompressor).
			WithTag("compressor", s)
	}
}

func (c Compressor) String() string {
	if c == "" {
		return string(CompressorNone)
	}
	return string(c)
}

func (c Compressor) Compress(b []byte) ([]byte, error) {
	switch c {
	case "", CompressorNone:
		return b, nil

	case CompressorRLE:
		return rle.Encode(b), nil

	default:
		return nil, errors.New("unknown compressor").
			WithType(ErrTypeUnknownCompressor).
			WithTag("compressor", string(c))
	}
}

func (c Compressor) Decompress(b []byte) ([]byte, error) {
	switch c {
	case "", CompressorNone:
		return b, nil

	case CompressorRLE:
		return rle.Decode(b)

	default:
		return nil, errors.New("unknown compressor").
			WithType(ErrTypeUnknownCompressor).
			WithTag("compressor", string(c))
	}
}
