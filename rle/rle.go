// Package rle implements a byte-level run-length transform. A run is stored
// as a (value, count) byte pair, so a run never exceeds 255 bytes.
package rle

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// MaxRunLength is the longest run a single pair can hold.
const MaxRunLength = 255

const (
	ErrTypeMalformedInput = "malformed_input"
)

type Run struct {
	Value byte
	Count byte
}

func (r Run) Bytes() []byte {
	return []byte{r.Value, r.Count}
}

// Runs splits b into runs of identical bytes, capping each at MaxRunLength.
func Runs(b []byte) []Run {
	if len(b) == 0 {
		return nil
	}

	var runs []Run
	current := Run{Value: b[0], Count: 1}

	for _, v := range b[1:] {
		if v == current.Value && current.Count < MaxRunLength {
			current.Count++
			continue
		}

		runs = append(runs, current)
		current = Run{Value: v, Count: 1}
	}

	return append(runs, current)
}

// Encode compresses b into interleaved value and count bytes.
func Encode(b []byte) []byte {
	runs := Runs(b)

	encoded := make([]byte, 0, len(runs)*2)
	for _, r := range runs {
		encoded = append(encoded, r.Value, r.Count)
	}
	return encoded
}

// Decode expands the output of Encode back into the original bytes.
func Decode(b []byte) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, errors.New("run-length data has an odd length").
			WithType(ErrTypeMalformedInput).
			WithTag("length", len(b))
	}

	size := 0
	for i := 1; i < len(b); i += 2 {
		if b[i] == 0 {
			return nil, errors.New("run-length data holds an empty run").
				WithType(ErrTypeMalformedInput).
				WithTag("offset", i-1)
		}
		size += int(b[i])
	}

	decoded := make([]byte, 0, size)
	for i := 0; i < len(b); i += 2 {
		for n := 0; n < int(b[i+1]); n++ {
			decoded = append(decoded, b[i])
		}
	}
	return decoded, nil
}
