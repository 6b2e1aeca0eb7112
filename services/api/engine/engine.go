// Package engine talks to the external numerical engine that searches
// antipodal grid cells for matching temperature and pressure.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/points"
)

var (
	// ErrUnavailable means the process invocation did not complete.
	ErrUnavailable = errors.New("engine unavailable")
	// ErrMalformedOutput means the engine answered with something that is not
	// its output contract. The whole cycle is rejected.
	ErrMalformedOutput = errors.New("malformed engine output")
)

// Textures are the rendered field images, usually data URLs.
type Textures struct {
	Temp  string `json:"temp"`
	Press string `json:"press"`
}

// Output is the engine's process result.
type Output struct {
	Matches   []points.RawRecord `json:"matches"`
	Textures  Textures           `json:"textures"`
	Timestamp string             `json:"timestamp"`
}

// Engine runs one idempotent process invocation.
type Engine interface {
	Process(ctx context.Context) (Output, error)
}

// Decode parses an engine payload. Numbers are kept as json.Number so the
// point normalizer sees the engine's values untouched.
func Decode(r io.Reader) (Output, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var out Output
	if err := dec.Decode(&out); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Output{}, fmt.Errorf("%w: trailing data after payload", ErrMalformedOutput)
	}
	for i, m := range out.Matches {
		if m == nil {
			return Output{}, fmt.Errorf("%w: match %d is null", ErrMalformedOutput, i)
		}
	}
	return out, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(b []byte) (Output, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return Output{}, fmt.Errorf("%w: empty payload", ErrMalformedOutput)
	}
	return Decode(bytes.NewReader(b))
}
