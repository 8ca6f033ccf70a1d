package contour

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/eak1mov/go-libgrid/grid"
)

// Writer defines an interface for storing traced contour lines.
type Writer interface {
	// WriteLine writes a single line.
	WriteLine(line Line) error

	// Finalize completes the writing process: flushes buffers and builds indices.
	// It must be called before closing the Writer.
	Finalize() error
}

type Visitor interface {
	// VisitLines visits all stored lines, calling the visitor for each.
	// Lines of one level are visited in the order they were written.
	VisitLines(visitor func(Line) error) error
}

var errVisitCancelled = errors.New("visit cancelled")

// IterLines returns an iterator over all lines stored behind r.
// Iteration panics on unrecoverable errors.
func IterLines(r Visitor) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		err := r.VisitLines(func(line Line) error {
			if !yield(line) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// Lines returns an iterator over the contour lines of f at level. Each call
// to the iterator function performs a new trace, clearing the edge set of f
// first, so iterations over one Field must not overlap.
func (f *Field) Lines(level float64) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		shifted := f.Shift(level)
		edges := f.edges
		edges.Reset()
		var cur Cursor
		for {
			line, next, ok := shifted.Next(edges, cur)
			if !ok {
				return
			}
			cur = next
			if !yield(line) {
				return
			}
		}
	}
}

// Trace returns all contour lines at level of the grid h stored in data with
// the given pad.
func Trace(data []float32, h grid.Header, pad grid.Pad, level float64, opts ...Option) ([]Line, error) {
	f, err := NewField(data, h, pad, opts...)
	if err != nil {
		return nil, err
	}
	var lines []Line
	for line := range f.Lines(level) {
		lines = append(lines, line)
	}
	f.opts.logger.Debug("libgrid: contours traced", "level", level, "lines", len(lines))
	return lines, nil
}

// Levels returns the multiples of interval within [zmin, zmax].
func Levels(zmin, zmax, interval float64) ([]float64, error) {
	if !(interval > 0) || math.IsInf(interval, 0) {
		return nil, fmt.Errorf("%w: contour interval %v", grid.ErrBadValue, interval)
	}
	if math.IsNaN(zmin) || math.IsNaN(zmax) || zmin > zmax {
		return nil, fmt.Errorf("%w: contour range [%v, %v]", grid.ErrBadValue, zmin, zmax)
	}
	lo := math.Ceil(zmin/interval) * interval
	hi := math.Floor(zmax/interval) * interval
	if lo > hi {
		return nil, nil
	}
	n := int(math.Round((hi-lo)/interval)) + 1
	if n == 1 {
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}
