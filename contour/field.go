// Package contour traces zero-level contour lines through gridded data.
//
// A Field is walked cell by cell starting from sign changes found first on
// the four grid boundaries and then in the interior. Every grid edge crossed
// by a line is marked in an EdgeSet so that each edge is used at most once
// per level.
package contour

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/eak1mov/go-libgrid/grid"
)

// Point is a vertex of a contour line in grid coordinates.
type Point struct {
	X, Y float64
}

// Line is one traced contour. A closed line ends with its first point.
type Line struct {
	Level  float64
	Points []Point
	Closed bool
}

type options struct {
	smooth   int
	scheme   Scheme
	periodic bool
	maxSteps int
	logger   *slog.Logger
}

type Option func(*options)

// WithSmoothing sets the resampling factor applied to traced lines.
// Factors of 0 and 1 keep the crossing points as traced.
func WithSmoothing(sfactor int) Option {
	return func(o *options) { o.smooth = sfactor }
}

func WithScheme(scheme Scheme) Option {
	return func(o *options) { o.scheme = scheme }
}

// WithPeriodic treats the values as angles in degrees, removing 360 degree
// jumps between the corners of a cell before testing for crossings.
func WithPeriodic(periodic bool) Option {
	return func(o *options) { o.periodic = periodic }
}

// WithMaxSteps sets the number of cells a single trace may visit before it is
// abandoned. Zero selects a limit derived from the grid size.
func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Field is a read-only view of gridded values in which the zero contour is
// traced.
type Field struct {
	data   []float32
	header grid.Header
	pad    grid.Pad
	stride int
	level  float64
	opts   options

	// edges is shared by every level traced from this field.
	edges *EdgeSet
}

// NewField creates a Field over data, laid out as the grid h with the given
// pad. The data is not copied.
func NewField(data []float32, h grid.Header, pad grid.Pad, opts ...Option) (*Field, error) {
	if h.Nx < 1 || h.Ny < 1 {
		return nil, fmt.Errorf("%w: grid of %d x %d nodes", grid.ErrBadValue, h.Nx, h.Ny)
	}
	if need := grid.BufferSize(h.Nx, h.Ny, grid.IO{Pad: pad}); len(data) < need {
		return nil, fmt.Errorf("%w: have %d values, need %d", grid.ErrBufferTooSmall, len(data), need)
	}
	f := &Field{
		data:   data,
		header: h,
		pad:    pad,
		stride: h.Nx + pad.W + pad.E,
		edges:  NewEdgeSet(h.Nx, h.Ny),
		opts: options{
			logger: slog.New(slog.DiscardHandler),
		},
	}
	for _, opt := range opts {
		opt(&f.opts)
	}
	if f.opts.maxSteps <= 0 {
		f.opts.maxSteps = 2*h.Nx*h.Ny + 4
	}
	if f.opts.logger == nil {
		f.opts.logger = slog.New(slog.DiscardHandler)
	}
	return f, nil
}

func (f *Field) Header() grid.Header {
	return f.header
}

// z returns the value of node (i, j); row 0 is the northernmost row.
func (f *Field) z(i, j int) float32 {
	return f.data[(j+f.pad.N)*f.stride+f.pad.W+i]
}

func (f *Field) point(i, j int) Point {
	return Point{f.header.X(i), f.header.Y(j)}
}

// Shift returns a new unpadded Field holding the values of f minus level.
// Nodes falling exactly on the level are nudged upwards by a small fraction
// of the data range, since the tracer needs a strict sign change on every
// crossed edge.
func (f *Field) Shift(level float64) *Field {
	nx, ny := f.header.Nx, f.header.Ny
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for j := range ny {
		for i := range nx {
			if v := float64(f.z(i, j)); !math.IsNaN(v) {
				zmin, zmax = min(zmin, v), max(zmax, v)
			}
		}
	}
	small := float32(1e-7)
	if zmax > zmin {
		small = float32((zmax - zmin) * 1e-6)
	}

	data := make([]float32, nx*ny)
	for j := range ny {
		for i := range nx {
			v := f.z(i, j) - float32(level)
			if v == 0 {
				v = small
			}
			data[j*nx+i] = v
		}
	}
	return &Field{
		data:   data,
		header: f.header,
		stride: nx,
		level:  f.level + level,
		opts:   f.opts,
		edges:  f.edges,
	}
}

// setJump removes 360 degree jumps among z so that all values lie within 180
// degrees of z[0]. NaN values are left alone.
func setJump(z []float32) {
	jump := false
	for _, v := range z[1:] {
		if math.Abs(float64(v-z[0])) > 180 {
			jump = true
			break
		}
	}
	if !jump {
		return
	}
	z0 := math.Mod(float64(z[0]), 360)
	if z0 > 180 {
		z0 -= 360
	} else if z0 < -180 {
		z0 += 360
	}
	z[0] = float32(z0)
	for k := 1; k < len(z); k++ {
		v := math.Mod(float64(z[k]), 360)
		if d := v - z0; math.Abs(d) > 180 {
			v -= math.Copysign(360, d)
		}
		z[k] = float32(v)
	}
}
