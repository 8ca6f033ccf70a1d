// Package grid provides the common grid header model, sub-region arithmetic,
// element encodings and the codec interface shared by all grid formats.
package grid

import (
	"fmt"
	"math"
)

// Registration tells where grid nodes sit relative to cells.
type Registration int

const (
	// Gridline registered nodes sit on cell corners.
	Gridline Registration = 0
	// Pixel registered nodes sit at cell centers.
	Pixel Registration = 1
)

func (r Registration) String() string {
	if r == Pixel {
		return "pixel"
	}
	return "gridline"
}

// one returns 1 for gridline registration and 0 for pixel registration.
func (r Registration) one() int {
	if r == Pixel {
		return 0
	}
	return 1
}

// half returns the node offset from the cell corner in units of the increment.
func (r Registration) half() float64 {
	if r == Pixel {
		return 0.5
	}
	return 0
}

// FormatID selects the codec owning a grid file.
type FormatID int

const (
	FormatAuto         FormatID = 0
	FormatNativeFloat  FormatID = 1 // bf
	FormatNativeShort  FormatID = 2 // bs
	FormatSunRaster    FormatID = 3 // rb
	FormatNativeByte   FormatID = 4 // bb
	FormatBitMask      FormatID = 5 // bm
	FormatSurfer6      FormatID = 6 // sf
	FormatSurfer7      FormatID = 7 // sd
	FormatNativeInt    FormatID = 8 // bi
	FormatNativeDouble FormatID = 9 // bd

	FormatCount = 10
)

// Header describes the geometry and value range of a grid.
type Header struct {
	Name   string
	Format FormatID

	Nx, Ny       int
	XMin, XMax   float64
	YMin, YMax   float64
	XInc, YInc   float64
	Registration Registration

	ZMin, ZMax   float64
	ZScaleFactor float64
	ZAddOffset   float64

	// NaNValue is the proxy stored in place of missing data by encodings
	// which cannot hold IEEE NaN. NaN means no proxy.
	NaNValue float64

	XUnits  string
	YUnits  string
	ZUnits  string
	Title   string
	Command string
	Remark  string
}

// NewHeader creates a header for the given extent and increments. The east and
// north bounds are snapped so the extent spans a whole number of increments.
func NewHeader(w, e, s, n, xInc, yInc float64, reg Registration) (Header, error) {
	if xInc <= 0 || yInc <= 0 {
		return Header{}, fmt.Errorf("%w: increments must be positive (%g, %g)", ErrBadValue, xInc, yInc)
	}
	if e <= w || n <= s {
		return Header{}, fmt.Errorf("%w: empty extent %g/%g/%g/%g", ErrBadValue, w, e, s, n)
	}
	one := reg.one()
	h := Header{
		XMin:         w,
		YMin:         s,
		XInc:         xInc,
		YInc:         yInc,
		Registration: reg,
		ZScaleFactor: 1,
		NaNValue:     math.NaN(),
	}
	h.Nx = int(math.Round((e-w)/xInc)) + one
	h.Ny = int(math.Round((n-s)/yInc)) + one
	if h.Nx <= 0 || h.Ny <= 0 || h.Nx-one == 0 || h.Ny-one == 0 {
		return Header{}, fmt.Errorf("%w: extent smaller than one increment", ErrBadValue)
	}
	h.XMax = w + float64(h.Nx-one)*xInc
	h.YMax = s + float64(h.Ny-one)*yInc
	return h, nil
}

// Validate reports ErrBadValue when the header geometry is inconsistent.
func (h *Header) Validate() error {
	if h.XInc <= 0 || h.YInc <= 0 {
		return fmt.Errorf("%w: increments must be positive (%g, %g)", ErrBadValue, h.XInc, h.YInc)
	}
	if h.Nx <= 0 || h.Ny <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive (%d x %d)", ErrBadValue, h.Nx, h.Ny)
	}
	if h.XMax <= h.XMin || h.YMax <= h.YMin {
		return fmt.Errorf("%w: empty extent", ErrBadValue)
	}
	if h.Registration != Gridline && h.Registration != Pixel {
		return fmt.Errorf("%w: registration %d", ErrBadValue, h.Registration)
	}
	one := h.Registration.one()
	if nx := int(math.Round((h.XMax-h.XMin)/h.XInc)) + one; nx != h.Nx {
		return fmt.Errorf("%w: nx = %d but extent implies %d", ErrBadValue, h.Nx, nx)
	}
	if ny := int(math.Round((h.YMax-h.YMin)/h.YInc)) + one; ny != h.Ny {
		return fmt.Errorf("%w: ny = %d but extent implies %d", ErrBadValue, h.Ny, ny)
	}
	return nil
}

// HasNaNProxy reports whether the header carries a finite missing-data proxy.
func (h *Header) HasNaNProxy() bool {
	return !math.IsNaN(h.NaNValue)
}

// X returns the x coordinate of column i.
func (h *Header) X(i int) float64 {
	return h.XMin + (float64(i)+h.Registration.half())*h.XInc
}

// Y returns the y coordinate of row j. Row 0 is the northernmost row.
func (h *Header) Y(j int) float64 {
	return h.YMax - (float64(j)+h.Registration.half())*h.YInc
}

// Periodic reports whether the grid wraps around 360 degrees in longitude.
func (h *Header) Periodic() bool {
	return math.Abs(h.XMax-h.XMin-360) < 1e-4*h.XInc
}

// Size returns the number of logical nodes.
func (h *Header) Size() int {
	return h.Nx * h.Ny
}

// Pad is the number of extra border cells around the logical data in memory.
type Pad struct {
	W, E, S, N int
}

// UniformPad returns a pad of n cells on every side.
func UniformPad(n int) Pad {
	return Pad{n, n, n, n}
}

// Region is a requested west/east/south/north sub-region.
// The zero value (and any region with W == E and S == N) selects the full grid.
type Region struct {
	W, E, S, N float64
}

// Full reports whether r selects the full grid extent.
func (r Region) Full() bool {
	return r.W == r.E && r.S == r.N
}

// RegionOf returns the region covering the full extent of h.
func RegionOf(h Header) Region {
	return Region{h.XMin, h.XMax, h.YMin, h.YMax}
}

// IO groups the options of a grid read or write.
type IO struct {
	Region  Region
	Pad     Pad
	Complex bool
}

// BufferSize returns the number of float32 values needed to hold a grid of
// nx by ny nodes with the given options.
func BufferSize(nx, ny int, opts IO) int {
	size := (nx + opts.Pad.W + opts.Pad.E) * (ny + opts.Pad.S + opts.Pad.N)
	if opts.Complex {
		size *= 2
	}
	return size
}

// Index returns the buffer offset of logical node (i, j) of an nx wide grid.
func Index(nx int, pad Pad, i, j int) int {
	return (j+pad.N)*(nx+pad.W+pad.E) + pad.W + i
}
