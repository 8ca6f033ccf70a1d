// Package internal holds synthetic grids shared by the package tests.
package internal

import (
	"math"

	"github.com/eak1mov/go-libgrid/grid"
)

// Grid is an in-memory grid without padding.
type Grid struct {
	Header grid.Header
	Data   []float32
}

// NewGrid samples fn at every node of an nx by ny gridline registered grid
// with unit increments and its south-west node at (x0, y0).
func NewGrid(nx, ny int, x0, y0 float64, fn func(x, y float64) float32) Grid {
	h, err := grid.NewHeader(x0, x0+float64(nx-1), y0, y0+float64(ny-1), 1, 1, grid.Gridline)
	if err != nil {
		panic(err)
	}
	data := make([]float32, nx*ny)
	for j := range ny {
		for i := range nx {
			data[j*nx+i] = fn(h.X(i), h.Y(j))
		}
	}
	return Grid{Header: h, Data: data}
}

// Ramp returns a grid whose values increase by one per column and by ten per
// row towards the north.
func Ramp(nx, ny int) Grid {
	return NewGrid(nx, ny, 0, 0, func(x, y float64) float32 {
		return float32(x + 10*y)
	})
}

// Bump returns a grid holding a circular positive region of the given radius
// centred in the grid, surrounded by negative values.
func Bump(nx, ny int, radius float64) Grid {
	cx, cy := float64(nx-1)/2, float64(ny-1)/2
	return NewGrid(nx, ny, 0, 0, func(x, y float64) float32 {
		return float32(radius - math.Hypot(x-cx, y-cy))
	})
}

// Holes returns Ramp with every seventh node set to NaN.
func Holes(nx, ny int) Grid {
	g := Ramp(nx, ny)
	for k := 0; k < len(g.Data); k += 7 {
		g.Data[k] = float32(math.NaN())
	}
	return g
}

// Padded copies data of an nx by ny grid into a new buffer with the given
// pad. Pad cells are set to fill.
func Padded(data []float32, nx, ny int, pad grid.Pad, fill float32) []float32 {
	out := make([]float32, grid.BufferSize(nx, ny, grid.IO{Pad: pad}))
	for k := range out {
		out[k] = fill
	}
	for j := range ny {
		for i := range nx {
			out[grid.Index(nx, pad, i, j)] = data[j*nx+i]
		}
	}
	return out
}

// Logical extracts the nodes of an nx by ny grid from a padded buffer.
func Logical(data []float32, nx, ny int, pad grid.Pad) []float32 {
	out := make([]float32, nx*ny)
	for j := range ny {
		for i := range nx {
			out[j*nx+i] = data[grid.Index(nx, pad, i, j)]
		}
	}
	return out
}
