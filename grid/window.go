package grid

import (
	"fmt"
	"math"
)

// Window is the result of clipping a requested region against a grid.
type Window struct {
	// Header describes the clipped grid: extent and node counts of the window.
	Header Header

	// FirstCol and LastCol bound the stored columns before wrapping; for a
	// periodic grid they may exceed the stored width and Cols holds the
	// wrapped indices.
	FirstCol, LastCol int
	FirstRow, LastRow int

	// Cols maps each output column to the stored column it is read from.
	Cols []int
}

// Width returns the number of columns in the window.
func (w *Window) Width() int {
	return len(w.Cols)
}

// Height returns the number of rows in the window.
func (w *Window) Height() int {
	return w.LastRow - w.FirstRow + 1
}

// ComputeWindow intersects region r with the extent of h, snaps it onto the
// grid increments and returns the stored row/column indices to read or write.
// h is not modified.
func ComputeWindow(h Header, r Region) (Window, error) {
	if r.Full() {
		win := Window{
			Header:   h,
			FirstCol: 0,
			LastCol:  h.Nx - 1,
			FirstRow: 0,
			LastRow:  h.Ny - 1,
			Cols:     make([]int, h.Nx),
		}
		for i := range win.Cols {
			win.Cols[i] = i
		}
		return win, nil
	}

	if h.XInc <= 0 || h.YInc <= 0 {
		return Window{}, fmt.Errorf("%w: increments must be positive", ErrBadValue)
	}

	one := h.Registration.one()
	periodic := h.Periodic()

	w, e := r.W, r.E
	if h.longitudes() {
		if e < h.XMin && w+360 < h.XMax {
			w, e = w+360, e+360
		} else if w > h.XMax && e-360 > h.XMin {
			w, e = w-360, e-360
		}
	}
	if periodic {
		e = min(e, w+360)
	} else {
		w = max(w, h.XMin)
		e = min(e, h.XMax)
	}
	s := max(r.S, h.YMin)
	n := min(r.N, h.YMax)

	w = h.XMin + math.Round((w-h.XMin)/h.XInc)*h.XInc
	e = h.XMin + math.Round((e-h.XMin)/h.XInc)*h.XInc
	s = h.YMin + math.Round((s-h.YMin)/h.YInc)*h.YInc
	n = h.YMin + math.Round((n-h.YMin)/h.YInc)*h.YInc
	if e <= w || n <= s {
		return Window{}, fmt.Errorf("%w: %g/%g/%g/%g vs %g/%g/%g/%g",
			ErrRegionOutsideGrid, r.W, r.E, r.S, r.N, h.XMin, h.XMax, h.YMin, h.YMax)
	}

	width := int(math.Round((e-w)/h.XInc)) + one
	height := int(math.Round((n-s)/h.YInc)) + one

	win := Window{
		Header:   h,
		FirstCol: int(math.Round((w - h.XMin) / h.XInc)),
		FirstRow: int(math.Round((h.YMax - n) / h.YInc)),
		Cols:     make([]int, width),
	}
	win.LastCol = win.FirstCol + width - 1
	win.LastRow = win.FirstRow + height - 1
	if win.LastRow >= h.Ny || win.FirstRow < 0 {
		return Window{}, fmt.Errorf("%w: rows %d..%d of %d", ErrRegionOutsideGrid, win.FirstRow, win.LastRow, h.Ny)
	}

	if periodic {
		period := int(math.Round(360 / h.XInc))
		for i := range win.Cols {
			win.Cols[i] = ((win.FirstCol+i)%period + period) % period
		}
	} else {
		if win.LastCol >= h.Nx || win.FirstCol < 0 {
			return Window{}, fmt.Errorf("%w: columns %d..%d of %d", ErrRegionOutsideGrid, win.FirstCol, win.LastCol, h.Nx)
		}
		for i := range win.Cols {
			win.Cols[i] = win.FirstCol + i
		}
	}

	win.Header.XMin, win.Header.XMax = w, e
	win.Header.YMin, win.Header.YMax = s, n
	win.Header.Nx, win.Header.Ny = width, height
	return win, nil
}

// longitudes reports whether the x extent can be read as degrees of
// longitude, so that a request may be moved by a full revolution.
func (h *Header) longitudes() bool {
	return h.XMax-h.XMin <= 360 && h.XMin >= -360 && h.XMax <= 360
}
