package grid

import (
	"fmt"
	"math"
)

// RowLayout describes how the stored rows of a grid file are arranged.
type RowLayout struct {
	// DataOffset is the file offset of the first stored row.
	DataOffset int64
	// RowSize is the number of bytes of one stored row, including padding.
	RowSize int64
	// BottomUp is set when the southernmost row is stored first.
	BottomUp bool
}

// RowDecoder returns the value of stored column col of a raw row.
type RowDecoder func(row []byte, col int) float32

// RowEncoder stores v as column col of a raw row.
type RowEncoder func(row []byte, col int, v float32)

func checkBuffer(width, height int, data []float32, opts IO) error {
	if need := BufferSize(width, height, opts); len(data) < need {
		return fmt.Errorf("%w: have %d values, need %d", ErrBufferTooSmall, len(data), need)
	}
	return nil
}

// ReadRows decodes the rows selected by win into data, honoring the pad and
// complex layout of opts. Elements equal to the NaN proxy of h become NaN.
// It returns the window header with the z range of the decoded values.
func ReadRows(r *Reader, h Header, win Window, layout RowLayout, decode RowDecoder, data []float32, opts IO) (Header, error) {
	width, height := win.Width(), win.Height()
	if err := checkBuffer(width, height, data, opts); err != nil {
		return Header{}, err
	}

	stride := width + opts.Pad.W + opts.Pad.E
	mult := 1
	if opts.Complex {
		mult = 2
	}
	hasProxy := h.HasNaNProxy()
	proxy := float32(h.NaNValue)

	firstStored, lastStored := win.FirstRow, win.LastRow
	if layout.BottomUp {
		firstStored, lastStored = h.Ny-1-win.LastRow, h.Ny-1-win.FirstRow
	}
	if err := r.SeekTo(layout.DataOffset + int64(firstStored)*layout.RowSize); err != nil {
		return Header{}, err
	}

	zmin, zmax := math.Inf(1), math.Inf(-1)
	row := make([]byte, layout.RowSize)
	for stored := firstStored; stored <= lastStored; stored++ {
		if err := r.ReadFull(row); err != nil {
			return Header{}, err
		}
		j := stored
		if layout.BottomUp {
			j = h.Ny - 1 - stored
		}
		base := (j-win.FirstRow+opts.Pad.N)*stride + opts.Pad.W
		for i, col := range win.Cols {
			v := decode(row, col)
			if hasProxy && v == proxy {
				v = NaN32
			}
			if !isNaN32(v) {
				zmin = min(zmin, float64(v))
				zmax = max(zmax, float64(v))
			}
			data[(base+i)*mult] = v
		}
	}

	out := win.Header
	out.ZMin, out.ZMax = zmin, zmax
	if math.IsInf(zmin, 1) {
		out.ZMin, out.ZMax = math.NaN(), math.NaN()
	}
	return out, nil
}

// ScanRange returns the z range of the nodes of win in data, which is laid
// out as the grid h with the pad and complex layout of opts.
func ScanRange(h Header, win Window, data []float32, opts IO) (zmin, zmax float64) {
	mult := 1
	if opts.Complex {
		mult = 2
	}
	zmin, zmax = math.Inf(1), math.Inf(-1)
	for j := win.FirstRow; j <= win.LastRow; j++ {
		for _, col := range win.Cols {
			v := data[Index(h.Nx, opts.Pad, col, j)*mult]
			if !isNaN32(v) {
				zmin = min(zmin, float64(v))
				zmax = max(zmax, float64(v))
			}
		}
	}
	if math.IsInf(zmin, 1) {
		return math.NaN(), math.NaN()
	}
	return zmin, zmax
}

// WriteRows encodes the nodes of win in data row by row. data is laid out as
// the grid h with the pad and complex layout of opts.
func WriteRows(w *Writer, h Header, win Window, layout RowLayout, encode RowEncoder, data []float32, opts IO) error {
	if err := checkBuffer(h.Nx, h.Ny, data, opts); err != nil {
		return err
	}
	mult := 1
	if opts.Complex {
		mult = 2
	}
	height := win.Height()
	row := make([]byte, layout.RowSize)
	for k := range height {
		jo := k
		if layout.BottomUp {
			jo = height - 1 - k
		}
		j := win.FirstRow + jo
		clear(row)
		for i, col := range win.Cols {
			encode(row, i, data[Index(h.Nx, opts.Pad, col, j)*mult])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
