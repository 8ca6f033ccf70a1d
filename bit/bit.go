// Package bit implements the bit-mask grid format (bm): the native header
// followed by rows of 32-bit words holding one bit per node.
package bit

import (
	"fmt"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/native"
	"github.com/eak1mov/go-libgrid/native/spec"
)

// Codec implements grid.Codec for bit-mask grids. Decoded nodes are 0 or 1;
// any non-zero, non-NaN value is written as a set bit.
type Codec struct{}

var _ grid.Codec = Codec{}

// wordsPerRow returns the number of 32-bit words holding one row of nx nodes.
func wordsPerRow(nx int) int {
	return (nx + 31) / 32
}

func rowSize(nx int) int64 {
	return int64(wordsPerRow(nx) * grid.ElemUint32.Size())
}

// DataSize returns the number of data bytes of an nx by ny bit-mask grid.
func DataSize(nx, ny int) int64 {
	return int64(ny) * rowSize(nx)
}

// Get returns bit i of a packed row.
func Get(row []byte, i int) bool {
	return spec.ByteOrder.Uint32(row[4*(i/32):])&(1<<(i%32)) != 0
}

// Set sets bit i of a packed row.
func Set(row []byte, i int) {
	word := spec.ByteOrder.Uint32(row[4*(i/32):])
	spec.ByteOrder.PutUint32(row[4*(i/32):], word|1<<(i%32))
}

func layout(nx int) grid.RowLayout {
	return grid.RowLayout{DataOffset: spec.HeaderLength, RowSize: rowSize(nx)}
}

func (Codec) ReadInfo(s *grid.Session, name string) (grid.Header, error) {
	r, err := s.Open(name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	h, err := native.ReadHeader(r)
	if err != nil {
		return grid.Header{}, err
	}
	if r.Seekable() {
		size, err := r.Size()
		if err != nil {
			return grid.Header{}, err
		}
		if want := spec.HeaderLength + DataSize(h.Nx, h.Ny); size != want {
			return grid.Header{}, fmt.Errorf("%w: %s: file size %d, want %d for bit data", grid.ErrBadValue, name, size, want)
		}
	}
	h.Name = name
	h.Format = grid.FormatBitMask
	return h, nil
}

func (Codec) WriteInfo(s *grid.Session, h grid.Header) (err error) {
	w, err := s.Create(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return native.WriteHeader(w, &h)
}

func (Codec) UpdateInfo(s *grid.Session, h grid.Header) (err error) {
	w, err := s.OpenUpdate(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return native.WriteHeader(w, &h)
}

func (Codec) ReadGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (grid.Header, error) {
	win, err := grid.ComputeWindow(h, opts.Region)
	if err != nil {
		return grid.Header{}, err
	}
	r, err := s.Open(h.Name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	decode := func(row []byte, col int) float32 {
		if Get(row, col) {
			return 1
		}
		return 0
	}
	return grid.ReadRows(r, h, win, layout(h.Nx), decode, data, opts)
}

func (Codec) WriteGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (_ grid.Header, err error) {
	if err := h.Validate(); err != nil {
		return grid.Header{}, err
	}
	win, err := grid.ComputeWindow(h, opts.Region)
	if err != nil {
		return grid.Header{}, err
	}
	out := win.Header
	out.ZMin, out.ZMax = grid.ScanRange(h, win, data, opts)

	w, err := s.Create(h.Name)
	if err != nil {
		return grid.Header{}, err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if err := native.WriteHeader(w, &out); err != nil {
		return grid.Header{}, err
	}
	encode := func(row []byte, col int, v float32) {
		if v == v && v != 0 {
			Set(row, col)
		}
	}
	if err := grid.WriteRows(w, h, win, layout(out.Nx), encode, data, opts); err != nil {
		return grid.Header{}, err
	}
	return out, nil
}

// Sniff decides whether the named file is a bit-mask grid from its header and
// size. It fails with grid.ErrNotThisFormat otherwise.
func Sniff(s *grid.Session, name string) (grid.FormatID, error) {
	h, size, err := native.SniffHeader(s, name)
	if err != nil {
		return grid.FormatAuto, err
	}
	if size != spec.HeaderLength+DataSize(h.Nx, h.Ny) {
		return grid.FormatAuto, fmt.Errorf("%w: %s: size %d does not match bit data", grid.ErrNotThisFormat, name, size)
	}
	return grid.FormatBitMask, nil
}
