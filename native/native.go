// Package native implements the native binary grid formats: a fixed 892-byte
// header followed by the rows of the grid, north row first, in one of the
// fixed-width encodings (bb, bs, bi, bf, bd).
package native

import (
	"fmt"
	"math"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/native/spec"
)

// Codec implements grid.Codec for one native element encoding.
type Codec struct {
	format grid.FormatID
	elem   grid.Elem
}

var _ grid.Codec = (*Codec)(nil)

var elems = map[grid.FormatID]grid.Elem{
	grid.FormatNativeByte:   grid.ElemInt8,
	grid.FormatNativeShort:  grid.ElemInt16,
	grid.FormatNativeInt:    grid.ElemInt32,
	grid.FormatNativeFloat:  grid.ElemFloat32,
	grid.FormatNativeDouble: grid.ElemFloat64,
}

// New returns the codec for a native format id.
func New(format grid.FormatID) (*Codec, error) {
	elem, ok := elems[format]
	if !ok {
		return nil, fmt.Errorf("%w: format %d is not a native format", grid.ErrUnknownFormat, format)
	}
	return &Codec{format: format, elem: elem}, nil
}

// Elem returns the element encoding of the codec.
func (c *Codec) Elem() grid.Elem {
	return c.elem
}

// FromSpec converts an on-disk header into a grid header.
func FromSpec(sh *spec.Header) grid.Header {
	return grid.Header{
		Nx:           int(sh.Nx),
		Ny:           int(sh.Ny),
		Registration: grid.Registration(sh.NodeOffset),
		XMin:         sh.XMin,
		XMax:         sh.XMax,
		YMin:         sh.YMin,
		YMax:         sh.YMax,
		ZMin:         sh.ZMin,
		ZMax:         sh.ZMax,
		XInc:         sh.XInc,
		YInc:         sh.YInc,
		ZScaleFactor: sh.ZScaleFactor,
		ZAddOffset:   sh.ZAddOffset,
		NaNValue:     math.NaN(),
		XUnits:       sh.XUnits,
		YUnits:       sh.YUnits,
		ZUnits:       sh.ZUnits,
		Title:        sh.Title,
		Command:      sh.Command,
		Remark:       sh.Remark,
	}
}

// ToSpec converts a grid header into its on-disk form.
func ToSpec(h *grid.Header) *spec.Header {
	return &spec.Header{
		Nx:           int32(h.Nx),
		Ny:           int32(h.Ny),
		NodeOffset:   int32(h.Registration),
		XMin:         h.XMin,
		XMax:         h.XMax,
		YMin:         h.YMin,
		YMax:         h.YMax,
		ZMin:         h.ZMin,
		ZMax:         h.ZMax,
		XInc:         h.XInc,
		YInc:         h.YInc,
		ZScaleFactor: h.ZScaleFactor,
		ZAddOffset:   h.ZAddOffset,
		XUnits:       h.XUnits,
		YUnits:       h.YUnits,
		ZUnits:       h.ZUnits,
		Title:        h.Title,
		Command:      h.Command,
		Remark:       h.Remark,
	}
}

// ReadHeader reads and validates the native header at the start of r.
func ReadHeader(r *grid.Reader) (grid.Header, error) {
	headerData := make([]byte, spec.HeaderLength)
	if err := r.ReadFull(headerData); err != nil {
		return grid.Header{}, err
	}
	sh, err := spec.DeserializeHeader(headerData)
	if err != nil {
		return grid.Header{}, fmt.Errorf("%w: %s: %w", grid.ErrBadValue, r.Name(), err)
	}
	h := FromSpec(sh)
	if err := h.Validate(); err != nil {
		return grid.Header{}, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return h, nil
}

// WriteHeader writes the native header of h to w.
func WriteHeader(w *grid.Writer, h *grid.Header) error {
	return w.Write(spec.SerializeHeader(ToSpec(h)))
}

func (c *Codec) ReadInfo(s *grid.Session, name string) (grid.Header, error) {
	r, err := s.Open(name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	h, err := ReadHeader(r)
	if err != nil {
		return grid.Header{}, err
	}
	if r.Seekable() {
		size, err := r.Size()
		if err != nil {
			return grid.Header{}, err
		}
		if want := spec.HeaderLength + int64(h.Size())*int64(c.elem.Size()); size != want {
			return grid.Header{}, fmt.Errorf("%w: %s: file size %d, want %d for %v data",
				grid.ErrBadValue, name, size, want, c.elem)
		}
	}
	h.Name = name
	h.Format = c.format
	s.Logger().Debug("libgrid: native header read", "name", name, "nx", h.Nx, "ny", h.Ny)
	return h, nil
}

func (c *Codec) WriteInfo(s *grid.Session, h grid.Header) (err error) {
	w, err := s.Create(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteHeader(w, &h)
}

func (c *Codec) UpdateInfo(s *grid.Session, h grid.Header) (err error) {
	w, err := s.OpenUpdate(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteHeader(w, &h)
}

func (c *Codec) layout(h *grid.Header) grid.RowLayout {
	return grid.RowLayout{
		DataOffset: spec.HeaderLength,
		RowSize:    int64(h.Nx * c.elem.Size()),
	}
}

func (c *Codec) ReadGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (grid.Header, error) {
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
		return c.elem.Decode(row, col, spec.ByteOrder)
	}
	return grid.ReadRows(r, h, win, c.layout(&h), decode, data, opts)
}

func (c *Codec) WriteGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (_ grid.Header, err error) {
	if err := h.Validate(); err != nil {
		return grid.Header{}, err
	}
	win, err := grid.ComputeWindow(h, opts.Region)
	if err != nil {
		return grid.Header{}, err
	}
	out := win.Header
	out.ZMin, out.ZMax = grid.ScanRange(h, win, data, opts)
	if !c.elem.Floating() {
		out.ZMin, out.ZMax = math.Round(out.ZMin), math.Round(out.ZMax)
	}

	w, err := s.Create(h.Name)
	if err != nil {
		return grid.Header{}, err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if err := WriteHeader(w, &out); err != nil {
		return grid.Header{}, err
	}
	encode := func(row []byte, col int, v float32) {
		c.elem.Encode(row, col, c.elem.StoredValue(v, out.NaNValue), spec.ByteOrder)
	}
	if err := grid.WriteRows(w, h, win, c.layout(&out), encode, data, opts); err != nil {
		return grid.Header{}, err
	}
	s.Logger().Debug("libgrid: native grid written", "name", h.Name, "nx", out.Nx, "ny", out.Ny)
	return out, nil
}
