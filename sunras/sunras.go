// Package sunras implements 8-bit Sun raster files (rb) as grids.
//
// Rasters carry no real-world coordinates: the grid geometry is synthesized
// as a pixel registered grid with unit increments and its origin at 0,0.
package sunras

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/eak1mov/go-libgrid/grid"
)

const (
	Magic        uint32 = 0x59a66a95
	HeaderLength        = 32

	typeOld      = 0
	typeStandard = 1
	typeEncoded  = 2

	mapNone = 0
)

// Header is the fixed 8-field Sun raster header.
type Header struct {
	Magic     uint32
	Width     uint32
	Height    uint32
	Depth     uint32
	Length    uint32
	Type      uint32
	MapType   uint32
	MapLength uint32
}

func (h *Header) fields() []*uint32 {
	return []*uint32{&h.Magic, &h.Width, &h.Height, &h.Depth, &h.Length, &h.Type, &h.MapType, &h.MapLength}
}

// SerializeHeader encodes the header big-endian, one byte at a time, so the
// result does not depend on the host byte order.
func SerializeHeader(h *Header) []byte {
	buffer := make([]byte, 0, HeaderLength)
	for _, f := range h.fields() {
		buffer = append(buffer, byte(*f>>24), byte(*f>>16), byte(*f>>8), byte(*f))
	}
	return buffer
}

func DeserializeHeader(buffer []byte) (*Header, error) {
	if len(buffer) < HeaderLength {
		return nil, fmt.Errorf("%w: short raster header", grid.ErrReadFailed)
	}
	h := Header{}
	for k, f := range h.fields() {
		b := buffer[4*k:]
		*f = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: bad raster magic %#x", grid.ErrNotThisFormat, h.Magic)
	}
	if h.Depth != 8 {
		return nil, fmt.Errorf("%w: raster depth %d, only 8 is supported", grid.ErrUnsupportedVariant, h.Depth)
	}
	if h.Type != typeOld && h.Type != typeStandard {
		return nil, fmt.Errorf("%w: raster type %d", grid.ErrUnsupportedVariant, h.Type)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%w: raster of %d x %d pixels", grid.ErrBadValue, h.Width, h.Height)
	}
	return &h, nil
}

// rowSize returns the stored row length: rows are padded to an even count.
func rowSize(width int) int64 {
	return int64(width + width%2)
}

// Codec implements grid.Codec for Sun raster files.
type Codec struct{}

var _ grid.Codec = Codec{}

func readHeader(r *grid.Reader) (*Header, error) {
	headerData := make([]byte, HeaderLength)
	if err := r.ReadFull(headerData); err != nil {
		return nil, err
	}
	rh, err := DeserializeHeader(headerData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return rh, nil
}

func toGrid(rh *Header) grid.Header {
	return grid.Header{
		Nx:           int(rh.Width),
		Ny:           int(rh.Height),
		XMin:         0,
		XMax:         float64(rh.Width),
		YMin:         0,
		YMax:         float64(rh.Height),
		XInc:         1,
		YInc:         1,
		Registration: grid.Pixel,
		ZMin:         0,
		ZMax:         255,
		ZScaleFactor: 1,
		NaNValue:     math.NaN(),
	}
}

func fromGrid(h *grid.Header) *Header {
	return &Header{
		Magic:  Magic,
		Width:  uint32(h.Nx),
		Height: uint32(h.Ny),
		Depth:  8,
		Length: uint32(rowSize(h.Nx) * int64(h.Ny)),
		Type:   typeStandard,
	}
}

func (Codec) ReadInfo(s *grid.Session, name string) (grid.Header, error) {
	r, err := s.Open(name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	rh, err := readHeader(r)
	if err != nil {
		return grid.Header{}, err
	}
	if rh.MapType != mapNone {
		// leave a pipe positioned at the pixel data
		if err := r.Skip(int64(rh.MapLength)); err != nil {
			return grid.Header{}, err
		}
	}
	h := toGrid(rh)
	h.Name = name
	h.Format = grid.FormatSunRaster
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
	return w.Write(SerializeHeader(fromGrid(&h)))
}

func (c Codec) UpdateInfo(s *grid.Session, h grid.Header) error {
	return c.WriteInfo(s, h)
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

	if r.Offset() == 0 {
		rh, err := readHeader(r)
		if err != nil {
			return grid.Header{}, err
		}
		if rh.MapType != mapNone {
			// pixel values are returned as colormap indices
			if err := r.Skip(int64(rh.MapLength)); err != nil {
				return grid.Header{}, err
			}
		}
	}
	layout := grid.RowLayout{DataOffset: r.Offset(), RowSize: rowSize(h.Nx)}
	decode := func(row []byte, col int) float32 {
		return grid.ElemUint8.Decode(row, col, binary.BigEndian)
	}
	return grid.ReadRows(r, h, win, layout, decode, data, opts)
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

	if err := w.Write(SerializeHeader(fromGrid(&out))); err != nil {
		return grid.Header{}, err
	}
	layout := grid.RowLayout{DataOffset: HeaderLength, RowSize: rowSize(out.Nx)}
	encode := func(row []byte, col int, v float32) {
		grid.ElemUint8.Encode(row, col, grid.ElemUint8.StoredValue(v, out.NaNValue), binary.BigEndian)
	}
	if err := grid.WriteRows(w, h, win, layout, encode, data, opts); err != nil {
		return grid.Header{}, err
	}
	return out, nil
}

// Sniff checks the raster magic of the named file.
func Sniff(s *grid.Session, name string) (grid.FormatID, error) {
	if grid.IsPipe(name) {
		return grid.FormatAuto, fmt.Errorf("%w: cannot detect the format of a pipe", grid.ErrPipeUnsupported)
	}
	r, err := s.Open(name)
	if err != nil {
		return grid.FormatAuto, err
	}
	defer r.Close()

	magic := make([]byte, 4)
	if err := r.ReadFull(magic); err != nil {
		return grid.FormatAuto, fmt.Errorf("%w: %w", grid.ErrNotThisFormat, err)
	}
	if binary.BigEndian.Uint32(magic) != Magic {
		return grid.FormatAuto, fmt.Errorf("%w: %s: not a Sun raster", grid.ErrNotThisFormat, name)
	}
	return grid.FormatSunRaster, nil
}
