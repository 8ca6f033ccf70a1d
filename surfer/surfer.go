// Package surfer implements the Golden Software Surfer binary grid formats:
// Surfer 6 (sf, float32 nodes) and Surfer 7 (sd, float64 nodes).
//
// Surfer stores the southernmost row first and its grids are always gridline
// registered. Files are re-opened after the version tag is sniffed, so
// neither pipes nor compressed streams are supported.
package surfer

import (
	"fmt"
	"math"

	"github.com/eak1mov/go-libgrid/grid"
)

// Codec implements grid.Codec for Surfer grids. Reading accepts both
// versions; writing produces the version of the codec's format.
type Codec struct {
	format grid.FormatID
}

var _ grid.Codec = Codec{}

// New returns the codec writing Surfer 6 (grid.FormatSurfer6) or Surfer 7
// (grid.FormatSurfer7) files.
func New(format grid.FormatID) (Codec, error) {
	if format != grid.FormatSurfer6 && format != grid.FormatSurfer7 {
		return Codec{}, fmt.Errorf("%w: format %d is not a Surfer format", grid.ErrUnknownFormat, format)
	}
	return Codec{format: format}, nil
}

type fileInfo struct {
	header     grid.Header
	elem       grid.Elem
	dataOffset int64
}

func open(s *grid.Session, name string) (*grid.Reader, error) {
	if grid.IsPipe(name) || grid.CompressionOf(name) != grid.CompressionNone {
		return nil, fmt.Errorf("%w: %s: Surfer grids need random access", grid.ErrPipeUnsupported, name)
	}
	return s.Open(name)
}

func readInfo(r *grid.Reader) (fileInfo, error) {
	tag := make([]byte, 4)
	if err := r.ReadFull(tag); err != nil {
		return fileInfo{}, err
	}
	switch string(tag) {
	case tagV6:
		return readInfoV6(r, tag)
	case tagV7:
		return readInfoV7(r, tag)
	}
	return fileInfo{}, fmt.Errorf("%w: %s: tag %q", grid.ErrNotThisFormat, r.Name(), tag)
}

func readInfoV6(r *grid.Reader, tag []byte) (fileInfo, error) {
	headerData := make([]byte, HeaderLengthV6)
	copy(headerData, tag)
	if err := r.ReadFull(headerData[len(tag):]); err != nil {
		return fileInfo{}, err
	}
	sh, err := DeserializeHeaderV6(headerData)
	if err != nil {
		return fileInfo{}, fmt.Errorf("%s: %w", r.Name(), err)
	}
	h := grid.Header{
		Format:       grid.FormatSurfer6,
		Nx:           int(sh.Nx),
		Ny:           int(sh.Ny),
		XMin:         sh.XLo,
		XMax:         sh.XHi,
		YMin:         sh.YLo,
		YMax:         sh.YHi,
		ZMin:         sh.ZLo,
		ZMax:         sh.ZHi,
		Registration: grid.Gridline,
		ZScaleFactor: 1,
		NaNValue:     Blank,
	}
	if h.Nx > 1 {
		h.XInc = (h.XMax - h.XMin) / float64(h.Nx-1)
	}
	if h.Ny > 1 {
		h.YInc = (h.YMax - h.YMin) / float64(h.Ny-1)
	}
	if err := h.Validate(); err != nil {
		return fileInfo{}, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return fileInfo{header: h, elem: grid.ElemFloat32, dataOffset: HeaderLengthV6}, nil
}

func readInfoV7(r *grid.Reader, tag []byte) (fileInfo, error) {
	headerData := make([]byte, HeaderLengthV7)
	copy(headerData, tag)
	if err := r.ReadFull(headerData[len(tag):]); err != nil {
		return fileInfo{}, err
	}
	sh, err := DeserializeHeaderV7(headerData)
	if err != nil {
		return fileInfo{}, fmt.Errorf("%s: %w", r.Name(), err)
	}
	h := grid.Header{
		Format:       grid.FormatSurfer7,
		Nx:           int(sh.NCol),
		Ny:           int(sh.NRow),
		XMin:         sh.XLL,
		XMax:         sh.XLL + float64(sh.NCol-1)*sh.XSize,
		YMin:         sh.YLL,
		YMax:         sh.YLL + float64(sh.NRow-1)*sh.YSize,
		XInc:         sh.XSize,
		YInc:         sh.YSize,
		ZMin:         sh.ZMin,
		ZMax:         sh.ZMax,
		Registration: grid.Gridline,
		ZScaleFactor: 1,
		NaNValue:     sh.BlankValue,
	}
	if err := h.Validate(); err != nil {
		return fileInfo{}, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return fileInfo{header: h, elem: grid.ElemFloat64, dataOffset: HeaderLengthV7}, nil
}

func (Codec) ReadInfo(s *grid.Session, name string) (grid.Header, error) {
	r, err := open(s, name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	info, err := readInfo(r)
	if err != nil {
		return grid.Header{}, err
	}
	info.header.Name = name
	return info.header, nil
}

// gridlineHeader converts a pixel registered header to the gridline
// registered header with the same node positions.
func gridlineHeader(h grid.Header) grid.Header {
	if h.Registration == grid.Pixel {
		h.XMin += h.XInc / 2
		h.XMax -= h.XInc / 2
		h.YMin += h.YInc / 2
		h.YMax -= h.YInc / 2
		h.Registration = grid.Gridline
	}
	return h
}

func (c Codec) headerData(h grid.Header) ([]byte, error) {
	h = gridlineHeader(h)
	blank := h.NaNValue
	if math.IsNaN(blank) {
		blank = Blank
	}
	if c.format == grid.FormatSurfer7 {
		if int64(h.Nx)*int64(h.Ny)*8 > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d x %d nodes do not fit a Surfer 7 data section", grid.ErrBadValue, h.Nx, h.Ny)
		}
		return serialize(&HeaderV7{
			Tag:        [4]byte([]byte(tagV7)),
			Size:       v7HeaderSectionSize,
			Version:    1,
			GridTag:    [4]byte([]byte(tagGrid)),
			GridSize:   v7GridSectionSize,
			NRow:       int32(h.Ny),
			NCol:       int32(h.Nx),
			XLL:        h.XMin,
			YLL:        h.YMin,
			XSize:      h.XInc,
			YSize:      h.YInc,
			ZMin:       h.ZMin,
			ZMax:       h.ZMax,
			BlankValue: blank,
			DataTag:    [4]byte([]byte(tagData)),
			DataSize:   int32(h.Nx * h.Ny * 8),
		}), nil
	}
	if h.Nx > math.MaxInt16 || h.Ny > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %d x %d nodes do not fit a Surfer 6 grid", grid.ErrBadValue, h.Nx, h.Ny)
	}
	return serialize(&HeaderV6{
		Tag: [4]byte([]byte(tagV6)),
		Nx:  int16(h.Nx),
		Ny:  int16(h.Ny),
		XLo: h.XMin,
		XHi: h.XMax,
		YLo: h.YMin,
		YHi: h.YMax,
		ZLo: h.ZMin,
		ZHi: h.ZMax,
	}), nil
}

func (c Codec) WriteInfo(s *grid.Session, h grid.Header) (err error) {
	headerData, err := c.headerData(h)
	if err != nil {
		return err
	}
	if grid.IsPipe(h.Name) || grid.CompressionOf(h.Name) != grid.CompressionNone {
		return fmt.Errorf("%w: %s: Surfer grids need random access", grid.ErrPipeUnsupported, h.Name)
	}
	w, err := s.Create(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.Write(headerData)
}

// UpdateInfo rewrites the header of a Surfer 6 grid in place. Surfer 7
// headers are written as by WriteInfo.
func (c Codec) UpdateInfo(s *grid.Session, h grid.Header) (err error) {
	if c.format == grid.FormatSurfer7 {
		return c.WriteInfo(s, h)
	}
	headerData, err := c.headerData(h)
	if err != nil {
		return err
	}
	w, err := s.OpenUpdate(h.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.Write(headerData)
}

func (Codec) ReadGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (grid.Header, error) {
	r, err := open(s, h.Name)
	if err != nil {
		return grid.Header{}, err
	}
	defer r.Close()

	info, err := readInfo(r)
	if err != nil {
		return grid.Header{}, err
	}
	if info.header.Nx != h.Nx || info.header.Ny != h.Ny {
		return grid.Header{}, fmt.Errorf("%w: %s: header is %d x %d, file is %d x %d",
			grid.ErrBadValue, h.Name, h.Nx, h.Ny, info.header.Nx, info.header.Ny)
	}
	win, err := grid.ComputeWindow(h, opts.Region)
	if err != nil {
		return grid.Header{}, err
	}
	layout := grid.RowLayout{
		DataOffset: info.dataOffset,
		RowSize:    int64(h.Nx * info.elem.Size()),
		BottomUp:   true,
	}
	decode := func(row []byte, col int) float32 {
		return info.elem.Decode(row, col, byteOrder)
	}
	return grid.ReadRows(r, h, win, layout, decode, data, opts)
}

func (c Codec) WriteGrid(s *grid.Session, h grid.Header, data []float32, opts grid.IO) (_ grid.Header, err error) {
	if err := h.Validate(); err != nil {
		return grid.Header{}, err
	}
	win, err := grid.ComputeWindow(h, opts.Region)
	if err != nil {
		return grid.Header{}, err
	}
	out := win.Header
	out.Format = c.format
	out.ZMin, out.ZMax = grid.ScanRange(h, win, data, opts)
	if math.IsNaN(out.NaNValue) {
		out.NaNValue = Blank
	}

	headerData, err := c.headerData(out)
	if err != nil {
		return grid.Header{}, err
	}
	if grid.IsPipe(h.Name) || grid.CompressionOf(h.Name) != grid.CompressionNone {
		return grid.Header{}, fmt.Errorf("%w: %s: Surfer grids need random access", grid.ErrPipeUnsupported, h.Name)
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

	if err := w.Write(headerData); err != nil {
		return grid.Header{}, err
	}
	elem := grid.ElemFloat32
	if c.format == grid.FormatSurfer7 {
		elem = grid.ElemFloat64
	}
	layout := grid.RowLayout{RowSize: int64(out.Nx * elem.Size()), BottomUp: true}
	encode := func(row []byte, col int, v float32) {
		if v != v && elem == grid.ElemFloat64 {
			// the blank value keeps its full double precision
			byteOrder.PutUint64(row[8*col:], math.Float64bits(out.NaNValue))
			return
		}
		elem.Encode(row, col, elem.StoredValue(v, out.NaNValue), byteOrder)
	}
	if err := grid.WriteRows(w, h, win, layout, encode, data, opts); err != nil {
		return grid.Header{}, err
	}
	return gridlineHeader(out), nil
}

// Sniff checks the Surfer version tag of the named file.
func Sniff(s *grid.Session, name string) (grid.FormatID, error) {
	r, err := open(s, name)
	if err != nil {
		return grid.FormatAuto, err
	}
	defer r.Close()

	tag := make([]byte, 4)
	if err := r.ReadFull(tag); err != nil {
		return grid.FormatAuto, fmt.Errorf("%w: %w", grid.ErrNotThisFormat, err)
	}
	switch string(tag) {
	case tagV6:
		return grid.FormatSurfer6, nil
	case tagV7:
		return grid.FormatSurfer7, nil
	}
	return grid.FormatAuto, fmt.Errorf("%w: %s: not a Surfer grid", grid.ErrNotThisFormat, name)
}
