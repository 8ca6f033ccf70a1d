// Package spec describes the byte layout of the native grid header.
package spec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is the on-disk header shared by the native and bit-mask formats.
type Header struct {
	Nx           int32
	Ny           int32
	NodeOffset   int32
	XMin         float64
	XMax         float64
	YMin         float64
	YMax         float64
	ZMin         float64
	ZMax         float64
	XInc         float64
	YInc         float64
	ZScaleFactor float64
	ZAddOffset   float64
	XUnits       string
	YUnits       string
	ZUnits       string
	Title        string
	Command      string
	Remark       string
}

const (
	HeaderLength = 892

	unitsLength   = 80
	titleLength   = 80
	commandLength = 320
	remarkLength  = 160
)

// ByteOrder of the header and of the data following it.
var ByteOrder binary.ByteOrder = binary.LittleEndian

var ErrInvalidHeader = errors.New("invalid native grid header")

type fieldKind uint8

const (
	kindInt32 fieldKind = iota
	kindFloat64
	kindString
)

// Field is one entry of the header layout.
type Field struct {
	Name   string
	Offset int
	Size   int

	kind fieldKind
	i32  func(*Header) *int32
	f64  func(*Header) *float64
	str  func(*Header) *string
}

func int32Field(name string, offset int, p func(*Header) *int32) Field {
	return Field{Name: name, Offset: offset, Size: 4, kind: kindInt32, i32: p}
}

func float64Field(name string, offset int, p func(*Header) *float64) Field {
	return Field{Name: name, Offset: offset, Size: 8, kind: kindFloat64, f64: p}
}

func stringField(name string, offset, size int, p func(*Header) *string) Field {
	return Field{Name: name, Offset: offset, Size: size, kind: kindString, str: p}
}

// The three leading integers are followed directly by the doubles: there is
// no alignment gap at offset 12.
var layout = []Field{
	int32Field("nx", 0, func(h *Header) *int32 { return &h.Nx }),
	int32Field("ny", 4, func(h *Header) *int32 { return &h.Ny }),
	int32Field("node_offset", 8, func(h *Header) *int32 { return &h.NodeOffset }),
	float64Field("x_min", 12, func(h *Header) *float64 { return &h.XMin }),
	float64Field("x_max", 20, func(h *Header) *float64 { return &h.XMax }),
	float64Field("y_min", 28, func(h *Header) *float64 { return &h.YMin }),
	float64Field("y_max", 36, func(h *Header) *float64 { return &h.YMax }),
	float64Field("z_min", 44, func(h *Header) *float64 { return &h.ZMin }),
	float64Field("z_max", 52, func(h *Header) *float64 { return &h.ZMax }),
	float64Field("x_inc", 60, func(h *Header) *float64 { return &h.XInc }),
	float64Field("y_inc", 68, func(h *Header) *float64 { return &h.YInc }),
	float64Field("z_scale_factor", 76, func(h *Header) *float64 { return &h.ZScaleFactor }),
	float64Field("z_add_offset", 84, func(h *Header) *float64 { return &h.ZAddOffset }),
	stringField("x_units", 92, unitsLength, func(h *Header) *string { return &h.XUnits }),
	stringField("y_units", 172, unitsLength, func(h *Header) *string { return &h.YUnits }),
	stringField("z_units", 252, unitsLength, func(h *Header) *string { return &h.ZUnits }),
	stringField("title", 332, titleLength, func(h *Header) *string { return &h.Title }),
	stringField("command", 412, commandLength, func(h *Header) *string { return &h.Command }),
	stringField("remark", 732, remarkLength, func(h *Header) *string { return &h.Remark }),
}

// Layout returns the ordered header fields.
func Layout() []Field {
	return layout
}

func SerializeHeader(header *Header) []byte {
	buffer := make([]byte, HeaderLength)
	for _, f := range layout {
		dst := buffer[f.Offset : f.Offset+f.Size]
		switch f.kind {
		case kindInt32:
			ByteOrder.PutUint32(dst, uint32(*f.i32(header)))
		case kindFloat64:
			binary.Encode(dst, ByteOrder, *f.f64(header))
		case kindString:
			// keep a terminating NUL
			copy(dst[:f.Size-1], *f.str(header))
		}
	}
	return buffer
}

func DeserializeHeader(buffer []byte) (*Header, error) {
	if len(buffer) < HeaderLength {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, io.ErrUnexpectedEOF)
	}
	header := Header{}
	for _, f := range layout {
		src := buffer[f.Offset : f.Offset+f.Size]
		switch f.kind {
		case kindInt32:
			*f.i32(&header) = int32(ByteOrder.Uint32(src))
		case kindFloat64:
			if _, err := binary.Decode(src, ByteOrder, f.f64(&header)); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidHeader, f.Name, err)
			}
		case kindString:
			if i := bytes.IndexByte(src, 0); i >= 0 {
				src = src[:i]
			}
			*f.str(&header) = string(src)
		}
	}
	if header.Nx <= 0 || header.Ny <= 0 {
		return nil, fmt.Errorf("%w: dimensions %d x %d", ErrInvalidHeader, header.Nx, header.Ny)
	}
	if header.NodeOffset != 0 && header.NodeOffset != 1 {
		return nil, fmt.Errorf("%w: node_offset %d", ErrInvalidHeader, header.NodeOffset)
	}
	return &header, nil
}
