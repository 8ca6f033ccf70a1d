package grid

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Elem is the on-disk numeric encoding of one grid node.
type Elem uint8

const (
	ElemUnknown Elem = iota
	ElemInt8
	ElemUint8
	ElemInt16
	ElemInt32
	ElemUint32
	ElemFloat32
	ElemFloat64
)

var elemNames = [...]string{"unknown", "int8", "uint8", "int16", "int32", "uint32", "float32", "float64"}

func (e Elem) String() string {
	if int(e) < len(elemNames) {
		return elemNames[e]
	}
	return fmt.Sprintf("Elem(%d)", e)
}

// Size returns the number of bytes of one encoded element.
func (e Elem) Size() int {
	switch e {
	case ElemInt8, ElemUint8:
		return 1
	case ElemInt16:
		return 2
	case ElemInt32, ElemUint32, ElemFloat32:
		return 4
	case ElemFloat64:
		return 8
	}
	return 0
}

// Floating reports whether the encoding can represent IEEE NaN.
func (e Elem) Floating() bool {
	return e == ElemFloat32 || e == ElemFloat64
}

// Decode returns element k of raw.
func (e Elem) Decode(raw []byte, k int, order binary.ByteOrder) float32 {
	switch e {
	case ElemInt8:
		return float32(int8(raw[k]))
	case ElemUint8:
		return float32(raw[k])
	case ElemInt16:
		return float32(int16(order.Uint16(raw[2*k:])))
	case ElemInt32:
		return float32(int32(order.Uint32(raw[4*k:])))
	case ElemUint32:
		return float32(order.Uint32(raw[4*k:]))
	case ElemFloat32:
		return math.Float32frombits(order.Uint32(raw[4*k:]))
	case ElemFloat64:
		return float32(math.Float64frombits(order.Uint64(raw[8*k:])))
	}
	panic(fmt.Sprintf("libgrid: decode of %v", e))
}

// Encode stores v as element k of raw. Integer encodings round to the nearest
// integer and then narrow with two's-complement wraparound, so out-of-range
// values wrap silently. NaN values must be replaced by the caller.
func (e Elem) Encode(raw []byte, k int, v float32, order binary.ByteOrder) {
	switch e {
	case ElemInt8:
		raw[k] = byte(int8(int64(math.Round(float64(v)))))
	case ElemUint8:
		raw[k] = byte(int64(math.Round(float64(v))))
	case ElemInt16:
		order.PutUint16(raw[2*k:], uint16(int16(int64(math.Round(float64(v))))))
	case ElemInt32:
		order.PutUint32(raw[4*k:], uint32(int32(int64(math.Round(float64(v))))))
	case ElemUint32:
		order.PutUint32(raw[4*k:], uint32(int64(math.Round(float64(v)))))
	case ElemFloat32:
		order.PutUint32(raw[4*k:], math.Float32bits(v))
	case ElemFloat64:
		order.PutUint64(raw[8*k:], math.Float64bits(float64(v)))
	default:
		panic(fmt.Sprintf("libgrid: encode of %v", e))
	}
}

// StoredValue returns the value to encode for v, substituting the NaN proxy
// for missing data. Integer encodings without a proxy store 0.
func (e Elem) StoredValue(v float32, nanValue float64) float32 {
	if !isNaN32(v) {
		return v
	}
	if !math.IsNaN(nanValue) {
		return float32(nanValue)
	}
	if e.Floating() {
		return v
	}
	return 0
}

func isNaN32(v float32) bool {
	return v != v
}

// NaN32 is the float32 quiet NaN stored for missing nodes.
var NaN32 = float32(math.NaN())
