package grid

import "errors"

var (
	ErrOpenFailed         = errors.New("libgrid: open failed")
	ErrCreateFailed       = errors.New("libgrid: create failed")
	ErrReadFailed         = errors.New("libgrid: read failed")
	ErrWriteFailed        = errors.New("libgrid: write failed")
	ErrSeekFailed         = errors.New("libgrid: seek failed")
	ErrNotThisFormat      = errors.New("libgrid: not this format")
	ErrUnsupportedVariant = errors.New("libgrid: unsupported format variant")
	ErrBadValue           = errors.New("libgrid: bad header value")
	ErrRegionOutsideGrid  = errors.New("libgrid: region outside grid")
	ErrPipeUnsupported    = errors.New("libgrid: format does not support piping")
	ErrUnknownFormat      = errors.New("libgrid: unrecognized grid format")
	ErrBufferTooSmall     = errors.New("libgrid: buffer too small")
)
