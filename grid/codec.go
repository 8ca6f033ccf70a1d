package grid

// Codec reads and writes one family of grid file formats.
//
// No Codec keeps state between calls beyond the duration of one call: every
// file opened by an operation is closed before it returns.
type Codec interface {
	// ReadInfo parses the header of the named grid without reading the data.
	ReadInfo(s *Session, name string) (Header, error)

	// WriteInfo creates the grid file h.Name holding only the header.
	WriteInfo(s *Session, h Header) error

	// UpdateInfo rewrites the header of an existing grid file.
	UpdateInfo(s *Session, h Header) error

	// ReadGrid reads the sub-region opts.Region of the grid described by h into
	// data, which must hold BufferSize(width, height, opts) values.
	// It returns the header of the region read, with its z range.
	ReadGrid(s *Session, h Header, data []float32, opts IO) (Header, error)

	// WriteGrid writes the sub-region opts.Region of data, laid out as the grid
	// h, to the file h.Name. It returns the header written.
	WriteGrid(s *Session, h Header, data []float32, opts IO) (Header, error)
}
