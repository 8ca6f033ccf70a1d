package contourdb

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"strconv"

	"github.com/google/hilbert"

	"github.com/eak1mov/go-libgrid/contour"
	"github.com/eak1mov/go-libgrid/grid"
)

// Writer implements contour.Writer interface for a SQLite contour database.
type Writer struct {
	db     *sql.DB
	stmt   *sql.Stmt
	keys   *keyer
	logger *slog.Logger
	count  int
}

type writerConfig struct {
	Metadata map[string]string
	Logger   *slog.Logger
}

type WriterOption func(*writerConfig)

func WithMetadata(metadata map[string]string) WriterOption {
	return func(c *writerConfig) { c.Metadata = metadata }
}

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates a new contour database at filePath for lines traced on
// the grid h. The grid geometry is stored in the metadata table next to the
// metadata given with WithMetadata.
func NewWriter(filePath string, h grid.Header, opts ...WriterOption) (*Writer, error) {
	config := writerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	keys, err := newKeyer(h)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE contours (
			level REAL,
			closed INTEGER,
			hkey INTEGER,
			npoints INTEGER,
			points BLOB
		);
	`)
	if err != nil {
		return nil, err
	}

	metadata := geometry(h)
	for k, v := range config.Metadata {
		metadata[k] = v
	}
	for k, v := range metadata {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		if err != nil {
			return nil, err
		}
	}

	stmt, err := db.Prepare("INSERT INTO contours (level, closed, hkey, npoints, points) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}

	return &Writer{db: db, stmt: stmt, keys: keys, logger: config.Logger}, nil
}

func geometry(h grid.Header) map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		"nx":           strconv.Itoa(h.Nx),
		"ny":           strconv.Itoa(h.Ny),
		"x_min":        f(h.XMin),
		"x_max":        f(h.XMax),
		"y_min":        f(h.YMin),
		"y_max":        f(h.YMax),
		"x_inc":        f(h.XInc),
		"y_inc":        f(h.YInc),
		"registration": h.Registration.String(),
	}
}

func (w *Writer) Close() error {
	return errors.Join(w.stmt.Close(), w.db.Close())
}

func (w *Writer) WriteLine(line contour.Line) error {
	if len(line.Points) == 0 {
		return fmt.Errorf("%w: empty contour line", grid.ErrBadValue)
	}
	hkey, err := w.keys.key(line.Points[0])
	if err != nil {
		return err
	}
	blob, err := binary.Append(nil, binary.LittleEndian, line.Points)
	if err != nil {
		return err
	}
	_, err = w.stmt.Exec(line.Level, line.Closed, hkey, len(line.Points), blob)
	if err != nil {
		return err
	}
	w.count++
	return nil
}

func (w *Writer) Finalize() error {
	w.logger.Debug("libgrid: creating contour index", "lines", w.count)
	_, err := w.db.Exec("CREATE INDEX contour_index ON contours (level, hkey)")
	w.logger.Debug("libgrid: done!")
	return err
}

// keyer maps points to the Hilbert curve index of their nearest grid node.
type keyer struct {
	header grid.Header
	curve  *hilbert.Hilbert
}

func newKeyer(h grid.Header) (*keyer, error) {
	if h.Nx < 1 || h.Ny < 1 || !(h.XInc > 0) || !(h.YInc > 0) {
		return nil, fmt.Errorf("%w: grid of %d x %d nodes", grid.ErrBadValue, h.Nx, h.Ny)
	}
	side := 1 << bits.Len(uint(max(h.Nx, h.Ny)-1))
	curve, err := hilbert.NewHilbert(side)
	if err != nil {
		return nil, err
	}
	return &keyer{header: h, curve: curve}, nil
}

func (k *keyer) node(p contour.Point) (int, int) {
	h := &k.header
	i := int(math.Round((p.X - h.X(0)) / h.XInc))
	j := int(math.Round((h.Y(0) - p.Y) / h.YInc))
	return min(max(i, 0), h.Nx-1), min(max(j, 0), h.Ny-1)
}

func (k *keyer) key(p contour.Point) (int64, error) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return 0, fmt.Errorf("%w: contour vertex is NaN", grid.ErrBadValue)
	}
	i, j := k.node(p)
	t, err := k.curve.MapInverse(i, j)
	return int64(t), err
}

// HilbertKey returns the Hilbert curve index of the node of h nearest to p,
// as stored in the hkey column.
func HilbertKey(h grid.Header, p contour.Point) (int64, error) {
	keys, err := newKeyer(h)
	if err != nil {
		return 0, err
	}
	return keys.key(p)
}
