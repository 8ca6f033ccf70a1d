// Package contourdb stores traced contour lines in a SQLite database.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package contourdb

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eak1mov/go-libgrid/contour"
)

// Reader implements contour.Visitor interface for a SQLite contour database.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader opens the contour database at filePath read-only.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT level, closed, npoints, points FROM contours WHERE level = ? ORDER BY hkey, rowid")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// ReadLevel returns the lines of one contour level ordered along the
// Hilbert curve of their first vertex.
func (r *Reader) ReadLevel(level float64) ([]contour.Line, error) {
	rows, err := r.stmt.Query(level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []contour.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// VisitLines visits all lines in the order they were written.
func (r *Reader) VisitLines(visitor func(contour.Line) error) error {
	rows, err := r.db.Query("SELECT level, closed, npoints, points FROM contours ORDER BY rowid")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return err
		}
		if err := visitor(line); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return err
	}

	return nil
}

func scanLine(rows *sql.Rows) (contour.Line, error) {
	var line contour.Line
	var npoints int
	var blob []byte
	if err := rows.Scan(&line.Level, &line.Closed, &npoints, &blob); err != nil {
		return contour.Line{}, err
	}
	line.Points = make([]contour.Point, npoints)
	if _, err := binary.Decode(blob, binary.LittleEndian, line.Points); err != nil {
		return contour.Line{}, fmt.Errorf("decoding %d points: %w", npoints, err)
	}
	return line, nil
}
