package xy

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libgrid/contour"
)

// Reader implements contour.Visitor interface for multi-segment files.
type Reader struct {
	filePattern string
	rootDir     string
	pathRegexp  *regexp.Regexp
}

// NewReader creates a new Reader for the given file pattern
// (e.g. "/home/user/contours/{level}.xy").
func NewReader(filePattern string) (*Reader, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	pathRegex, err := patternRegexp(filePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	path0 := formatPattern(filePattern, 0)
	path1 := formatPattern(filePattern, 1)
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}
	rootDir := path0

	return &Reader{filePattern, rootDir, pathRegex}, nil
}

// ReadLevel returns the lines of one contour level in file order.
func (r *Reader) ReadLevel(level float64) ([]contour.Line, error) {
	var lines []contour.Line
	err := r.visitFile(formatPattern(r.filePattern, level), func(line contour.Line) error {
		if line.Level == level {
			lines = append(lines, line)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return lines, err
}

// VisitLines visits all lines. Files of a split pattern are visited in
// increasing level order.
func (r *Reader) VisitLines(visitor func(contour.Line) error) error {
	if !splitByLevel(r.filePattern) {
		return r.visitFile(r.filePattern, visitor)
	}

	type levelFile struct {
		level    float64
		filePath string
	}
	var files []levelFile
	err := filepath.WalkDir(r.rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := r.pathRegexp.FindStringSubmatch(filePath)
		if matches == nil {
			return nil
		}
		level, err := strconv.ParseFloat(matches[r.pathRegexp.SubexpIndex("level")], 64)
		if err != nil {
			return nil
		}
		files = append(files, levelFile{level, filePath})
		return nil
	})
	if err != nil {
		return err
	}

	slices.SortFunc(files, func(a, b levelFile) int { return cmp.Compare(a.level, b.level) })
	for _, f := range files {
		if err := r.visitFile(f.filePath, visitor); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) visitFile(filePath string, visitor func(contour.Line) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return scanLines(file, visitor)
}

func scanLines(src io.Reader, visitor func(contour.Line) error) error {
	scanner := bufio.NewScanner(src)
	var line *contour.Line
	flush := func() error {
		if line == nil {
			return nil
		}
		l := *line
		line = nil
		return visitor(l)
	}

	for n := 1; scanner.Scan(); n++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, ">") {
			if err := flush(); err != nil {
				return err
			}
			line = &contour.Line{}
			for _, field := range strings.Fields(text[1:]) {
				switch {
				case strings.HasPrefix(field, "-Z"):
					level, err := strconv.ParseFloat(field[2:], 64)
					if err != nil {
						return fmt.Errorf("%w: line %d: %w", ErrSyntax, n, err)
					}
					line.Level = level
				case field == "closed":
					line.Closed = true
				}
			}
			continue
		}
		if line == nil {
			return fmt.Errorf("%w: line %d: vertex before segment header", ErrSyntax, n)
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return fmt.Errorf("%w: line %d: want two coordinates", ErrSyntax, n)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrSyntax, n, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrSyntax, n, err)
		}
		line.Points = append(line.Points, contour.Point{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
