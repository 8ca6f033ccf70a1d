// Package xy provides API for reading and writing contour lines as ASCII
// multi-segment files: every line starts with a "> -Z<level>" header
// record followed by one "x y" record per vertex.
package xy

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidPattern = errors.New("libgrid: invalid file pattern")
	ErrSyntax         = errors.New("libgrid: malformed multi-segment file")
)

const levelPlaceholder = "{level}"

// splitByLevel reports whether the pattern places each level in its own file.
func splitByLevel(pattern string) bool {
	return strings.Contains(pattern, levelPlaceholder)
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return ErrInvalidPattern
	}
	return nil
}

func formatLevel(level float64) string {
	return strconv.FormatFloat(level, 'g', -1, 64)
}

func formatPattern(pattern string, level float64) string {
	return strings.ReplaceAll(pattern, levelPlaceholder, formatLevel(level))
}

func patternRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, levelPlaceholder)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, `(?P<level>[-+0-9.eE]+)`) + "$")
}
