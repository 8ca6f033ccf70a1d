package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/gridio"
)

func deduceContourFormat(format, filePath string) string {
	if format == "" && strings.HasSuffix(filePath, ".db") {
		return "db"
	}
	if format == "" {
		return "xy"
	}
	return format
}

// parseRegion parses a "w/e/s/n" region. The empty string selects the full
// grid.
func parseRegion(s string) (grid.Region, error) {
	if s == "" {
		return grid.Region{}, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return grid.Region{}, fmt.Errorf("region %q: want w/e/s/n", s)
	}
	var v [4]float64
	for i, p := range parts {
		var err error
		if v[i], err = strconv.ParseFloat(p, 64); err != nil {
			return grid.Region{}, fmt.Errorf("region %q: %w", s, err)
		}
	}
	if v[0] > v[1] || v[2] > v[3] {
		return grid.Region{}, fmt.Errorf("region %q: empty", s)
	}
	return grid.Region{W: v[0], E: v[1], S: v[2], N: v[3]}, nil
}

func newSession() *grid.Session {
	return grid.NewSession(grid.WithLogger(slog.Default()))
}

// readGrid reads the region of the named grid given in the format string
// spec ("" detects the format).
func readGrid(s *grid.Session, name, format, region string) (grid.Header, []float32, error) {
	registry := gridio.Default()
	spec, err := registry.ParseFormat(format)
	if err != nil {
		return grid.Header{}, nil, err
	}
	r, err := parseRegion(region)
	if err != nil {
		return grid.Header{}, nil, err
	}
	return registry.Read(s, name, spec, grid.IO{Region: r})
}
