package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/grid"
)

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("")
	require.NoError(t, err)
	require.True(t, r.Full())

	r, err = parseRegion("-10/20.5/0/5")
	require.NoError(t, err)
	require.Equal(t, grid.Region{W: -10, E: 20.5, S: 0, N: 5}, r)

	for _, s := range []string{"1/2/3", "a/b/c/d", "5/1/0/1"} {
		_, err := parseRegion(s)
		require.Error(t, err, s)
	}
}

func TestDeduceContourFormat(t *testing.T) {
	require.Equal(t, "db", deduceContourFormat("", "out/contours.db"))
	require.Equal(t, "xy", deduceContourFormat("", "out/{level}.txt"))
	require.Equal(t, "xy", deduceContourFormat("xy", "out/contours.db"))
}
