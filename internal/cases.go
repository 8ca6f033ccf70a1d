package internal

import "iter"

// GridCases yields the named synthetic grids used by codec round trip tests.
func GridCases() iter.Seq2[string, Grid] {
	return func(yield func(string, Grid) bool) {
		cases := []struct {
			name string
			grid Grid
		}{
			{"ramp", Ramp(7, 5)},
			{"bump", Bump(9, 9, 3)},
			{"holes", Holes(33, 4)},
			{"single-row", Ramp(6, 2)},
		}
		for _, c := range cases {
			if !yield(c.name, c.grid) {
				return
			}
		}
	}
}

// Scaled returns a copy of g with every value multiplied by k and offset by c.
func Scaled(g Grid, k, c float32) Grid {
	out := Grid{Header: g.Header, Data: make([]float32, len(g.Data))}
	for i, v := range g.Data {
		out.Data[i] = v*k + c
	}
	return out
}
