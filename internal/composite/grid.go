// Package composite derives multi-band color composites from imagery
// channels using the published RGB recipes for the Advanced Baseline
// Imager. Output stays numeric; rendering is left to the caller.
package composite

import (
	"fmt"
	"math"
)

// Grid is a rectangular raster of float64 samples in row-major order.
// Operations return new grids and never modify their operands.
type Grid struct {
	h, w int
	data []float64
}

// NewGrid creates an h by w grid of zeros.
func NewGrid(h, w int) *Grid {
	if h < 0 || w < 0 {
		h, w = 0, 0
	}
	return &Grid{h: h, w: w, data: make([]float64, h*w)}
}

// GridFromRows builds a grid from row slices, which must all share a length.
func GridFromRows(rows [][]float64) (*Grid, error) {
	h := len(rows)
	if h == 0 {
		return NewGrid(0, 0), nil
	}
	w := len(rows[0])
	g := NewGrid(h, w)
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("ragged rows: row 0 has %d samples, row %d has %d", w, y, len(row))
		}
		copy(g.data[y*w:(y+1)*w], row)
	}
	return g, nil
}

// Dims returns the grid's height and width.
func (g *Grid) Dims() (h, w int) { return g.h, g.w }

// At returns the sample at row y, column x.
func (g *Grid) At(y, x int) float64 { return g.data[y*g.w+x] }

// Set stores a sample at row y, column x.
func (g *Grid) Set(y, x int, v float64) { g.data[y*g.w+x] = v }

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.h, g.w)
	copy(out.data, g.data)
	return out
}

// apply returns a new grid with f applied to every sample.
func (g *Grid) apply(f func(float64) float64) *Grid {
	out := NewGrid(g.h, g.w)
	for i, v := range g.data {
		out.data[i] = f(v)
	}
	return out
}

// AddScalar returns g with c added to every sample.
func (g *Grid) AddScalar(c float64) *Grid {
	return g.apply(func(v float64) float64 { return v + c })
}

// Scale returns g with every sample multiplied by c.
func (g *Grid) Scale(c float64) *Grid {
	return g.apply(func(v float64) float64 { return v * c })
}

// Clip returns g with every sample clamped to [lo, hi].
func (g *Grid) Clip(lo, hi float64) *Grid {
	return g.apply(func(v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	})
}

// Invert returns 1 - g, the complement used to flip cold-is-bright scales.
func (g *Grid) Invert() *Grid {
	return g.apply(func(v float64) float64 { return 1 - v })
}

// Sqrt returns the elementwise square root.
func (g *Grid) Sqrt() *Grid {
	return g.apply(math.Sqrt)
}

// Normalize maps [lo, hi] linearly onto [0, 1] and clips the result, the
// contrast stretch every recipe is built from.
func (g *Grid) Normalize(lo, hi float64) *Grid {
	span := hi - lo
	return g.apply(func(v float64) float64 {
		n := (v - lo) / span
		return math.Min(math.Max(n, 0), 1)
	})
}

// Gamma applies gamma decoding, v^(1/gamma). Values above 1 lighten the
// image, below 1 darken it; 1 is the identity.
func (g *Grid) Gamma(gamma float64) *Grid {
	if gamma == 1 {
		return g.Clone()
	}
	inv := 1 / gamma
	return g.apply(func(v float64) float64 { return math.Pow(v, inv) })
}

// zip returns elementwise f(a, b), requiring matching dimensions.
func zip(a, b *Grid, f func(x, y float64) float64) (*Grid, error) {
	if a.h != b.h || a.w != b.w {
		return nil, fmt.Errorf("grid size mismatch: %dx%d vs %dx%d", a.h, a.w, b.h, b.w)
	}
	out := NewGrid(a.h, a.w)
	for i := range a.data {
		out.data[i] = f(a.data[i], b.data[i])
	}
	return out, nil
}

// Sub returns a - b elementwise.
func Sub(a, b *Grid) (*Grid, error) {
	return zip(a, b, func(x, y float64) float64 { return x - y })
}

// Max returns the elementwise maximum of a and b.
func Max(a, b *Grid) (*Grid, error) {
	return zip(a, b, math.Max)
}

// Min returns the elementwise minimum of a and b.
func Min(a, b *Grid) (*Grid, error) {
	return zip(a, b, math.Min)
}

// Image is an RGB raster with components in [0, 1], sharing one size.
type Image struct {
	Name    string
	R, G, B *Grid
}

// Dims returns the image's height and width.
func (im *Image) Dims() (h, w int) { return im.R.Dims() }
