package composite

import (
	"math"
	"testing"
)

func mustGrid(t *testing.T, rows [][]float64) *Grid {
	t.Helper()
	g, err := GridFromRows(rows)
	if err != nil {
		t.Fatalf("GridFromRows() error = %v", err)
	}
	return g
}

func almost(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func TestGridFromRows(t *testing.T) {
	g := mustGrid(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	h, w := g.Dims()
	if h != 2 || w != 3 {
		t.Fatalf("Dims() = %dx%d, want 2x3", h, w)
	}
	if got := g.At(1, 2); got != 6 {
		t.Errorf("At(1,2) = %v, want 6", got)
	}

	if _, err := GridFromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("GridFromRows() with ragged rows succeeded, want error")
	}
}

func TestGrid_Clone(t *testing.T) {
	g := mustGrid(t, [][]float64{{1, 2}})
	c := g.Clone()
	c.Set(0, 0, 99)
	if got := g.At(0, 0); got != 1 {
		t.Errorf("original modified through clone: At(0,0) = %v, want 1", got)
	}
}

func TestGrid_Elementwise(t *testing.T) {
	g := mustGrid(t, [][]float64{{0, 0.25}, {1, 4}})

	tests := []struct {
		name string
		got  *Grid
		want [][]float64
	}{
		{"AddScalar", g.AddScalar(1), [][]float64{{1, 1.25}, {2, 5}}},
		{"Scale", g.Scale(2), [][]float64{{0, 0.5}, {2, 8}}},
		{"Clip", g.Clip(0.2, 1), [][]float64{{0.2, 0.25}, {1, 1}}},
		{"Invert", g.Invert(), [][]float64{{1, 0.75}, {0, -3}}},
		{"Sqrt", g.Sqrt(), [][]float64{{0, 0.5}, {1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for y, row := range tt.want {
				for x, want := range row {
					if got := tt.got.At(y, x); !almost(got, want) {
						t.Errorf("%s At(%d,%d) = %v, want %v", tt.name, y, x, got, want)
					}
				}
			}
		})
	}

	// Operands stay untouched.
	if got := g.At(0, 1); got != 0.25 {
		t.Errorf("operand modified: At(0,1) = %v, want 0.25", got)
	}
}

func TestGrid_Normalize(t *testing.T) {
	g := mustGrid(t, [][]float64{{-10, 0, 5, 10, 30}})
	n := g.Normalize(0, 10)
	want := []float64{0, 0, 0.5, 1, 1}
	for x, w := range want {
		if got := n.At(0, x); !almost(got, w) {
			t.Errorf("Normalize() At(0,%d) = %v, want %v", x, got, w)
		}
	}
}

func TestGrid_Gamma(t *testing.T) {
	g := mustGrid(t, [][]float64{{0.25}})

	if got, want := g.Gamma(2).At(0, 0), 0.5; !almost(got, want) {
		t.Errorf("Gamma(2) = %v, want %v", got, want)
	}
	if got := g.Gamma(1).At(0, 0); got != 0.25 {
		t.Errorf("Gamma(1) = %v, want 0.25", got)
	}

	// Gamma(1) hands back a copy, not the operand.
	c := g.Gamma(1)
	c.Set(0, 0, 9)
	if got := g.At(0, 0); got != 0.25 {
		t.Errorf("operand modified through Gamma(1): %v, want 0.25", got)
	}
}

func TestGrid_Zip(t *testing.T) {
	a := mustGrid(t, [][]float64{{5, 2}})
	b := mustGrid(t, [][]float64{{3, 4}})

	sub, err := Sub(a, b)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if sub.At(0, 0) != 2 || sub.At(0, 1) != -2 {
		t.Errorf("Sub() = [%v %v], want [2 -2]", sub.At(0, 0), sub.At(0, 1))
	}

	max, err := Max(a, b)
	if err != nil {
		t.Fatalf("Max() error = %v", err)
	}
	if max.At(0, 0) != 5 || max.At(0, 1) != 4 {
		t.Errorf("Max() = [%v %v], want [5 4]", max.At(0, 0), max.At(0, 1))
	}

	min, err := Min(a, b)
	if err != nil {
		t.Fatalf("Min() error = %v", err)
	}
	if min.At(0, 0) != 3 || min.At(0, 1) != 2 {
		t.Errorf("Min() = [%v %v], want [3 2]", min.At(0, 0), min.At(0, 1))
	}

	c := mustGrid(t, [][]float64{{1}})
	if _, err := Sub(a, c); err == nil {
		t.Error("Sub() with mismatched sizes succeeded, want error")
	}
}
