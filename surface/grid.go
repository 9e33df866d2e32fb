package surface

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Grid is a nodal surface on a rectangular (expiry x tenor) grid. Queries
// inside the node hull are interpolated bilinearly; queries outside it are
// extrapolated flat from the nearest edge. Values at nodes are reproduced
// exactly.
//
// Grid satisfies Surface through a pointer receiver, so two *Grid values
// compare equal only if they are the same instance.
type Grid struct {
	expiries []float64
	tenors   []float64
	values   [][]float64
	rows     []interp.PiecewiseLinear // one tenor interpolant per expiry row
}

// NewGrid builds a bilinear nodal surface. Both axes must be strictly
// increasing and values must hold one row per expiry with one entry per
// tenor.
func NewGrid(expiries, tenors []float64, values [][]float64) (*Grid, error) {
	if len(expiries) == 0 || len(tenors) == 0 {
		return nil, fmt.Errorf("surface: grid needs at least one node on each axis")
	}
	if err := checkIncreasing("expiry", expiries); err != nil {
		return nil, err
	}
	if err := checkIncreasing("tenor", tenors); err != nil {
		return nil, err
	}
	if len(values) != len(expiries) {
		return nil, fmt.Errorf("surface: got %d value rows for %d expiries", len(values), len(expiries))
	}
	g := &Grid{
		expiries: append([]float64(nil), expiries...),
		tenors:   append([]float64(nil), tenors...),
		values:   make([][]float64, len(values)),
	}
	for i, row := range values {
		if len(row) != len(tenors) {
			return nil, fmt.Errorf("surface: value row %d has %d entries for %d tenors", i, len(row), len(tenors))
		}
		g.values[i] = append([]float64(nil), row...)
	}
	if len(g.tenors) >= 2 {
		g.rows = make([]interp.PiecewiseLinear, len(g.expiries))
		for i := range g.values {
			if err := g.rows[i].Fit(g.tenors, g.values[i]); err != nil {
				return nil, fmt.Errorf("surface: fitting tenor row %d: %w", i, err)
			}
		}
	}
	return g, nil
}

// ValueAt returns the interpolated value at (expiry, tenor).
func (g *Grid) ValueAt(expiry, tenor float64) float64 {
	if len(g.expiries) == 1 {
		return g.rowValue(0, tenor)
	}
	col := make([]float64, len(g.expiries))
	for i := range g.expiries {
		col[i] = g.rowValue(i, tenor)
	}
	var pl interp.PiecewiseLinear
	// Axes were validated at construction, Fit cannot fail here.
	_ = pl.Fit(g.expiries, col)
	return pl.Predict(clamp(expiry, g.expiries[0], g.expiries[len(g.expiries)-1]))
}

func (g *Grid) rowValue(i int, tenor float64) float64 {
	if len(g.tenors) == 1 {
		return g.values[i][0]
	}
	return g.rows[i].Predict(clamp(tenor, g.tenors[0], g.tenors[len(g.tenors)-1]))
}

func checkIncreasing(name string, xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("surface: %s axis must be strictly increasing, got %v after %v", name, xs[i], xs[i-1])
		}
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
