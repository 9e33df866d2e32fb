// Package sabr evaluates a SABR implied-volatility parameter model and its
// exact analytic adjoints at (expiry, tenor, strike, forward) points. The
// four parameter surfaces and the optional shift surface are sampled per
// call, the shift is added to strike and forward, and a pluggable
// closed-form formula does the rest.
package sabr

import (
	"fmt"

	"github.com/bcdannyboy/govol/smile"
	"github.com/bcdannyboy/govol/surface"
)

// Model is an immutable composition of the alpha, beta, rho and nu
// parameter surfaces, a shift surface and a volatility formula. The zero
// value is unusable; build models through NewModel or NewShiftedModel.
//
// Model is a comparable value: two models are equal iff their five surfaces
// and formula compare equal, and models can key maps. Surfaces participate
// in that comparison by their own Go comparability (surface.Constant by
// value, *surface.Grid by identity); models built from non-comparable
// surfaces such as surface.Func must not be compared.
//
// A Model is never mutated after construction and may be shared freely
// across goroutines.
type Model struct {
	alpha   surface.Surface
	beta    surface.Surface
	rho     surface.Surface
	nu      surface.Surface
	shift   surface.Surface
	formula smile.VolatilityFormula
}

// NewModel builds an unshifted model; a constant zero shift is substituted.
func NewModel(alpha, beta, rho, nu surface.Surface, formula smile.VolatilityFormula) (Model, error) {
	return newModel(alpha, beta, rho, nu, surface.Zero, formula)
}

// NewShiftedModel builds a model whose shift surface displaces strike and
// forward before every formula evaluation. A nil shift is rejected; use
// NewModel when there is no shift.
func NewShiftedModel(alpha, beta, rho, nu, shift surface.Surface, formula smile.VolatilityFormula) (Model, error) {
	if shift == nil {
		return Model{}, fmt.Errorf("sabr: shift surface must not be nil; use NewModel for an unshifted model")
	}
	return newModel(alpha, beta, rho, nu, shift, formula)
}

func newModel(alpha, beta, rho, nu, shift surface.Surface, formula smile.VolatilityFormula) (Model, error) {
	switch {
	case alpha == nil:
		return Model{}, fmt.Errorf("sabr: alpha surface must not be nil")
	case beta == nil:
		return Model{}, fmt.Errorf("sabr: beta surface must not be nil")
	case rho == nil:
		return Model{}, fmt.Errorf("sabr: rho surface must not be nil")
	case nu == nil:
		return Model{}, fmt.Errorf("sabr: nu surface must not be nil")
	case formula == nil:
		return Model{}, fmt.Errorf("sabr: volatility formula must not be nil")
	}
	return Model{alpha: alpha, beta: beta, rho: rho, nu: nu, shift: shift, formula: formula}, nil
}

// ParameterAt samples the four parameter surfaces at (expiry, tenor).
func (m Model) ParameterAt(expiry, tenor float64) smile.Point {
	return smile.Point{
		Alpha: m.alpha.ValueAt(expiry, tenor),
		Beta:  m.beta.ValueAt(expiry, tenor),
		Rho:   m.rho.ValueAt(expiry, tenor),
		Nu:    m.nu.ValueAt(expiry, tenor),
	}
}

// Alpha samples the alpha surface at (expiry, tenor).
func (m Model) Alpha(expiry, tenor float64) float64 { return m.alpha.ValueAt(expiry, tenor) }

// Beta samples the beta surface at (expiry, tenor).
func (m Model) Beta(expiry, tenor float64) float64 { return m.beta.ValueAt(expiry, tenor) }

// Rho samples the rho surface at (expiry, tenor).
func (m Model) Rho(expiry, tenor float64) float64 { return m.rho.ValueAt(expiry, tenor) }

// Nu samples the nu surface at (expiry, tenor).
func (m Model) Nu(expiry, tenor float64) float64 { return m.nu.ValueAt(expiry, tenor) }

// Shift samples the shift surface at (expiry, tenor).
func (m Model) Shift(expiry, tenor float64) float64 { return m.shift.ValueAt(expiry, tenor) }

// AlphaSurface returns the alpha surface.
func (m Model) AlphaSurface() surface.Surface { return m.alpha }

// BetaSurface returns the beta surface.
func (m Model) BetaSurface() surface.Surface { return m.beta }

// RhoSurface returns the rho surface.
func (m Model) RhoSurface() surface.Surface { return m.rho }

// NuSurface returns the nu surface.
func (m Model) NuSurface() surface.Surface { return m.nu }

// ShiftSurface returns the shift surface.
func (m Model) ShiftSurface() surface.Surface { return m.shift }

// Formula returns the volatility formula.
func (m Model) Formula() smile.VolatilityFormula { return m.formula }

// shifted samples the parameter point and shift at (expiry, tenor) and
// displaces strike and forward. The put/call flag is immaterial to implied
// volatility and fixed to call.
func (m Model) shifted(expiry, tenor, strike, forward float64) (smile.Option, float64, smile.Point) {
	p := m.ParameterAt(expiry, tenor)
	s := m.shift.ValueAt(expiry, tenor)
	opt := smile.Option{Strike: strike + s, Expiry: expiry, Call: true}
	return opt, forward + s, p
}

// Volatility returns the implied volatility at the given expiry, tenor,
// strike and forward. Formula domain errors propagate unchanged.
func (m Model) Volatility(expiry, tenor, strike, forward float64) (float64, error) {
	opt, fwd, p := m.shifted(expiry, tenor, strike, forward)
	return m.formula.Volatility(opt, fwd, p)
}

// VolatilityArray is the positional form of Volatility, taking
// [expiry, tenor, strike, forward].
func (m Model) VolatilityArray(in []float64) (float64, error) {
	if len(in) != 4 {
		return 0, fmt.Errorf("sabr: want [expiry, tenor, strike, forward], got %d values", len(in))
	}
	return m.Volatility(in[0], in[1], in[2], in[3])
}

// ModelAdjoint returns the 4 derivatives of the volatility with respect to
// alpha, beta, rho and nu, in that order.
func (m Model) ModelAdjoint(expiry, tenor, strike, forward float64) ([]float64, error) {
	opt, fwd, p := m.shifted(expiry, tenor, strike, forward)
	return m.formula.ModelAdjoint(opt, fwd, p)
}

// FullAdjoint returns 7 derivatives: alpha, beta, rho, nu, then forward,
// strike and expiry. Because the shift is an additive bijection evaluated
// at the same (expiry, tenor) and treated as constant, the forward, strike
// and expiry derivatives of the shifted formula are also the derivatives
// with respect to the caller's unshifted inputs.
func (m Model) FullAdjoint(expiry, tenor, strike, forward float64) ([]float64, error) {
	opt, fwd, p := m.shifted(expiry, tenor, strike, forward)
	return m.formula.FullAdjoint(opt, fwd, p)
}
