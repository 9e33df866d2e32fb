package smile

// VolatilityFormula is a pluggable closed-form smile model. Implementations
// compute an implied volatility and its exact analytic partial derivatives;
// none of them may fall back to finite differences.
//
// The forward and strike handed to a formula are already displaced by any
// shift the caller applies; formulas never apply shifts themselves and may
// reject non-positive forwards.
//
// Adjoint ordering is a contract callers index into positionally:
// ModelAdjoint returns 4 derivatives in the order alpha, beta, rho, nu;
// FullAdjoint returns 7: alpha, beta, rho, nu, forward, strike, expiry.
type VolatilityFormula interface {
	Volatility(opt Option, forward float64, p Point) (float64, error)
	ModelAdjoint(opt Option, forward float64, p Point) ([]float64, error)
	FullAdjoint(opt Option, forward float64, p Point) ([]float64, error)
}
