package smile

import (
	"fmt"
	"math"
)

// Point bundles the SABR parameters sampled at one (expiry, tenor)
// location. It is a plain immutable value with no identity beyond its four
// fields. A struct literal is fine for internal plumbing; NewPoint is for
// callers that want the usual parameter ranges enforced.
type Point struct {
	Alpha float64
	Beta  float64
	Rho   float64
	Nu    float64
}

// NewPoint validates alpha > 0, beta >= 0, rho in [-1, 1] and nu >= 0.
func NewPoint(alpha, beta, rho, nu float64) (Point, error) {
	p := Point{Alpha: alpha, Beta: beta, Rho: rho, Nu: nu}
	if err := p.validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

func (p Point) validate() error {
	switch {
	case math.IsNaN(p.Alpha) || math.IsInf(p.Alpha, 0) || p.Alpha <= 0:
		return fmt.Errorf("smile: alpha must be positive and finite, got %v", p.Alpha)
	case math.IsNaN(p.Beta) || math.IsInf(p.Beta, 0) || p.Beta < 0:
		return fmt.Errorf("smile: beta must be non-negative and finite, got %v", p.Beta)
	case math.IsNaN(p.Rho) || p.Rho < -1 || p.Rho > 1:
		return fmt.Errorf("smile: rho must be in [-1, 1], got %v", p.Rho)
	case math.IsNaN(p.Nu) || math.IsInf(p.Nu, 0) || p.Nu < 0:
		return fmt.Errorf("smile: nu must be non-negative and finite, got %v", p.Nu)
	}
	return nil
}

// Option describes a European vanilla option by strike, time to expiry in
// years and a put/call flag. The flag does not change implied volatility,
// which is put/call symmetric at a given strike and forward; it matters only
// to consumers that price off the volatility.
type Option struct {
	Strike float64
	Expiry float64
	Call   bool
}
