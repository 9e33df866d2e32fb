package smile

import (
	"fmt"
	"math"
)

const (
	// Strikes below forward*cutoffMoneyness are floored there, so zero and
	// tiny positive strikes stay inside the formula's domain. Strike
	// derivatives then refer to the floored strike.
	cutoffMoneyness = 1e-6
	// Below this |z| the z/x(z) ratio switches to its series expansion.
	smallZ = 1e-6
	// Above 1-rhoEps the z/x term uses its rho->1 limit.
	rhoEps = 1e-8
)

// Hagan is the lognormal SABR implied volatility approximation of Hagan,
// Kumar, Lesniewski and Woodward (2002), with all adjoints derived
// analytically from the same algebraic expansion used for the value.
//
// Hagan is stateless; the zero value is ready to use and all Hagan values
// compare equal, so it composes into value types whose equality matters.
type Hagan struct{}

// Volatility returns the Hagan approximation of the implied volatility.
func (h Hagan) Volatility(opt Option, forward float64, p Point) (float64, error) {
	a, err := haganEval(opt, forward, p)
	if err != nil {
		return 0, err
	}
	return a.vol, nil
}

// ModelAdjoint returns the derivatives of the volatility with respect to
// alpha, beta, rho and nu, in that order.
func (h Hagan) ModelAdjoint(opt Option, forward float64, p Point) ([]float64, error) {
	a, err := haganEval(opt, forward, p)
	if err != nil {
		return nil, err
	}
	return []float64{a.dAlpha, a.dBeta, a.dRho, a.dNu}, nil
}

// FullAdjoint returns the model adjoint followed by the derivatives with
// respect to forward, strike and expiry.
func (h Hagan) FullAdjoint(opt Option, forward float64, p Point) ([]float64, error) {
	a, err := haganEval(opt, forward, p)
	if err != nil {
		return nil, err
	}
	return []float64{a.dAlpha, a.dBeta, a.dRho, a.dNu, a.dForward, a.dStrike, a.dExpiry}, nil
}

type haganAdjoint struct {
	vol      float64
	dAlpha   float64
	dBeta    float64
	dRho     float64
	dNu      float64
	dForward float64
	dStrike  float64
	dExpiry  float64
}

func haganCheck(opt Option, forward float64, p Point) error {
	if math.IsNaN(forward) || math.IsInf(forward, 0) || forward <= 0 {
		return fmt.Errorf("smile: forward must be positive and finite after shifting, got %v", forward)
	}
	if math.IsNaN(opt.Strike) || math.IsInf(opt.Strike, 0) {
		return fmt.Errorf("smile: strike must be finite, got %v", opt.Strike)
	}
	if math.IsNaN(opt.Expiry) || math.IsInf(opt.Expiry, 0) || opt.Expiry < 0 {
		return fmt.Errorf("smile: expiry must be non-negative and finite, got %v", opt.Expiry)
	}
	return p.validate()
}

// haganEval computes the volatility and every partial derivative in one
// pass. The expansion is factored as
//
//	sigma = A * (z/x) * C
//	A = alpha / ((F*K)^(b/2) * E),  b = 1-beta
//	E = 1 + b^2 L^2/24 + b^4 L^4/1920,  L = ln(F/K)
//	z = (nu/alpha) (F*K)^(b/2) L
//	x = ln((sqrt(1-2 rho z+z^2)+z-rho)/(1-rho))
//	C = 1 + T (S1+S2+S3)
//	S1 = b^2 alpha^2/(24 (F*K)^b)
//	S2 = rho beta nu alpha/(4 (F*K)^(b/2))
//	S3 = (2-3 rho^2) nu^2/24
//
// and each factor's partials are chained exactly.
func haganEval(opt Option, forward float64, p Point) (haganAdjoint, error) {
	if err := haganCheck(opt, forward, p); err != nil {
		return haganAdjoint{}, err
	}
	f := forward
	k := opt.Strike
	if cut := f * cutoffMoneyness; k <= cut {
		k = cut
	}
	t := opt.Expiry
	alpha, beta, rho, nu := p.Alpha, p.Beta, p.Rho, p.Nu

	b := 1 - beta
	lnFK := math.Log(f / k)
	lnP := math.Log(f * k)
	fkb := math.Pow(f*k, b/2) // (F*K)^((1-beta)/2)
	pb := fkb * fkb           // (F*K)^(1-beta)

	// Denominator factor A = alpha/(fkb*E) and its partials.
	eL := b*b*lnFK/12 + b*b*b*b*lnFK*lnFK*lnFK/480
	eB := -(b*lnFK*lnFK/12 + b*b*b*lnFK*lnFK*lnFK*lnFK/480) // dE/dbeta = -dE/db
	e := 1 + b*b*lnFK*lnFK/24 + b*b*b*b*lnFK*lnFK*lnFK*lnFK/1920
	d := fkb * e
	dF := fkb*(b/2)/f*e + fkb*eL/f
	dK := fkb*(b/2)/k*e - fkb*eL/k
	dB := -fkb*lnP/2*e + fkb*eB
	aFac := alpha / d
	aAlpha := 1 / d
	aF := -alpha * dF / (d * d)
	aK := -alpha * dK / (d * d)
	aB := -alpha * dB / (d * d)

	// z and its partials.
	z := nu / alpha * fkb * lnFK
	zAlpha := -z / alpha
	zNu := fkb * lnFK / alpha
	zF := nu / alpha * fkb * ((b/2)*lnFK + 1) / f
	zK := nu / alpha * fkb * ((b/2)*lnFK - 1) / k
	zB := -z * lnP / 2

	// zx = z/x(z) with partials in z and rho.
	var zx, zxZ, zxRho float64
	switch {
	case math.Abs(z) < smallZ:
		// Series of z/x(z) about z=0; smooth across the ATM point.
		zx = 1 - rho*z/2 + (2-3*rho*rho)*z*z/12
		zxZ = -rho/2 + (2-3*rho*rho)*z/6
		zxRho = -z/2 - rho*z*z/2
	case 1-rho < rhoEps:
		if z >= 1 {
			return haganAdjoint{}, fmt.Errorf("smile: sabr expansion undefined for rho=%v, z=%v", rho, z)
		}
		// rho -> 1 limit: x = -ln(1-z), dx/drho = z^2/(2(1-z)^2).
		x := -math.Log(1 - z)
		xZ := 1 / (1 - z)
		xRho := z * z / (2 * (1 - z) * (1 - z))
		zx = z / x
		zxZ = (x - z*xZ) / (x * x)
		zxRho = -z * xRho / (x * x)
	default:
		sq := math.Sqrt(1 - 2*rho*z + z*z)
		x := math.Log((sq + z - rho) / (1 - rho))
		xZ := 1 / sq
		xRho := (-z/sq-1)/(sq+z-rho) + 1/(1-rho)
		zx = z / x
		zxZ = (x - z*xZ) / (x * x)
		zxRho = -z * xRho / (x * x)
	}

	// Expiry correction C = 1 + T*(s1+s2+s3) and its partials.
	s1 := b * b * alpha * alpha / (24 * pb)
	s2 := rho * beta * nu * alpha / (4 * fkb)
	s3 := (2 - 3*rho*rho) * nu * nu / 24
	s := s1 + s2 + s3
	c := 1 + t*s
	cAlpha := t * (2*s1/alpha + s2/alpha)
	cB := t * (-(alpha*alpha/24)/pb*b*(2-b*lnP) + rho*nu*alpha/(4*fkb) + s2*lnP/2)
	cRho := t * (beta*nu*alpha/(4*fkb) - rho*nu*nu/4)
	cNu := t * (rho*beta*alpha/(4*fkb) + (2-3*rho*rho)*nu/12)
	cF := -t * (s1*b + s2*b/2) / f
	cK := -t * (s1*b + s2*b/2) / k

	vol := aFac * zx * c
	return haganAdjoint{
		vol:      vol,
		dAlpha:   aAlpha*zx*c + aFac*zxZ*zAlpha*c + aFac*zx*cAlpha,
		dBeta:    aB*zx*c + aFac*zxZ*zB*c + aFac*zx*cB,
		dRho:     aFac*zxRho*c + aFac*zx*cRho,
		dNu:      aFac*zxZ*zNu*c + aFac*zx*cNu,
		dForward: aF*zx*c + aFac*zxZ*zF*c + aFac*zx*cF,
		dStrike:  aK*zx*c + aFac*zxZ*zK*c + aFac*zx*cK,
		dExpiry:  aFac * zx * s,
	}, nil
}
