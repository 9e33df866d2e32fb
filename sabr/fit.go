package sabr

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"

	"github.com/bcdannyboy/govol/smile"
)

// Quote is one observed implied volatility at a strike. A zero weight is
// treated as 1.
type Quote struct {
	Strike float64
	Vol    float64
	Weight float64
}

// Fitter calibrates alpha, rho and nu of a volatility formula to market
// quotes at a single expiry and forward, holding beta fixed as is market
// practice. The least-squares gradient is assembled from the formula's
// analytic model adjoint, so no finite differences are involved.
//
// Restarts adds random starts perturbed around the initial guess; Seed
// makes them reproducible.
type Fitter struct {
	Formula  smile.VolatilityFormula
	Expiry   float64
	Forward  float64
	Shift    float64
	Beta     float64
	Restarts int
	Seed     uint64
}

// Fit minimizes the weighted squared vol error over (alpha, rho, nu),
// starting from guess. The guess must satisfy alpha > 0, |rho| < 1 and
// nu > 0 so the bounding transform is invertible.
func (ft *Fitter) Fit(quotes []Quote, guess smile.Point) (smile.Point, error) {
	if ft.Formula == nil {
		return smile.Point{}, fmt.Errorf("sabr: fitter needs a volatility formula")
	}
	if len(quotes) == 0 {
		return smile.Point{}, fmt.Errorf("sabr: fitter needs at least one quote")
	}
	if !(guess.Alpha > 0) || math.Abs(guess.Rho) >= 1 || !(guess.Nu > 0) {
		return smile.Point{}, fmt.Errorf("sabr: guess (alpha=%v, rho=%v, nu=%v) outside the open parameter domain",
			guess.Alpha, guess.Rho, guess.Nu)
	}
	fwd := ft.Forward + ft.Shift
	// Every quote is evaluated once up front so domain problems surface as
	// errors instead of silently degrading the objective.
	for _, q := range quotes {
		opt := smile.Option{Strike: q.Strike + ft.Shift, Expiry: ft.Expiry, Call: true}
		if _, err := ft.Formula.Volatility(opt, fwd, smile.Point{Alpha: guess.Alpha, Beta: ft.Beta, Rho: guess.Rho, Nu: guess.Nu}); err != nil {
			return smile.Point{}, fmt.Errorf("sabr: quote at strike %v: %w", q.Strike, err)
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := ft.decode(x)
			sum := 0.0
			for _, q := range quotes {
				opt := smile.Option{Strike: q.Strike + ft.Shift, Expiry: ft.Expiry, Call: true}
				v, err := ft.Formula.Volatility(opt, fwd, p)
				if err != nil {
					return math.Inf(1)
				}
				r := v - q.Vol
				sum += weight(q) * r * r
			}
			return sum
		},
		Grad: func(grad, x []float64) {
			p := ft.decode(x)
			// Chain rule through the bounding transform:
			// alpha = e^x0, rho = tanh(x1), nu = e^x2.
			dAlpha := p.Alpha
			dRho := 1 - p.Rho*p.Rho
			dNu := p.Nu
			grad[0], grad[1], grad[2] = 0, 0, 0
			for _, q := range quotes {
				opt := smile.Option{Strike: q.Strike + ft.Shift, Expiry: ft.Expiry, Call: true}
				v, err := ft.Formula.Volatility(opt, fwd, p)
				if err != nil {
					return
				}
				adj, err := ft.Formula.ModelAdjoint(opt, fwd, p)
				if err != nil {
					return
				}
				c := 2 * weight(q) * (v - q.Vol)
				grad[0] += c * adj[0] * dAlpha
				grad[1] += c * adj[2] * dRho
				grad[2] += c * adj[3] * dNu
			}
		},
	}

	start := []float64{math.Log(guess.Alpha), math.Atanh(guess.Rho), math.Log(guess.Nu)}
	rng := rand.New(rand.NewSource(ft.Seed))
	var (
		best    []float64
		bestF   = math.Inf(1)
		lastErr error
	)
	for attempt := 0; attempt <= ft.Restarts; attempt++ {
		x0 := append([]float64(nil), start...)
		if attempt > 0 {
			for i := range x0 {
				x0[i] += 0.5 * rng.NormFloat64()
			}
		}
		result, err := optimize.Minimize(problem, x0, nil, &optimize.LBFGS{})
		if err != nil {
			lastErr = err
			continue
		}
		if result.F < bestF {
			bestF = result.F
			best = result.X
		}
	}
	if best == nil {
		return smile.Point{}, fmt.Errorf("sabr: smile fit failed: %w", lastErr)
	}
	return ft.decode(best), nil
}

func (ft *Fitter) decode(x []float64) smile.Point {
	return smile.Point{
		Alpha: math.Exp(x[0]),
		Beta:  ft.Beta,
		Rho:   math.Tanh(x[1]),
		Nu:    math.Exp(x[2]),
	}
}

func weight(q Quote) float64 {
	if q.Weight == 0 {
		return 1
	}
	return q.Weight
}
