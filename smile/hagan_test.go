package smile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats/scalar"
)

func assertClose(t *testing.T, want, got float64, what string) {
	t.Helper()
	require.Truef(t, scalar.EqualWithinAbsOrRel(want, got, 1e-8, 1e-5),
		"%s: want %v, got %v", what, want, got)
}

// At the money with beta=1 the expansion collapses to
// alpha*(1 + T*(rho*nu*alpha/4 + (2-3*rho^2)*nu^2/24)).
func TestHaganATMBetaOne(t *testing.T) {
	p := Point{Alpha: 0.2, Beta: 1, Rho: -0.5, Nu: 0.5}
	vol, err := Hagan{}.Volatility(Option{Strike: 1.05, Expiry: 2, Call: true}, 1.05, p)
	require.NoError(t, err)
	require.InDelta(t, 0.20020833333333332, vol, 1e-14)
}

func TestHaganFullAdjointMatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		name    string
		forward float64
		strike  float64
		expiry  float64
		p       Point
	}{
		{"lognormal itm", 1.05, 1.1, 2, Point{Alpha: 0.2, Beta: 1, Rho: -0.5, Nu: 0.5}},
		{"cev otm", 1.05, 1.1, 2, Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}},
		{"deep itm", 1.3, 0.8, 5, Point{Alpha: 0.3, Beta: 0.7, Rho: 0.2, Nu: 0.6}},
		{"near-normal", 0.9, 1.2, 1.5, Point{Alpha: 0.3, Beta: 0.1, Rho: -0.8, Nu: 0.9}},
		{"short expiry", 1, 1.1, 0.05, Point{Alpha: 0.25, Beta: 0.9, Rho: 0.4, Nu: 0.8}},
	}
	names := []string{"alpha", "beta", "rho", "nu", "forward", "strike", "expiry"}
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-5}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			adj, err := Hagan{}.FullAdjoint(Option{Strike: tc.strike, Expiry: tc.expiry, Call: true}, tc.forward, tc.p)
			require.NoError(t, err)
			require.Len(t, adj, 7)

			f := func(x []float64) float64 {
				p := Point{Alpha: x[0], Beta: x[1], Rho: x[2], Nu: x[3]}
				v, err := Hagan{}.Volatility(Option{Strike: x[5], Expiry: x[6], Call: true}, x[4], p)
				require.NoError(t, err)
				return v
			}
			x := []float64{tc.p.Alpha, tc.p.Beta, tc.p.Rho, tc.p.Nu, tc.forward, tc.strike, tc.expiry}
			grad := fd.Gradient(nil, f, x, settings)
			for i := range adj {
				assertClose(t, grad[i], adj[i], names[i])
			}
		})
	}
}

// At the money z is identically zero under parameter bumps, so the series
// branch stays in force and central differences are clean for the model
// parameters and expiry. Forward and strike bumps leave the branch, so
// those two use a wider step.
func TestHaganAdjointAtTheMoney(t *testing.T) {
	p := Point{Alpha: 0.25, Beta: 0.7, Rho: 0.3, Nu: 0.45}
	opt := Option{Strike: 1, Expiry: 3, Call: true}
	adj, err := Hagan{}.FullAdjoint(opt, 1, p)
	require.NoError(t, err)

	volAt := func(q Point, fwd, strike float64) float64 {
		v, err := Hagan{}.Volatility(Option{Strike: strike, Expiry: opt.Expiry, Call: true}, fwd, q)
		require.NoError(t, err)
		return v
	}

	const h = 1e-4
	bumpF := (volAt(p, 1+h, 1) - volAt(p, 1-h, 1)) / (2 * h)
	bumpK := (volAt(p, 1, 1+h) - volAt(p, 1, 1-h)) / (2 * h)
	require.Truef(t, scalar.EqualWithinAbsOrRel(bumpF, adj[4], 1e-6, 1e-4), "forward: want %v, got %v", bumpF, adj[4])
	require.Truef(t, scalar.EqualWithinAbsOrRel(bumpK, adj[5], 1e-6, 1e-4), "strike: want %v, got %v", bumpK, adj[5])

	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
	dAlpha := fd.Derivative(func(a float64) float64 { return volAt(Point{Alpha: a, Beta: p.Beta, Rho: p.Rho, Nu: p.Nu}, 1, 1) }, p.Alpha, settings)
	dRho := fd.Derivative(func(r float64) float64 { return volAt(Point{Alpha: p.Alpha, Beta: p.Beta, Rho: r, Nu: p.Nu}, 1, 1) }, p.Rho, settings)
	dNu := fd.Derivative(func(n float64) float64 { return volAt(Point{Alpha: p.Alpha, Beta: p.Beta, Rho: p.Rho, Nu: n}, 1, 1) }, p.Nu, settings)
	assertClose(t, dAlpha, adj[0], "alpha")
	assertClose(t, dRho, adj[2], "rho")
	assertClose(t, dNu, adj[3], "nu")
}

func TestHaganModelAdjointIsFullAdjointHead(t *testing.T) {
	p := Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}
	opt := Option{Strike: 1.1, Expiry: 2, Call: true}
	model, err := Hagan{}.ModelAdjoint(opt, 1.05, p)
	require.NoError(t, err)
	require.Len(t, model, 4)
	full, err := Hagan{}.FullAdjoint(opt, 1.05, p)
	require.NoError(t, err)
	assert.Equal(t, full[:4], model)
}

func TestHaganVolatilityContinuousAcrossATM(t *testing.T) {
	p := Point{Alpha: 0.2, Beta: 0.6, Rho: -0.3, Nu: 0.5}
	atm, err := Hagan{}.Volatility(Option{Strike: 1, Expiry: 2, Call: true}, 1, p)
	require.NoError(t, err)
	near, err := Hagan{}.Volatility(Option{Strike: 1 + 1e-9, Expiry: 2, Call: true}, 1, p)
	require.NoError(t, err)
	require.InDelta(t, atm, near, 1e-9)
}

func TestHaganFloorsTinyStrikes(t *testing.T) {
	p := Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}
	zero, err := Hagan{}.Volatility(Option{Strike: 0, Expiry: 2, Call: true}, 1, p)
	require.NoError(t, err)
	require.True(t, zero > 0 && !math.IsInf(zero, 0))
	tiny, err := Hagan{}.Volatility(Option{Strike: 1e-9, Expiry: 2, Call: true}, 1, p)
	require.NoError(t, err)
	// Both strikes sit below the forward*1e-6 floor and evaluate there.
	require.Equal(t, zero, tiny)
}

func TestHaganPutCallFlagIrrelevant(t *testing.T) {
	p := Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}
	call, err := Hagan{}.Volatility(Option{Strike: 1.1, Expiry: 2, Call: true}, 1.05, p)
	require.NoError(t, err)
	put, err := Hagan{}.Volatility(Option{Strike: 1.1, Expiry: 2, Call: false}, 1.05, p)
	require.NoError(t, err)
	require.Equal(t, call, put)
}

func TestHaganRejectsBadInputs(t *testing.T) {
	good := Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}
	opt := Option{Strike: 1.1, Expiry: 2, Call: true}
	cases := []struct {
		name    string
		opt     Option
		forward float64
		p       Point
	}{
		{"zero forward", opt, 0, good},
		{"negative forward", opt, -0.01, good},
		{"nan forward", opt, math.NaN(), good},
		{"inf forward", opt, math.Inf(1), good},
		{"nan strike", Option{Strike: math.NaN(), Expiry: 2}, 1.05, good},
		{"negative expiry", Option{Strike: 1.1, Expiry: -1}, 1.05, good},
		{"zero alpha", opt, 1.05, Point{Alpha: 0, Beta: 0.5, Rho: 0, Nu: 0.4}},
		{"rho above one", opt, 1.05, Point{Alpha: 0.2, Beta: 0.5, Rho: 1.5, Nu: 0.4}},
		{"negative nu", opt, 1.05, Point{Alpha: 0.2, Beta: 0.5, Rho: 0, Nu: -0.1}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Hagan{}.Volatility(tc.opt, tc.forward, tc.p)
			require.Error(t, err)
			_, err = Hagan{}.ModelAdjoint(tc.opt, tc.forward, tc.p)
			require.Error(t, err)
			_, err = Hagan{}.FullAdjoint(tc.opt, tc.forward, tc.p)
			require.Error(t, err)
		})
	}
}

func TestNewPoint(t *testing.T) {
	p, err := NewPoint(0.2, 0.5, -0.25, 0.4)
	require.NoError(t, err)
	require.Equal(t, Point{Alpha: 0.2, Beta: 0.5, Rho: -0.25, Nu: 0.4}, p)

	for _, tc := range []struct {
		name                 string
		alpha, beta, rho, nu float64
	}{
		{"zero alpha", 0, 0.5, 0, 0.4},
		{"negative alpha", -0.1, 0.5, 0, 0.4},
		{"negative beta", 0.2, -0.1, 0, 0.4},
		{"rho below minus one", 0.2, 0.5, -1.5, 0.4},
		{"negative nu", 0.2, 0.5, 0, -0.4},
		{"nan rho", 0.2, 0.5, math.NaN(), 0.4},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPoint(tc.alpha, tc.beta, tc.rho, tc.nu)
			require.Error(t, err)
		})
	}
}
