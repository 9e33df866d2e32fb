// Package black prices European options on a forward with the Black-76
// formula and turns SABR model volatilities into prices and greeks.
package black

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

func checkInputs(forward, strike, expiry, vol, discount float64) error {
	switch {
	case math.IsNaN(forward) || math.IsInf(forward, 0) || forward <= 0:
		return fmt.Errorf("black: forward must be positive and finite, got %v", forward)
	case math.IsNaN(strike) || math.IsInf(strike, 0) || strike <= 0:
		return fmt.Errorf("black: strike must be positive and finite, got %v", strike)
	case math.IsNaN(expiry) || math.IsInf(expiry, 0) || expiry < 0:
		return fmt.Errorf("black: expiry must be non-negative and finite, got %v", expiry)
	case math.IsNaN(vol) || math.IsInf(vol, 0) || vol < 0:
		return fmt.Errorf("black: volatility must be non-negative and finite, got %v", vol)
	case math.IsNaN(discount) || math.IsInf(discount, 0) || discount <= 0:
		return fmt.Errorf("black: discount factor must be positive and finite, got %v", discount)
	}
	return nil
}

func d1d2(forward, strike, expiry, vol float64) (float64, float64) {
	sqrtT := math.Sqrt(expiry)
	d1 := (math.Log(forward/strike) + 0.5*vol*vol*expiry) / (vol * sqrtT)
	return d1, d1 - vol*sqrtT
}

// Price returns the discounted Black-76 price of a European option on a
// forward. Zero expiry or zero volatility collapses to discounted
// intrinsic value.
func Price(forward, strike, expiry, vol, discount float64, call bool) (float64, error) {
	if err := checkInputs(forward, strike, expiry, vol, discount); err != nil {
		return 0, err
	}
	if expiry == 0 || vol == 0 {
		if call {
			return discount * math.Max(forward-strike, 0), nil
		}
		return discount * math.Max(strike-forward, 0), nil
	}
	d1, d2 := d1d2(forward, strike, expiry, vol)
	if call {
		return discount * (forward*stdNormal.CDF(d1) - strike*stdNormal.CDF(d2)), nil
	}
	return discount * (strike*stdNormal.CDF(-d2) - forward*stdNormal.CDF(-d1)), nil
}

// Delta returns the discounted sensitivity of the price to the forward.
func Delta(forward, strike, expiry, vol, discount float64, call bool) (float64, error) {
	if err := checkInputs(forward, strike, expiry, vol, discount); err != nil {
		return 0, err
	}
	if expiry == 0 || vol == 0 {
		return 0, fmt.Errorf("black: delta undefined at zero expiry or volatility")
	}
	d1, _ := d1d2(forward, strike, expiry, vol)
	if call {
		return discount * stdNormal.CDF(d1), nil
	}
	return discount * (stdNormal.CDF(d1) - 1), nil
}

// Gamma returns the second derivative of the price with respect to the
// forward. It is put/call symmetric.
func Gamma(forward, strike, expiry, vol, discount float64) (float64, error) {
	if err := checkInputs(forward, strike, expiry, vol, discount); err != nil {
		return 0, err
	}
	if expiry == 0 || vol == 0 {
		return 0, fmt.Errorf("black: gamma undefined at zero expiry or volatility")
	}
	d1, _ := d1d2(forward, strike, expiry, vol)
	return discount * stdNormal.Prob(d1) / (forward * vol * math.Sqrt(expiry)), nil
}

// Vega returns the derivative of the price with respect to the implied
// volatility. It is put/call symmetric.
func Vega(forward, strike, expiry, vol, discount float64) (float64, error) {
	if err := checkInputs(forward, strike, expiry, vol, discount); err != nil {
		return 0, err
	}
	if expiry == 0 || vol == 0 {
		return 0, fmt.Errorf("black: vega undefined at zero expiry or volatility")
	}
	d1, _ := d1d2(forward, strike, expiry, vol)
	return discount * forward * stdNormal.Prob(d1) * math.Sqrt(expiry), nil
}
