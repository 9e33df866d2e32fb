package black

import "github.com/bcdannyboy/govol/sabr"

// ModelPrice prices a European option off a SABR parameter model. The
// implied volatility comes from the model; the model's shift is then
// applied to forward and strike so the Black formula prices in the same
// displaced coordinates the smile was evaluated in. This is the standard
// shifted-Black convention for negative rates.
func ModelPrice(m sabr.Model, expiry, tenor, strike, forward, discount float64, call bool) (float64, error) {
	vol, err := m.Volatility(expiry, tenor, strike, forward)
	if err != nil {
		return 0, err
	}
	s := m.Shift(expiry, tenor)
	return Price(forward+s, strike+s, expiry, vol, discount, call)
}
