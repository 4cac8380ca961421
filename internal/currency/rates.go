package currency

import "github.com/shopspring/decimal"

// Rates is a sparse pairwise exchange-rate matrix: base code → target
// code → units of target per unit of base. It is neither symmetric nor
// complete; only a subset of pairs carry direct entries, and every base
// present maps to itself with rate 1.
type Rates map[string]map[string]decimal.Decimal

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultRates is the static snapshot shipped with the process. A live
// deployment would refresh these from a rate feed.
var DefaultRates = Rates{
	"INR": {
		"USD": d("0.012"),
		"EUR": d("0.011"),
		"GBP": d("0.0095"),
		"JPY": d("1.79"),
		"CAD": d("0.016"),
		"AUD": d("0.018"),
		"CHF": d("0.011"),
		"CNY": d("0.086"),
		"SGD": d("0.016"),
		"INR": d("1"),
	},
	"USD": {
		"INR": d("83.12"),
		"EUR": d("0.92"),
		"GBP": d("0.79"),
		"JPY": d("149.50"),
		"CAD": d("1.35"),
		"AUD": d("1.52"),
		"CHF": d("0.88"),
		"CNY": d("7.24"),
		"SGD": d("1.34"),
		"USD": d("1"),
	},
	"EUR": {
		"INR": d("90.45"),
		"USD": d("1.09"),
		"GBP": d("0.86"),
		"JPY": d("162.80"),
		"CAD": d("1.47"),
		"AUD": d("1.66"),
		"CHF": d("0.96"),
		"CNY": d("7.88"),
		"SGD": d("1.46"),
		"EUR": d("1"),
	},
}
