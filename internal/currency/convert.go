package currency

import "github.com/shopspring/decimal"

// Bridge is the reference currency used for two-hop conversion when no
// direct rate exists.
const Bridge = "USD"

// Convert converts amount from one currency to another using the table.
//
// Same currency is an exact identity. A direct entry is applied as-is.
// Otherwise the amount is bridged through USD: from→USD then USD→to,
// substituting a rate of 1 for any missing leg. The substitution makes
// the bridge an approximation that can be materially wrong when a leg is
// absent from the table; callers relying on precise figures must ensure
// both legs exist.
func (r Rates) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}

	if rate, ok := r[from][to]; ok {
		return amount.Mul(rate)
	}

	toBridge := decimal.NewFromInt(1)
	if rate, ok := r[from][Bridge]; ok {
		toBridge = rate
	}
	fromBridge := decimal.NewFromInt(1)
	if rate, ok := r[Bridge][to]; ok {
		fromBridge = rate
	}
	return amount.Mul(toBridge).Mul(fromBridge)
}

// HasDirect reports whether the table carries a direct from→to entry.
func (r Rates) HasDirect(from, to string) bool {
	_, ok := r[from][to]
	return ok
}
