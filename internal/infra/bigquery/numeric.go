package bigquery

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NUMERIC columns round-trip through *big.Rat; domain amounts are
// decimals. BigQuery NUMERIC has scale 9.
const numericScale = 9

func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func decimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, numericScale)
}
