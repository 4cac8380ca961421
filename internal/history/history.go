// Package history turns an unordered transaction collection into a
// chronologically ordered cumulative-balance series plus the display
// range a chart needs to place its baseline.
package history

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// Point is the running balance after one transaction is applied.
type Point struct {
	Date        string             `json:"date"`
	Balance     decimal.Decimal    `json:"balance"`
	Transaction domain.Transaction `json:"transaction"`
}

// Series is the ordered balance history with derived range metadata.
// Min and Max carry 10% padding; ZeroLine is the position of the zero
// baseline as a fraction in [0,1] from the bottom of the range.
type Series struct {
	Points   []Point         `json:"points"`
	Min      decimal.Decimal `json:"min"`
	Max      decimal.Decimal `json:"max"`
	ZeroLine float64         `json:"zero_line"`
}

const dateFormat = "2006-01-02"

var (
	floorMax = decimal.NewFromInt(1000)
	padRatio = decimal.RequireFromString("0.1")
)

// Aggregate walks the transactions in ascending date order (ties keep
// their input order) and accumulates a running balance seeded at zero.
// A type name equal to "credit" (case-insensitively) adds the amount;
// any other type subtracts it. Input order and contents are untouched.
func Aggregate(txs []domain.Transaction) Series {
	if len(txs) == 0 {
		return Series{
			Min:      decimal.Zero,
			Max:      floorMax,
			ZeroLine: 0.5,
		}
	}

	ordered := make([]domain.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	balance := decimal.Zero
	points := make([]Point, 0, len(ordered))
	for _, tx := range ordered {
		if strings.EqualFold(tx.TypeName, domain.TypeCredit) {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
		points = append(points, Point{
			Date:        tx.Date.Format(dateFormat),
			Balance:     balance,
			Transaction: tx,
		})
	}

	min, max := rangeOf(points)
	padding := max.Sub(min).Mul(padRatio)
	min = min.Sub(padding)
	max = max.Add(padding)

	zero := decimal.Zero
	if span := max.Sub(min); !span.IsZero() {
		zero = decimal.Zero.Sub(min).Div(span)
	}

	return Series{
		Points:   points,
		Min:      min,
		Max:      max,
		ZeroLine: zero.InexactFloat64(),
	}
}

// rangeOf floors the range at [0, 1000] so a small history still renders
// against a stable scale.
func rangeOf(points []Point) (min, max decimal.Decimal) {
	min = decimal.Zero
	max = floorMax
	for _, p := range points {
		if p.Balance.LessThan(min) {
			min = p.Balance
		}
		if p.Balance.GreaterThan(max) {
			max = p.Balance
		}
	}
	return min, max
}
