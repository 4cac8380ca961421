// Package currency holds the supported-currency reference set and the
// conversion engine. Everything here is pure: the rate table and the
// target currency are explicit arguments, never ambient state.
package currency

// Currency describes one supported display currency.
type Currency struct {
	Code   string `json:"code"` // 3-letter ISO code
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Locale string `json:"locale"`
}

// Supported is the immutable reference set. The first entry is the
// process-wide default.
var Supported = []Currency{
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹", Locale: "en-IN"},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Locale: "en-US"},
	{Code: "EUR", Name: "Euro", Symbol: "€", Locale: "de-DE"},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Locale: "en-GB"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Locale: "ja-JP"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", Locale: "en-CA"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", Locale: "en-AU"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", Locale: "de-CH"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Locale: "zh-CN"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$", Locale: "en-SG"},
}

// Default is the base currency ledger amounts are stored in.
var Default = Supported[0]

// ByCode returns the currency with the given code, or Default when the
// code is not in the supported set.
func ByCode(code string) Currency {
	for _, c := range Supported {
		if c.Code == code {
			return c
		}
	}
	return Default
}
