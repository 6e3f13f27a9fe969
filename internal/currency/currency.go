// Package currency converts amounts between currencies using a static table
// of rates relative to the US dollar.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is an ISO 4217 style currency code.
type Code string

// USD is the base of the rate table and the fallback for unknown codes.
const USD Code = "USD"

func (c Code) String() string {
	return string(c)
}

// Parse reports whether s names a currency in the table.
func Parse(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := usdRates[c]
	return c, ok
}

// Normalize returns the currency named by s, or USD when it is unknown.
func Normalize(s string) Code {
	if c, ok := Parse(s); ok {
		return c
	}
	return USD
}

// Rate returns units of c per US dollar. Unknown codes return 1.
func Rate(c Code) float64 {
	if r, ok := usdRates[c]; ok && r > 0 {
		return r
	}
	return 1
}

// Convert expresses amount, held in from, in the to currency.
// Unknown codes are treated as USD.
func Convert(amount float64, from, to string) float64 {
	f, t := Normalize(from), Normalize(to)
	if f == t {
		return amount
	}
	v := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(Rate(f))).
		Mul(decimal.NewFromFloat(Rate(t)))
	return v.InexactFloat64()
}

// ForJurisdiction returns the default currency of a country, or USD.
func ForJurisdiction(country string) Code {
	if c, ok := jurisdictionCurrencies[strings.TrimSpace(country)]; ok {
		if _, known := usdRates[c]; known {
			return c
		}
	}
	return USD
}

// Known lists every currency in the table, sorted.
func Known() []Code {
	codes := make([]Code, 0, len(usdRates))
	for c := range usdRates {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

var printer = message.NewPrinter(language.English)

// Format renders amount with thousands separators and two decimals, prefixed
// by the currency code, e.g. "SAR 12,500.00".
func Format(amount float64, code string) string {
	return printer.Sprintf("%s %.2f", Normalize(code), amount)
}
