package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders d as a US dollar amount with grouping and two decimals.
func FormatUSD(d decimal.Decimal) string {
	return usdPrinter.Sprint(currency.Symbol(currency.USD.Amount(d.Round(2).InexactFloat64())))
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return usdPrinter.Sprintf("%d", n)
}
