package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a monetary amount for display: the ISO currency
// code followed by the amount with two decimals and locale-appropriate
// grouping, e.g. "USD 1,234.50" for "en" and "USD 1.234,50" for "de".
// Unknown currency codes are passed through unchanged; an unparseable
// locale falls back to English.
func FormatAmount(amount decimal.Decimal, currencyCode, locale string) string {
	code := currencyCode
	if unit, err := currency.ParseISO(currencyCode); err == nil {
		code = unit.String()
	}

	f, _ := amount.Round(2).Float64()
	return fmt.Sprintf("%s %s", code, printer(locale).Sprintf("%.2f", f))
}

// FormatQuantity renders an item count with locale-appropriate grouping.
func FormatQuantity(n int, locale string) string {
	return printer(locale).Sprintf("%d", n)
}

func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
