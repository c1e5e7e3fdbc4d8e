package notifier

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders a dollar amount with thousands separators, e.g. $12,345.67.
func FormatUSD(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.InexactFloat64())
}

// FormatShares renders a share count with thousands separators and two decimals.
func FormatShares(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

// FormatPrice renders a per-share price, e.g. $0.525.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(3)
}

// ShortAddress abbreviates a wallet address for display.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
