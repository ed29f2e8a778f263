// Package format renders prices, weights and durations the way the shop
// displays them.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TWD formats an amount as "NT$ 1,234.56". A nil amount is "NT$ 0.00".
func TWD(amount *decimal.Decimal) string {
	if amount == nil {
		return "NT$ 0.00"
	}
	return "NT$ " + groupThousands(amount.StringFixedBank(2))
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

// Weight renders grams, switching to kilograms from 1000 g. Nil and zero are
// rendered empty.
func Weight(grams *int) string {
	if grams == nil || *grams == 0 {
		return ""
	}
	g := *grams
	if g >= 1000 {
		if g%1000 == 0 {
			return fmt.Sprintf("%d kg", g/1000)
		}
		return fmt.Sprintf("%.1f kg", float64(g)/1000)
	}
	return fmt.Sprintf("%d g", g)
}

// ResponseTime renders "Xd Yh Zm", dropping leading zero units. A nil
// duration is "-".
func ResponseTime(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	total := int64(d.Seconds())
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// Preview truncates to n runes, appending "..." when something was cut.
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Plural renders "N noun(s)" the way the admin counts are displayed.
func Plural(n int64, noun string) string {
	return fmt.Sprintf("%d %s(s)", n, noun)
}
