package modelo210

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEuros renders a monetary value the way Spanish declarations print it:
// thousands separated by '.', comma decimal separator, trailing euro sign.
// E.g. 1650 → "1.650,00 €".
func FormatEuros(d decimal.Decimal) string {
	s := d.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(" €")
	return b.String()
}

// FormatPercent renders a percentage with comma decimal separator, e.g.
// 1.1 → "1,1 %".
func FormatPercent(d decimal.Decimal) string {
	return strings.ReplaceAll(d.String(), ".", ",") + " %"
}
