package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// groupThousands inserts dots as thousands separators (es-CL convention).
func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatDecimal(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if hasFrac {
		out += "," + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatUF renders a UF amount with two decimals, es-CL style: "UF 1.234,56".
// A nil amount renders as an em-space dash placeholder.
func FormatUF(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return "UF " + formatDecimal(*d, 2)
}

// FormatCLP renders a peso amount with no decimals: "$1.234.567".
func FormatCLP(d *decimal.Decimal) string {
	if d == nil {
		return "—"
	}
	return "$" + formatDecimal(*d, 0)
}

// FormatDate renders a date as dd-mm-yyyy (es-CL). Nil renders as "s/f".
func FormatDate(t *time.Time) string {
	if t == nil {
		return "s/f"
	}
	return t.Format("02-01-2006")
}
