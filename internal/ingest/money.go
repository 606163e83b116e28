package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyStripper removes currency symbols, thousands separators and
// embedded spaces (including non-breaking spaces) from a money string.
var currencyStripper = strings.NewReplacer(
	"$", "",
	"£", "",
	"€", "",
	",", "",
	"(", "",
	")", "",
	" ", "",
	" ", "",
)

// ParseMoney converts heterogeneous currency-formatted text into a signed
// amount. The parenthesized form "(123.45)" is a negative marker and is
// detected before any stripping. A value that is empty or non-numeric after
// stripping yields ok=false, not zero: callers that need zero-as-default
// must substitute explicitly.
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")

	s = currencyStripper.Replace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}

	f, _ := d.Float64()
	if neg {
		f = -f
	}
	return f, true
}
