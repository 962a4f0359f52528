package records

import (
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day/month/year layout used by client sheets.
// Day and month may be written with one or two digits.
const DateLayout = "2/1/2006"

var (
	nonNumericRegexp = regexp.MustCompile(`[^0-9.]`)
	hundred          = decimal.NewFromInt(100)
)

// ParseDate parses a DD/MM/YYYY cell. Anything else is absent.
func ParseDate(raw string) sql.NullTime {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// ParseCurrency keeps only digits and decimal points before parsing, so
// "£1,250.50" becomes 1250.50. Currency signs and minus signs are dropped.
func ParseCurrency(raw string) decimal.NullDecimal {
	return parsePlain(nonNumericRegexp.ReplaceAllString(raw, ""))
}

// ParsePercent converts "45%" into the fraction 0.45.
func ParsePercent(raw string) decimal.NullDecimal {
	n := ParseNumber(strings.ReplaceAll(raw, "%", ""))
	if !n.Valid {
		return n
	}
	return decimal.NewNullDecimal(n.Decimal.Div(hundred))
}

// ParseNumber parses a plain numeric cell without stripping any characters.
func ParseNumber(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parsePlain parses a string made only of digits and dots.
func parsePlain(s string) decimal.NullDecimal {
	if s == "" || s == "." || strings.Count(s, ".") > 1 {
		return decimal.NullDecimal{}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
