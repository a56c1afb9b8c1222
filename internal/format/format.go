package format

import (
	"fmt"
	"strings"
	"time"
)

// Price formats an amount in minor units the way the catalog displays
// prices: whole-dollar amounts drop the cents ("$35"), everything else
// keeps two decimals ("$35.50").
func Price(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	major := minor / 100
	cents := minor % 100
	out := "$" + thousandSep(major)
	if cents != 0 {
		out += fmt.Sprintf(".%02d", cents)
	}
	if neg {
		return "-" + out
	}
	return out
}

// Currency formats an amount in minor units for the given ISO code.
func Currency(minor int64, currency string) string {
	switch strings.ToUpper(currency) {
	case "USD":
		return Price(minor)
	case "JPY":
		return "¥" + thousandSep(minor)
	default:
		return fmt.Sprintf("%s %s", strings.ToUpper(currency), thousandSep(minor))
	}
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	out := ""
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	if neg {
		return "-" + out
	}
	return out
}

// Date formats a time in the short form used across the site.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
