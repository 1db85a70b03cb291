// Package format holds the display formatters for currency, counts, dates
// and percentages. Everything here is pure: bad input yields "N/A" or "$0",
// never an error.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Currency renders an amount as whole-dollar USD, or with a one-decimal
// M/K suffix when compact is set.
func Currency(amount float64, compact bool) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}
	if compact {
		abs := math.Abs(amount)
		switch {
		case abs >= 1e6:
			return fmt.Sprintf("$%.1fM", amount/1e6)
		case abs >= 1e3:
			return fmt.Sprintf("$%.1fK", amount/1e3)
		}
	}
	return "$" + grouped(math.Round(amount))
}

// Number renders a count with thousands separators.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return grouped(math.Round(v))
}

// Percent renders a 0-1 ratio as a one-decimal percentage.
func Percent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Date renders an ISO YYYY-MM-DD string as "Jan 2, 2006". The components are
// parsed and reassembled directly so the displayed calendar day always equals
// the stored one, whatever the runtime's timezone offset is. Anything that
// does not look like an ISO date comes back as "N/A".
func Date(iso string) string {
	y, m, d, ok := splitISO(iso)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%s %d, %d", time.Month(m).String()[:3], d, y)
}

func splitISO(iso string) (year, month, day int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(iso), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	// Tolerate a trailing time component on the day part.
	if i := strings.IndexByte(parts[2], 'T'); i > 0 {
		parts[2] = parts[2][:i]
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func grouped(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	n := len(s)
	if n > 3 {
		var b strings.Builder
		lead := n % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < n; i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
