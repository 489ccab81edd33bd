package format

import (
	"fmt"
	"strconv"
	"strings"
)

// FmtScore renders a score with up to two decimals, trimming trailing
// zeros so whole scores print as integers.
func FmtScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FmtMultiplier renders a process multiplier as "x0.95".
func FmtMultiplier(v float64) string {
	return "x" + strconv.FormatFloat(v, 'f', 2, 64)
}

// FmtDelta renders a signed point amount, "+15" or "-7.5".
func FmtDelta(v float64) string {
	if v >= 0 {
		return "+" + FmtScore(v)
	}
	return "-" + FmtScore(-v)
}

// FmtPercent renders a fraction as a percentage with one decimal.
func FmtPercent(frac float64) string {
	return fmt.Sprintf("%.1f%%", frac*100)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
