package core

import (
	"math"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// UpperName trims `s`, collapses inner whitespace and upper-cases it.
func UpperName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RoundInt rounds half away from zero.
func RoundInt(f float64) int {
	return int(math.Round(f))
}
