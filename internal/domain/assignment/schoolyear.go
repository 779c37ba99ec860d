package assignment

import (
	"regexp"
	"strconv"
)

var schoolYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// ValidSchoolYear reports whether s looks like "2026-2027": two years, the second one
// following the first.
func ValidSchoolYear(s string) bool {
	m := schoolYearPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
