package assignment

import (
	"regexp"
	"strings"
)

var levelPrefix = regexp.MustCompile(`^(\d+)\s*(ème|eme|ère|ere|er|re|nde|nd|de|e)`)

// ExtractLevel derives a grade level from a class display name: a leading digit sequence
// followed by a grade suffix ("6ème A" -> "6ème", "2nde C" -> "2nde"). Names that do not
// start that way are returned trimmed as they are.
func ExtractLevel(className string) string {
	name := strings.TrimSpace(className)
	m := levelPrefix.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return name
	}
	return m[1] + m[2]
}
