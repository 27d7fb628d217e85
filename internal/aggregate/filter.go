package aggregate

import "strings"

// MatchesCalendarFilter reports whether a calendar display name matches the
// filter terms. Terms are case-insensitive substrings, OR-combined: the
// name need only contain one of them. An empty filter matches everything.
func MatchesCalendarFilter(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, f := range filters {
		if strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
