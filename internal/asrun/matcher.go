package asrun

import "strings"

// Matches reports whether the entry's title contains keyword, ignoring case.
// An empty keyword matches nothing.
func Matches(entry *LogEntry, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(entry.DatabaseTitle), strings.ToUpper(keyword))
}

// Match returns the entries whose title contains keyword, in input order
func Match(programs []*LogEntry, keyword string) []*LogEntry {
	var matched []*LogEntry
	for _, entry := range programs {
		if Matches(entry, keyword) {
			matched = append(matched, entry)
		}
	}
	return matched
}
