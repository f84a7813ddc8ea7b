package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// FoldTitle lowercases a title and strips every non-alphanumeric rune so
// that "Avengers: Endgame" and "avengers endgame" key to the same string.
func FoldTitle(title string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(title), "")
}

// ParseHours parses a viewing-hours cell like "1,234" or "58,000,000".
// Returns 0 for blank or unparseable cells.
func ParseHours(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseBool parses the "Yes"/"No" availability cell.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "y", "1":
		return true
	}
	return false
}

// ParseDuration parses a duration string, falling back to def when the
// string is empty or malformed.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
