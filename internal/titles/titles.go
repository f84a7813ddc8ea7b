package titles

import (
	"regexp"
	"strconv"
	"strings"
)

// Raw titles in the viewing report carry a secondary-language title after
// "//", a trailing "(YYYY)" year, and season/part suffixes like
// ": Season 2" or ": Part 1". These helpers peel those layers off in a
// deterministic way so the rest of the pipeline can group and search on a
// stable key.

var (
	seasonPartRe    = regexp.MustCompile(`(?i):\s*(season\s+\d+|part\s+\d+|\d+\s*-\s*\d+)`)
	trailingYearRe  = regexp.MustCompile(`\s*\(\d{4}\)$`)
	limitedSeriesRe = regexp.MustCompile(`\bLimited\s+Series\b`)
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	nonAlnumRe      = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	secondaryRe     = regexp.MustCompile(`//\s*(.+)`)
	seasonNumRe     = regexp.MustCompile(`(?i)season\s+(\d+)`)
)

// Clean strips the secondary-language segment and a trailing parenthetical
// year. Total: empty input yields empty output.
func Clean(raw string) string {
	left := strings.SplitN(raw, "//", 2)[0]
	left = strings.TrimSpace(left)
	left = trailingYearRe.ReplaceAllString(left, "")
	return strings.TrimSpace(left)
}

// Core derives the grouping/matching key. A ": Season N", ": Part N" or
// ": N-M" segment truncates the title; a colon followed by anything else is
// kept (arbitrary subtitles are part of the identity). The result is then
// scrubbed of marketing phrases, parenthetical groups and punctuation so
// that Core(Core(x)) == Core(x).
func Core(raw string) string {
	title := raw
	if loc := seasonPartRe.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	}
	title = strings.SplitN(title, "//", 2)[0]
	title = limitedSeriesRe.ReplaceAllString(title, "")
	title = parentheticalRe.ReplaceAllString(title, "")
	title = nonAlnumRe.ReplaceAllString(title, "")
	title = multiSpaceRe.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// SecondaryLanguageTitle returns the text after the "//" delimiter.
// The second return value is false when the title has no secondary segment.
func SecondaryLanguageTitle(raw string) (string, bool) {
	m := secondaryRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// SeasonNumber extracts the season ordinal used for sorting relationships.
// Films and unnumbered items report 0 so they sort first.
func SeasonNumber(title string) int {
	m := seasonNumRe.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
