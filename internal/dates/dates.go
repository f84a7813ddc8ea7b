package dates

import "regexp"

// Shape is the structured form of a free-text release date as it appears in
// search results: "2017–" (still airing), "2017-2019" (ended), "2020"
// (single release) or anything else (unknown, all fields empty).
type Shape struct {
	SingleDate        bool   `json:"singleDate"`
	SeriesOngoing     bool   `json:"seriesOngoing"`
	SeriesHasEnded    bool   `json:"seriesHasEnded"`
	SingleReleaseDate string `json:"singleReleaseDate,omitempty"`
	StartDate         string `json:"startDate,omitempty"`
	EndDate           string `json:"endDate,omitempty"`
}

// Sources are not consistent about which dash they print, so hyphen,
// en dash and em dash are all accepted as the range separator.
var (
	ongoingRe = regexp.MustCompile(`^\d{4}[-–—]$`)
	endedRe   = regexp.MustCompile(`^(\d{4})[-–—](\d{4})$`)
	singleRe  = regexp.MustCompile(`^\d{4}$`)
)

// Classify parses a release-date string into a Shape. It never fails:
// unparseable input degrades to the zero Shape.
func Classify(text string) Shape {
	switch {
	case ongoingRe.MatchString(text):
		return Shape{
			SeriesOngoing: true,
			StartDate:     text[:4],
		}
	case endedRe.MatchString(text):
		m := endedRe.FindStringSubmatch(text)
		return Shape{
			SeriesHasEnded: true,
			StartDate:      m[1],
			EndDate:        m[2],
		}
	case singleRe.MatchString(text):
		return Shape{
			SingleDate:        true,
			SingleReleaseDate: text,
		}
	default:
		return Shape{}
	}
}
