package titles

import (
	"regexp"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain title", "Wednesday", "Wednesday"},
		{"secondary language stripped", "The Glory // 더 글로리", "The Glory"},
		{"trailing year stripped", "All Quiet on the Western Front (2022)", "All Quiet on the Western Front"},
		{"year and secondary together", "Troll (2022) // Troll", "Troll"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.raw); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"season suffix truncated", "Show Name: Season 2", "Show Name"},
		{"part suffix truncated", "Money Heist: Part 5", "Money Heist"},
		{"numeric range truncated", "Lupin: 1-2", "Lupin"},
		{"plain subtitle kept", "Master of None: Moments in Love", "Master of None Moments in Love"},
		{"limited series stripped", "The Watcher: Limited Series", "The Watcher"},
		{"parenthetical stripped", "Dark Desire (Oscuro deseo)", "Dark Desire"},
		{"multiple parentheticals stripped", "Elite (Short Stories) (2021)", "Elite"},
		{"secondary language stripped", "Physical: 100 // 피지컬: 100", "Physical 100"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Core(tt.raw); got != tt.want {
				t.Errorf("Core(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoreIdempotent(t *testing.T) {
	raws := []string{
		"Show Name: Season 2",
		"Dark Desire (Oscuro deseo)",
		"The Watcher: Limited Series",
		"Master of None: Moments in Love",
		"Stranger Things 4 // 기묘한 이야기 4",
	}
	for _, raw := range raws {
		once := Core(raw)
		if twice := Core(once); twice != once {
			t.Errorf("Core not stable for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestCoreContainsOnlyAlnumAndSpace(t *testing.T) {
	invalid := regexp.MustCompile(`[^A-Za-z0-9 ]`)
	raws := []string{
		"Cyberpunk: Edgerunners // サイバーパンク エッジランナーズ",
		"Alchemy of Souls: Part 2 (2022)",
		"Café con aroma de mujer",
		"BEEF: Season 1",
	}
	for _, raw := range raws {
		got := Core(raw)
		if invalid.MatchString(got) {
			t.Errorf("Core(%q) = %q contains invalid characters", raw, got)
		}
	}
}

func TestSecondaryLanguageTitle(t *testing.T) {
	if got, ok := SecondaryLanguageTitle("The Glory // 더 글로리"); !ok || got != "더 글로리" {
		t.Errorf("SecondaryLanguageTitle = %q, %v; want %q, true", got, ok, "더 글로리")
	}
	if got, ok := SecondaryLanguageTitle("Wednesday"); ok {
		t.Errorf("SecondaryLanguageTitle = %q, %v; want absent", got, ok)
	}
}

func TestSeasonNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"Show Name: Season 2", 2},
		{"Show Name: season 12", 12},
		{"Wednesday", 0},
		{"Money Heist: Part 5", 0},
	}
	for _, tt := range tests {
		if got := SeasonNumber(tt.raw); got != tt.want {
			t.Errorf("SeasonNumber(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
