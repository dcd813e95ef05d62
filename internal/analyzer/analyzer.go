package analyzer

import (
	"sort"
	"strings"
)

// TimeBand labels a segment of the day. The six bands partition 0-23 with no
// gaps or overlaps.
type TimeBand string

const (
	BandMorning     TimeBand = "morning"      // 06-09
	BandLateMorning TimeBand = "late-morning" // 09-12
	BandNoon        TimeBand = "noon"         // 12-14
	BandAfternoon   TimeBand = "afternoon"    // 14-18
	BandEvening     TimeBand = "evening"      // 18-22
	BandLateNight   TimeBand = "late-night"   // 22-06
)

// TimeOfDay buckets an hour of day (0-23) into its band.
func TimeOfDay(hour int) TimeBand {
	switch {
	case hour >= 6 && hour < 9:
		return BandMorning
	case hour >= 9 && hour < 12:
		return BandLateMorning
	case hour >= 12 && hour < 14:
		return BandNoon
	case hour >= 14 && hour < 18:
		return BandAfternoon
	case hour >= 18 && hour < 22:
		return BandEvening
	default:
		return BandLateNight
	}
}

// Category is the fixed classification set for task text.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryExercise Category = "exercise"
	CategoryLife     Category = "life"
	CategoryOther    Category = "other"
)

type categoryKeywords struct {
	category Category
	keywords []string
}

// categoryTable is an ordered list so the cross-category tie-break is a
// documented contract: the first category with any matching keyword wins.
var categoryTable = []categoryKeywords{
	{CategoryWork, []string{
		"meeting", "report", "email", "document", "code", "bug", "fix",
		"deploy", "review", "presentation", "project", "client", "standup",
		"work",
	}},
	{CategoryStudy, []string{
		"read", "study", "learn", "practice", "course", "notes", "exam",
		"homework", "paper", "tutorial", "research", "revise",
	}},
	{CategoryExercise, []string{
		"run", "gym", "workout", "exercise", "yoga", "swim", "bike",
		"walk", "stretch", "pushup",
	}},
	{CategoryLife, []string{
		"shopping", "clean", "cook", "laundry", "grocery", "buy",
		"dishes", "bills", "errand", "tidy",
	}},
}

// Categorize classifies task text by case-insensitive substring match against
// the keyword table. No match falls through to CategoryOther.
func Categorize(text string) Category {
	lower := strings.ToLower(text)
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// AnxietyResult holds the weighted anxiety score for a piece of text and the
// keywords that contributed, in the order they were accepted.
type AnxietyResult struct {
	Score    float64
	Keywords []string
}

type anxietyKeyword struct {
	keyword string
	weight  float64
}

var anxietyTable = []anxietyKeyword{
	{"emergency", 0.6},

	{"must", 0.55},
	{"doomed", 0.55},
	{"too late", 0.55},
	{"running out of time", 0.55},

	{"urgent", 0.35},
	{"immediately", 0.35},
	{"hurry", 0.35},
	{"right now", 0.35},

	{"deadline", 0.3},

	{"overwhelmed", 0.2},
	{"panic", 0.2},
	{"no way", 0.2},

	{"asap", 0.1},
	{"soon", 0.1},
	{"should", 0.1},
	{"late", 0.1},
}

// anxietyByLength is the table sorted longest keyword first, so a longer match
// claims its span before any shorter keyword contained within it.
var anxietyByLength = func() []anxietyKeyword {
	sorted := make([]anxietyKeyword, len(anxietyTable))
	copy(sorted, anxietyTable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].keyword) > len(sorted[j].keyword)
	})
	return sorted
}()

// DetectAnxiety scores text against the weighted keyword table. Keywords are
// scanned longest-first; each occurrence is accepted only if its character
// span does not overlap a previously accepted span. The score is clamped to 1.
func DetectAnxiety(text string) AnxietyResult {
	lower := strings.ToLower(text)

	var result AnxietyResult
	var spans [][2]int // accepted [start, end) spans

	for _, entry := range anxietyByLength {
		start := 0
		for {
			idx := strings.Index(lower[start:], entry.keyword)
			if idx == -1 {
				break
			}
			pos := start + idx
			end := pos + len(entry.keyword)

			if !overlapsAny(spans, pos, end) {
				result.Score += entry.weight
				result.Keywords = append(result.Keywords, entry.keyword)
				spans = append(spans, [2]int{pos, end})
			}

			start = pos + 1
		}
	}

	if result.Score > 1.0 {
		result.Score = 1.0
	}
	return result
}

func overlapsAny(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
