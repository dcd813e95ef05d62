package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeOfDay_PartitionsFullDay(t *testing.T) {
	counts := map[TimeBand]int{}
	for hour := 0; hour < 24; hour++ {
		band := TimeOfDay(hour)
		switch band {
		case BandMorning, BandLateMorning, BandNoon, BandAfternoon, BandEvening, BandLateNight:
			counts[band]++
		default:
			t.Fatalf("hour %d produced unknown band %q", hour, band)
		}
	}

	// Band widths: 3+3+2+4+4+8 = 24, no gaps or overlaps.
	assert.Equal(t, 3, counts[BandMorning])
	assert.Equal(t, 3, counts[BandLateMorning])
	assert.Equal(t, 2, counts[BandNoon])
	assert.Equal(t, 4, counts[BandAfternoon])
	assert.Equal(t, 4, counts[BandEvening])
	assert.Equal(t, 8, counts[BandLateNight])
}

func TestTimeOfDay_BandEdges(t *testing.T) {
	tests := []struct {
		hour int
		want TimeBand
	}{
		{0, BandLateNight},
		{5, BandLateNight},
		{6, BandMorning},
		{8, BandMorning},
		{9, BandLateMorning},
		{11, BandLateMorning},
		{12, BandNoon},
		{13, BandNoon},
		{14, BandAfternoon},
		{17, BandAfternoon},
		{18, BandEvening},
		{21, BandEvening},
		{22, BandLateNight},
		{23, BandLateNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDay(tt.hour), "hour %d", tt.hour)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"prepare the quarterly report", CategoryWork},
		{"Fix login bug before release", CategoryWork},
		{"read chapter 4 of the textbook", CategoryStudy},
		{"practice piano scales", CategoryStudy},
		{"morning run in the park", CategoryExercise},
		{"yoga session", CategoryExercise},
		{"buy groceries for the week", CategoryLife},
		{"do the laundry", CategoryLife},
		{"call mom", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.text), "text %q", tt.text)
	}
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	assert.Equal(t, CategoryWork, Categorize("TEAM MEETING at 3pm"))
	assert.Equal(t, CategoryExercise, Categorize("Gym Day"))
}

func TestCategorize_TieBreakIsTableOrder(t *testing.T) {
	// "review" (work) comes before "notes" (study) in table order, so work wins
	// even though both categories match.
	assert.Equal(t, CategoryWork, Categorize("review my study notes"))
}

func TestDetectAnxiety_NoKeywords(t *testing.T) {
	result := DetectAnxiety("water the plants tomorrow")
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Keywords)
}

func TestDetectAnxiety_SingleKeyword(t *testing.T) {
	result := DetectAnxiety("the deadline is friday")
	assert.InDelta(t, 0.3, result.Score, 1e-9)
	assert.Equal(t, []string{"deadline"}, result.Keywords)
}

func TestDetectAnxiety_OverlapNotDoubleCounted(t *testing.T) {
	// "too late" (0.55) is matched first as the longer keyword; the contained
	// "late" (0.1) occupies the same span and must not add to the score.
	result := DetectAnxiety("it is too late to start")
	assert.InDelta(t, 0.55, result.Score, 1e-9)
	assert.Equal(t, []string{"too late"}, result.Keywords)
}

func TestDetectAnxiety_SeparateOccurrencesBothCount(t *testing.T) {
	result := DetectAnxiety("urgent fix, very urgent")
	assert.InDelta(t, 0.7, result.Score, 1e-9)
	assert.Equal(t, []string{"urgent", "urgent"}, result.Keywords)
}

func TestDetectAnxiety_ScoreClampedToOne(t *testing.T) {
	result := DetectAnxiety("emergency! must hurry, deadline panic, urgent")
	assert.Equal(t, 1.0, result.Score)
	assert.NotEmpty(t, result.Keywords)
}

func TestDetectAnxiety_CaseInsensitive(t *testing.T) {
	result := DetectAnxiety("URGENT: reply ASAP")
	assert.InDelta(t, 0.45, result.Score, 1e-9)
	assert.ElementsMatch(t, []string{"urgent", "asap"}, result.Keywords)
}
