package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlaySessionWindow(t *testing.T) {
	start := time.Date(2024, 3, 20, 4, 0, 0, 0, time.UTC)
	session := &PlaySession{StartedAt: start}

	tests := []struct {
		name      string
		now       time.Time
		active    bool
		shouldEnd bool
		remaining time.Duration
	}{
		{"at start", start, true, false, 24 * time.Hour},
		{"midway", start.Add(10 * time.Hour), true, false, 14 * time.Hour},
		{"last second", start.Add(24*time.Hour - time.Second), true, false, time.Second},
		{"exactly 24h", start.Add(24 * time.Hour), false, true, 0},
		{"25 hours later", start.Add(25 * time.Hour), false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, session.IsActive(tt.now))
			assert.Equal(t, tt.shouldEnd, session.ShouldEnd(tt.now))
			assert.Equal(t, tt.remaining, session.TimeRemaining(tt.now))
		})
	}
}

func TestEndedSessionIsNeitherActiveNorDue(t *testing.T) {
	start := time.Date(2024, 3, 20, 4, 0, 0, 0, time.UTC)
	ended := start.Add(time.Hour)
	session := &PlaySession{StartedAt: start, EndedAt: &ended}

	assert.False(t, session.IsActive(start.Add(2*time.Hour)))
	assert.False(t, session.ShouldEnd(start.Add(30*time.Hour)))
}

func TestHasWordIgnoresCase(t *testing.T) {
	session := &PlaySession{Words: []SessionWord{{Word: "star"}, {Word: "rats"}}}

	assert.True(t, session.HasWord("STAR"))
	assert.True(t, session.HasWord("rats"))
	assert.False(t, session.HasWord("tar"))
}

func TestWordLengthCountsCharacters(t *testing.T) {
	assert.Equal(t, 5, WordLength("crème"))
	assert.Equal(t, 0, WordLength(""))
	assert.Equal(t, 13, (&LongestWordRecord{Word: "extraordinary"}).Length())
}

func TestCalendarDateUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}

	// 02:00 UTC on the 21st is still the evening of the 20th in New York
	instant := time.Date(2024, 3, 21, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), CalendarDate(instant, ny))
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), CalendarDate(instant, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 20, 4, 0, 0, 0, time.UTC), StartOfDay(instant, ny).UTC())
}

func TestDaysBetween(t *testing.T) {
	day1 := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(day1, day1))
	assert.Equal(t, 1, DaysBetween(day1, day1.AddDate(0, 0, 1)))
	assert.Equal(t, 5, DaysBetween(day1, day1.AddDate(0, 0, 5)))
	assert.Equal(t, -1, DaysBetween(day1, day1.AddDate(0, 0, -1)))
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-03-19")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-03-19", d.Format(DateLayout))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("word", "The word field is required.")

	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrSessionInactive))
	assert.Equal(t, "word: The word field is required.", err.Error())
}

func TestClampTopLimit(t *testing.T) {
	assert.Equal(t, DefaultTopLimit, ClampTopLimit(0))
	assert.Equal(t, DefaultTopLimit, ClampTopLimit(-3))
	assert.Equal(t, 1, ClampTopLimit(1))
	assert.Equal(t, 42, ClampTopLimit(42))
	assert.Equal(t, MaxTopLimit, ClampTopLimit(1000))
}
