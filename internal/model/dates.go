package model

import "time"

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// CalendarDate returns the civil date of t in loc, represented as midnight UTC.
// Representing dates in UTC keeps day arithmetic free of DST offsets.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the instant the calendar day containing t begins in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of whole days from a to b, both values of CalendarDate
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// ParseDate parses a DateLayout string into a CalendarDate value
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
