package model

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// DateOf returns the calendar date of t (in t's own location) as a UTC-midnight Date.
func DateOf(t time.Time) strfmt.Date {
	y, m, d := t.Date()
	return strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) strfmt.Date {
	return DateOf(time.Now().In(loc))
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (strfmt.Date, error) {
	t, err := time.ParseInLocation(strfmt.RFC3339FullDate, s, time.UTC)
	if err != nil {
		return strfmt.Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return strfmt.Date(t), nil
}

// AddDays shifts d by n calendar days.
func AddDays(d strfmt.Date, n int) strfmt.Date {
	return DateOf(time.Time(d).AddDate(0, 0, n))
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to strfmt.Date) int {
	a := time.Time(DateOf(time.Time(from)))
	b := time.Time(DateOf(time.Time(to)))
	// Unix seconds, since time.Duration saturates beyond ~292 years
	return int((b.Unix() - a.Unix()) / 86400)
}

// SameDay reports whether a and b are the same calendar date.
func SameDay(a, b strfmt.Date) bool {
	return a.String() == b.String()
}
