// Package schedule computes which medications are due on a date and how
// registered courses render on a calendar.
//
// Internally every window is the closed range [start, start+days-1].
// CalendarBars is the single place that converts to an end-exclusive range.
package schedule

import (
	"github.com/go-openapi/strfmt"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// Event colours for the per-day calendar view.
const (
	DefaultColor      = "#3D9DF3"
	CheckedBackground = "#D4EDDA"
	CheckedBorder     = "#28A745"
	CheckedText       = "#000000"
	UncheckedText     = "#FFFFFF"
)

// TakenFunc reports whether the dose of name was taken on date.
type TakenFunc func(date strfmt.Date, name string) bool

// IsActive reports whether date falls inside rec's closed active window.
func IsActive(rec model.MedicationRecord, date strfmt.Date) bool {
	if rec.Days < 1 {
		return false
	}
	from := model.DaysBetween(rec.StartDate, date)
	return from >= 0 && from <= rec.Days-1
}

// ActiveOn returns the records due on date, preserving input order.
func ActiveOn(records []model.MedicationRecord, date strfmt.Date) []model.MedicationRecord {
	out := make([]model.MedicationRecord, 0, len(records))
	for _, r := range records {
		if IsActive(r, date) {
			out = append(out, r)
		}
	}
	return out
}

// RemainingDays is (start+days-1) - date. Negative once the window has passed.
func RemainingDays(rec model.MedicationRecord, date strfmt.Date) int {
	return model.DaysBetween(date, rec.LastDay())
}

// RequiredNames lists the distinct medication names due on date, in input order.
func RequiredNames(records []model.MedicationRecord, date strfmt.Date) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range ActiveOn(records, date) {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	return names
}

// AllTaken is true iff required is non-empty and every name is taken.
// An empty set is deliberately false: a day with nothing due is not a completed day.
func AllTaken(required []string, taken func(name string) bool) bool {
	if len(required) == 0 {
		return false
	}
	for _, name := range required {
		if !taken(name) {
			return false
		}
	}
	return true
}

// Bar is a calendar span for one record. EndExclusive is one day past the last active day.
type Bar struct {
	Name         string      `json:"name"`
	Start        strfmt.Date `json:"start"`
	EndExclusive strfmt.Date `json:"end"`
	Color        string      `json:"color"`
}

// CalendarBars renders one end-exclusive bar per record.
func CalendarBars(records []model.MedicationRecord) []Bar {
	bars := make([]Bar, 0, len(records))
	for _, r := range records {
		bars = append(bars, Bar{
			Name:         r.Name,
			Start:        r.StartDate,
			EndExclusive: model.AddDays(r.LastDay(), 1),
			Color:        colorOrDefault(r.Color),
		})
	}
	return bars
}

// DayEvent is a single all-day calendar cell for one record on one date.
type DayEvent struct {
	Date            strfmt.Date `json:"date"`
	Name            string      `json:"name"`
	Checked         bool        `json:"checked"`
	BackgroundColor string      `json:"backgroundColor"`
	BorderColor     string      `json:"borderColor"`
	TextColor       string      `json:"textColor"`
}

// DayEvents expands every record into one event per active day within [from, to].
// Only the overlap of each window with [from, to] is visited.
func DayEvents(records []model.MedicationRecord, from, to strfmt.Date, taken TakenFunc) []DayEvent {
	var events []DayEvent
	for _, r := range records {
		if r.Days < 1 {
			continue
		}
		first, last := r.StartDate, r.LastDay()
		if model.DaysBetween(first, from) > 0 {
			first = from
		}
		if model.DaysBetween(to, last) > 0 {
			last = to
		}
		n := model.DaysBetween(first, last)
		for i := 0; i <= n; i++ {
			day := model.AddDays(first, i)
			ev := DayEvent{Date: day, Name: r.Name}
			if taken != nil && taken(day, r.Name) {
				ev.Checked = true
				ev.BackgroundColor = CheckedBackground
				ev.BorderColor = CheckedBorder
				ev.TextColor = CheckedText
			} else {
				c := colorOrDefault(r.Color)
				ev.BackgroundColor = c
				ev.BorderColor = c
				ev.TextColor = UncheckedText
			}
			events = append(events, ev)
		}
	}
	return events
}

// FullyAdherentDays returns every date in [from, to] on which something was
// due and everything due was taken.
func FullyAdherentDays(records []model.MedicationRecord, from, to strfmt.Date, taken TakenFunc) []strfmt.Date {
	var days []strfmt.Date
	n := model.DaysBetween(from, to)
	for i := 0; i <= n; i++ {
		day := model.AddDays(from, i)
		required := RequiredNames(records, day)
		if AllTaken(required, func(name string) bool { return taken(day, name) }) {
			days = append(days, day)
		}
	}
	return days
}

func colorOrDefault(c string) string {
	if c == "" {
		return DefaultColor
	}
	return c
}
