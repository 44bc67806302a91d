package controllers

import (
	"fmt"
	"time"
)

// monthRange is a calendar month used by the reporting and history
// endpoints: [Start, End) bounds plus navigation helpers.
type monthRange struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

func makeMonth(year int, month time.Month) monthRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return monthRange{
		Year:  year,
		Month: month,
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// parseMonth resolves a "YYYY-MM" query value, falling back to the
// month containing now when the value is empty or malformed.
func parseMonth(raw string, now time.Time) monthRange {
	if raw != "" {
		if t, err := time.ParseInLocation("2006-01", raw, time.Local); err == nil {
			return makeMonth(t.Year(), t.Month())
		}
	}
	return makeMonth(now.Year(), now.Month())
}

func (m monthRange) Prev() monthRange {
	t := m.Start.AddDate(0, -1, 0)
	return makeMonth(t.Year(), t.Month())
}

func (m monthRange) Next() monthRange {
	t := m.Start.AddDate(0, 1, 0)
	return makeMonth(t.Year(), t.Month())
}

// Key is the query-parameter form, e.g. "2026-08".
func (m monthRange) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DisplayName is the human form, e.g. "August 2026".
func (m monthRange) DisplayName() string {
	return m.Start.Format("January 2006")
}

// Days returns the number of days in the month.
func (m monthRange) Days() int {
	return m.End.AddDate(0, 0, -1).Day()
}

// Day returns the date of the given 1-based day of the month.
func (m monthRange) Day(n int) time.Time {
	return time.Date(m.Year, m.Month, n, 0, 0, 0, 0, time.Local)
}

// DayLabel is the chart label for a day, e.g. "Aug 02".
func (m monthRange) DayLabel(n int) string {
	return m.Day(n).Format("Jan 02")
}

// Contains reports whether t falls inside the month.
func (m monthRange) Contains(t time.Time) bool {
	return !t.Before(m.Start) && t.Before(m.End)
}
