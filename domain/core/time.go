package core

import (
	"time"
)

// MonthStart truncates a timestamp to the first day of its month (UTC).
// Grouping by month-start keeps buckets aligned regardless of whether the
// source data was daily, weekly, or irregular.
func MonthStart(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the whole-month distance between two month-start
// timestamps. Negative when b is before a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// AddMonths advances a month-start timestamp by n months.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}
