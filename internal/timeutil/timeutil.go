// Package timeutil holds the date formatting and interval bucketing
// helpers shared by the timer, statistics and sync code.
package timeutil

import "time"

const DateLayout = "2006-01-02"

// DateOf formats t as a local calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current local calendar date as YYYY-MM-DD.
func Today() string {
	return DateOf(time.Now())
}

// DaysAgo returns the calendar date n days before today.
func DaysAgo(n int) string {
	return DateOf(time.Now().AddDate(0, 0, -n))
}

// OverlapSeconds returns the seconds of [start, end) that fall inside
// [winStart, winEnd), clamped to the window length. Summing over every
// window an interval touches always yields exactly its duration.
func OverlapSeconds(start, end, winStart, winEnd time.Time) int {
	if !end.After(start) || !winEnd.After(winStart) {
		return 0
	}
	lo := start
	if winStart.After(lo) {
		lo = winStart
	}
	hi := end
	if winEnd.Before(hi) {
		hi = winEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return int(hi.Sub(lo) / time.Second)
}

// HourStart truncates t to the start of its hour.
func HourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// DayStart truncates t to local midnight.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
