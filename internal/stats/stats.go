// Package stats derives aggregates from the session log. Everything here is
// a pure function of the log and a reference time; nothing is cached and
// nothing mutates its inputs.
package stats

import (
	"math"
	"time"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/timeutil"
)

const (
	hourlyPoints = 8
	dailyPoints  = 7
)

// HourPoint is one hour-aligned bucket of today's activity.
type HourPoint struct {
	Hour    time.Time // window start
	Minutes float64   // capped at 60
}

// DayPoint is one calendar day's total.
type DayPoint struct {
	Date  string
	Hours float64 // one decimal
}

// ProjectPoint is one project's trailing-7-day total.
type ProjectPoint struct {
	ProjectID string
	Name      string
	Color     string
	Value     float64
	Unit      string // "m" under one hour, else "h"
}

// TodayTotal sums durations of sessions filed under today.
func TodayTotal(sessions []model.Session, now time.Time) int {
	return totalOn(sessions, timeutil.DateOf(now))
}

// WeekTotal sums durations over the trailing 7 calendar days (today and the
// 6 preceding), by owning date.
func WeekTotal(sessions []model.Session, now time.Time) int {
	total := 0
	for n := 0; n < dailyPoints; n++ {
		total += totalOn(sessions, timeutil.DateOf(now.AddDate(0, 0, -n)))
	}
	return total
}

func totalOn(sessions []model.Session, date string) int {
	total := 0
	for _, s := range sessions {
		if s.Date == date {
			total += s.Duration
		}
	}
	return total
}

// HourlySeries buckets today's sessions into the 8 hour windows ending at
// the current hour. A session spanning an hour boundary contributes to each
// window only the seconds that actually fall inside it, so the series always
// conserves session durations. Bucketing by start hour would misattribute
// boundary-crossing sessions and is deliberately not what happens here.
func HourlySeries(sessions []model.Session, now time.Time) []HourPoint {
	today := timeutil.DateOf(now)
	currentHour := timeutil.HourStart(now)

	points := make([]HourPoint, 0, hourlyPoints)
	for i := hourlyPoints - 1; i >= 0; i-- {
		winStart := currentHour.Add(-time.Duration(i) * time.Hour)
		winEnd := winStart.Add(time.Hour)

		seconds := 0
		for _, s := range sessions {
			if s.Date != today {
				continue
			}
			seconds += timeutil.OverlapSeconds(s.StartTime, s.EndTime, winStart, winEnd)
		}

		minutes := float64(seconds) / 60
		if minutes > 60 {
			minutes = 60
		}
		points = append(points, HourPoint{Hour: winStart, Minutes: minutes})
	}
	return points
}

// DailySeries returns per-day totals for today and the 6 preceding days,
// oldest first, in hours rounded to one decimal.
func DailySeries(sessions []model.Session, now time.Time) []DayPoint {
	points := make([]DayPoint, 0, dailyPoints)
	for i := dailyPoints - 1; i >= 0; i-- {
		date := timeutil.DateOf(now.AddDate(0, 0, -i))
		secs := totalOn(sessions, date)
		points = append(points, DayPoint{
			Date:  date,
			Hours: round1(float64(secs) / 3600),
		})
	}
	return points
}

// ProjectSeries totals each project over the trailing 7 days. Totals under
// an hour are reported in minutes, the rest in hours to one decimal.
// Projects with no time in the window are excluded.
func ProjectSeries(sessions []model.Session, projects []model.Project, now time.Time) []ProjectPoint {
	window := make(map[string]bool, dailyPoints)
	for n := 0; n < dailyPoints; n++ {
		window[timeutil.DateOf(now.AddDate(0, 0, -n))] = true
	}

	totals := make(map[string]int)
	for _, s := range sessions {
		if window[s.Date] {
			totals[s.ProjectID] += s.Duration
		}
	}

	var points []ProjectPoint
	for _, p := range projects {
		secs := totals[p.ID]
		if secs == 0 {
			continue
		}
		point := ProjectPoint{ProjectID: p.ID, Name: p.Name, Color: p.Color}
		if secs < 3600 {
			point.Value = math.Round(float64(secs) / 60)
			point.Unit = "m"
		} else {
			point.Value = round1(float64(secs) / 3600)
			point.Unit = "h"
		}
		points = append(points, point)
	}
	return points
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
