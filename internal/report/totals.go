package report

import (
	"sort"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// ProjectTotal is one row of the per-project breakdown.
type ProjectTotal struct {
	Name    string  `json:"name"`
	Seconds int64   `json:"duration"`
	Hours   float64 `json:"hours"`
}

// ProjectTotals sums merged session durations per project across the
// visible records, sorted descending by duration. Merging is scoped per
// (project, day) so overlapping raw records never double-count and daily
// reporting boundaries hold. Ties keep first-seen project order.
func ProjectTotals(ctx Context) []ProjectTotal {
	loc := ctx.location()

	groups := make(map[string]map[string][]store.ActivityRecord)
	var order []string
	for _, r := range ctx.visible() {
		byDay, ok := groups[r.Project]
		if !ok {
			byDay = make(map[string][]store.ActivityRecord)
			groups[r.Project] = byDay
			order = append(order, r.Project)
		}
		day := dayKey(r.Start, loc)
		byDay[day] = append(byDay[day], r)
	}

	totals := make([]ProjectTotal, 0, len(groups))
	for _, name := range order {
		var total int64
		for _, records := range groups[name] {
			total += SumSessions(MergeSessions(records, ctx.IdleTimeout))
		}
		totals = append(totals, ProjectTotal{Name: name, Seconds: total, Hours: Hours(total)})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Seconds > totals[j].Seconds
	})
	return totals
}

// DayTotal is one day of a single project's history.
type DayTotal struct {
	Date     string    `json:"date"`
	Seconds  int64     `json:"duration"`
	Sessions []Session `json:"sessions"`
}

// recentDayCap is the display window for DailyTotals.
const recentDayCap = 14

// DailyTotals returns one project's merged per-day totals, most recent
// first, capped to the last recentDayCap days with activity. maxDays <= 0
// uses the default cap.
func DailyTotals(ctx Context, project string, maxDays int) []DayTotal {
	if maxDays <= 0 {
		maxDays = recentDayCap
	}
	loc := ctx.location()

	byDay := make(map[string][]store.ActivityRecord)
	for _, r := range ctx.visible() {
		if r.Project != project {
			continue
		}
		day := dayKey(r.Start, loc)
		byDay[day] = append(byDay[day], r)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if len(days) > maxDays {
		days = days[:maxDays]
	}

	totals := make([]DayTotal, 0, len(days))
	for _, day := range days {
		sessions := MergeSessions(byDay[day], ctx.IdleTimeout)
		totals = append(totals, DayTotal{
			Date:     day,
			Seconds:  SumSessions(sessions),
			Sessions: sessions,
		})
	}
	return totals
}

// WeekDay is one day of the weekly stacked series: per-project hours plus
// the day's target.
type WeekDay struct {
	Date    string             `json:"date"`
	Label   string             `json:"label"`
	Hours   map[string]float64 `json:"hours"`
	Target  float64            `json:"target"`
	Seconds int64              `json:"duration"`
}

// WeekStart returns the start of the week containing t, at midnight in
// loc. startDay is the configured first day of the week (Monday or Sunday).
func WeekStart(t time.Time, loc *time.Location, startDay time.Weekday) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	back := (int(day.Weekday()) - int(startDay) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// TargetHours is the target for a single day: the weekday target Monday
// through Friday, zero on weekends. A pure function of the day of week.
func TargetHours(ctx Context, weekday time.Weekday) float64 {
	if weekday == time.Saturday || weekday == time.Sunday {
		return 0
	}
	return ctx.dailyTarget()
}

// TargetHoursForWeek sums the daily targets over one week (40 at the
// default 8h weekday target).
func TargetHoursForWeek(ctx Context) float64 {
	var total float64
	for d := time.Sunday; d <= time.Saturday; d++ {
		total += TargetHours(ctx, d)
	}
	return total
}

// WeeklySeries returns one entry per day of the week starting at weekStart
// (midnight, reporting timezone), with per-project stacked hours and the
// day's target.
func WeeklySeries(ctx Context, weekStart time.Time) []WeekDay {
	loc := ctx.location()
	stats := BuildStats(ctx)

	series := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		date := day.In(loc).Format("2006-01-02")

		hours := make(map[string]float64)
		var total int64
		for project, dp := range stats[date] {
			hours[project] = Hours(dp.Seconds)
			total += dp.Seconds
		}

		series = append(series, WeekDay{
			Date:    date,
			Label:   day.In(loc).Format("Mon"),
			Hours:   hours,
			Target:  TargetHours(ctx, day.In(loc).Weekday()),
			Seconds: total,
		})
	}
	return series
}

// MonthTotal is one month of the long-term trend.
type MonthTotal struct {
	Month   string  `json:"month"`
	Seconds int64   `json:"duration"`
	Hours   float64 `json:"hours"`
}

// MonthlyTrend groups the already-merged daily totals by calendar month,
// ascending. Sessions are merged at day granularity, never re-merged
// across days.
func MonthlyTrend(ctx Context) []MonthTotal {
	stats := BuildStats(ctx)

	byMonth := make(map[string]int64)
	for date, projects := range stats {
		for _, dp := range projects {
			byMonth[monthKey(date)] += dp.Seconds
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]MonthTotal, 0, len(months))
	for _, m := range months {
		trend = append(trend, MonthTotal{Month: m, Seconds: byMonth[m], Hours: Hours(byMonth[m])})
	}
	return trend
}
