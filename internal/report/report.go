// Package report is the aggregation core: it turns raw activity records
// into merged work sessions and the derived views the dashboard and API
// serve. Every function here is a pure function of its inputs, with no I/O
// and no package state: the same snapshot and the same idle timeout always
// produce the same output.
package report

import (
	"math"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// Context carries one aggregation call's full input: the record snapshot,
// the read-time filters and the reporting parameters. Callers re-fetch the
// ignored set and idle timeout for every call; nothing is cached here.
type Context struct {
	Records     []store.ActivityRecord
	Ignored     map[string]bool
	IdleTimeout time.Duration
	Location    *time.Location

	// Reference is "now" for recency windows and week selection.
	Reference time.Time

	// DailyTargetHours is the weekday target; 0 means the default 8.
	DailyTargetHours float64
}

func (c Context) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Context) dailyTarget() float64 {
	if c.DailyTargetHours <= 0 {
		return 8
	}
	return c.DailyTargetHours
}

// visible returns the records with ignored projects filtered out. The
// underlying snapshot is never mutated.
func (c Context) visible() []store.ActivityRecord {
	if len(c.Ignored) == 0 {
		return c.Records
	}
	out := make([]store.ActivityRecord, 0, len(c.Records))
	for _, r := range c.Records {
		if !c.Ignored[r.Project] {
			out = append(out, r)
		}
	}
	return out
}

// dayKey buckets a timestamp into its calendar date in the reporting
// timezone. A record belongs to the day its start falls on.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// DayProject is one (date, project) cell of the stats snapshot, the shape
// served by GET /api/stats.
type DayProject struct {
	Seconds  int64     `json:"duration"`
	Sessions []Session `json:"sessions"`
}

// Stats maps date -> project -> merged sessions and total.
type Stats map[string]map[string]DayProject

// BuildStats merges every (date, project) bucket of the visible records.
// Sessions never merge across a calendar-day boundary: the day bucket is
// authoritative for reporting, so bucketing happens before merging.
func BuildStats(ctx Context) Stats {
	loc := ctx.location()
	buckets := make(map[string]map[string][]store.ActivityRecord)
	for _, r := range ctx.visible() {
		day := dayKey(r.Start, loc)
		if buckets[day] == nil {
			buckets[day] = make(map[string][]store.ActivityRecord)
		}
		buckets[day][r.Project] = append(buckets[day][r.Project], r)
	}

	stats := make(Stats, len(buckets))
	for day, projects := range buckets {
		stats[day] = make(map[string]DayProject, len(projects))
		for project, records := range projects {
			sessions := MergeSessions(records, ctx.IdleTimeout)
			var total int64
			for _, s := range sessions {
				total += s.Seconds()
			}
			stats[day][project] = DayProject{Seconds: total, Sessions: sessions}
		}
	}
	return stats
}

// Percent returns part as a percentage of total, 0 when total is zero.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Hours converts seconds to hours rounded to one decimal.
func Hours(seconds int64) float64 {
	return math.Round(float64(seconds)/360) / 10
}
