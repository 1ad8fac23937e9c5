package report

import (
	"sort"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// ItemActivity is one file's (or URL's) merged activity on a single day,
// with a 24-bucket hourly distribution for timeline rendering.
type ItemActivity struct {
	Name       string    `json:"name"`
	Seconds    int64     `json:"duration"`
	Percent    float64   `json:"percent"`
	TimeByHour [24]int64 `json:"timeByHour"`
}

// FileActivity breaks down one project's coding records for a given day
// (reporting-timezone date string) by exact file path, sorted descending by
// duration.
func FileActivity(ctx Context, project, date string) []ItemActivity {
	return itemActivity(ctx, project, date, store.TypeCoding, func(r store.ActivityRecord) string {
		return r.File
	})
}

// URLActivity is FileActivity for browsing records, keyed by exact URL.
func URLActivity(ctx Context, project, date string) []ItemActivity {
	return itemActivity(ctx, project, date, store.TypeBrowsing, func(r store.ActivityRecord) string {
		return r.URL
	})
}

func itemActivity(ctx Context, project, date string, typ store.ActivityType, keyOf func(store.ActivityRecord) string) []ItemActivity {
	loc := ctx.location()

	groups := make(map[string][]store.ActivityRecord)
	var order []string
	for _, r := range ctx.visible() {
		if r.Project != project || r.Type != typ {
			continue
		}
		key := keyOf(r)
		if key == "" || dayKey(r.Start, loc) != date {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	items := make([]ItemActivity, 0, len(groups))
	var total int64
	for _, key := range order {
		sessions := MergeSessions(groups[key], ctx.IdleTimeout)
		item := ItemActivity{Name: key, Seconds: SumSessions(sessions)}
		for _, s := range sessions {
			distributeByHour(&item.TimeByHour, s.Start, s.End, date, loc)
		}
		total += item.Seconds
		items = append(items, item)
	}

	for i := range items {
		items[i].Percent = Percent(items[i].Seconds, total)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Seconds > items[j].Seconds
	})
	return items
}

// distributeByHour attributes the seconds of [start, end) to the hour
// buckets of the given calendar day, overlap-aware: each bucket receives
// exactly the portion of the interval falling inside [hour, hour+1), so the
// buckets sum back to the session duration (clipped to the day).
func distributeByHour(buckets *[24]int64, start, end time.Time, date string, loc *time.Location) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil || !end.After(start) {
		return
	}

	for hour := 0; hour < 24; hour++ {
		hourStart := day.Add(time.Duration(hour) * time.Hour)
		hourEnd := hourStart.Add(time.Hour)

		overlapStart := start
		if hourStart.After(overlapStart) {
			overlapStart = hourStart
		}
		overlapEnd := end
		if hourEnd.Before(overlapEnd) {
			overlapEnd = hourEnd
		}
		if overlapEnd.After(overlapStart) {
			buckets[hour] += int64(overlapEnd.Sub(overlapStart).Seconds())
		}
	}
}
