package report

import (
	"testing"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

func codingRec(t *testing.T, file, start, end string) store.ActivityRecord {
	t.Helper()
	r := rec(t, "Alpha", store.TypeCoding, start, end)
	r.File = file
	return r
}

func browsingRec(t *testing.T, url, start, end string) store.ActivityRecord {
	t.Helper()
	r := rec(t, "Alpha", store.TypeBrowsing, start, end)
	r.URL = url
	return r
}

// ============================================================
// FileActivity
// ============================================================

func TestFileActivityGroupsByPath(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 09:00", "2024-01-01 09:30"),
		codingRec(t, "main.go", "2024-01-01 10:00", "2024-01-01 10:30"),
		codingRec(t, "util.go", "2024-01-01 09:00", "2024-01-01 09:15"),
	})

	items := FileActivity(ctx, "Alpha", "2024-01-01")
	if len(items) != 2 {
		t.Fatalf("expected 2 files, got %d", len(items))
	}
	// Sorted descending by duration.
	if items[0].Name != "main.go" || items[0].Seconds != 3600 {
		t.Fatalf("unexpected top file: %+v", items[0])
	}
	if items[1].Name != "util.go" || items[1].Seconds != 900 {
		t.Fatalf("unexpected second file: %+v", items[1])
	}
	if items[0].Percent != 80 || items[1].Percent != 20 {
		t.Fatalf("unexpected percents: %v, %v", items[0].Percent, items[1].Percent)
	}
}

func TestFileActivityFiltersDayAndProject(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 09:00", "2024-01-01 09:30"),
		codingRec(t, "main.go", "2024-01-02 09:00", "2024-01-02 09:30"), // other day
		func() store.ActivityRecord {
			r := rec(t, "Beta", store.TypeCoding, "2024-01-01 09:00", "2024-01-01 09:30")
			r.File = "beta.go"
			return r
		}(),
	})

	items := FileActivity(ctx, "Alpha", "2024-01-01")
	if len(items) != 1 || items[0].Seconds != 1800 {
		t.Fatalf("expected only Alpha's Jan 1 half hour, got %+v", items)
	}
}

func TestFileActivitySkipsRecordsWithoutFile(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		rec(t, "Alpha", store.TypeCoding, "2024-01-01 09:00", "2024-01-01 09:30"),
		codingRec(t, "main.go", "2024-01-01 10:00", "2024-01-01 10:30"),
	})
	items := FileActivity(ctx, "Alpha", "2024-01-01")
	if len(items) != 1 || items[0].Name != "main.go" {
		t.Fatalf("file-less coding record should be skipped, got %+v", items)
	}
}

// ============================================================
// Hourly distribution
// ============================================================

func TestHourlyDistributionSingleBucket(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 09:10", "2024-01-01 09:40"),
	})
	items := FileActivity(ctx, "Alpha", "2024-01-01")
	byHour := items[0].TimeByHour
	if byHour[9] != 1800 {
		t.Fatalf("hour 9: expected 1800s, got %d", byHour[9])
	}
	for h, v := range byHour {
		if h != 9 && v != 0 {
			t.Fatalf("hour %d should be empty, got %d", h, v)
		}
	}
}

func TestHourlyDistributionSplitsAcrossHours(t *testing.T) {
	// 09:30 to 11:15: 30min in hour 9, full hour 10, 15min in hour 11.
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 09:30", "2024-01-01 11:15"),
	})
	items := FileActivity(ctx, "Alpha", "2024-01-01")
	byHour := items[0].TimeByHour
	if byHour[9] != 1800 || byHour[10] != 3600 || byHour[11] != 900 {
		t.Fatalf("unexpected split: h9=%d h10=%d h11=%d", byHour[9], byHour[10], byHour[11])
	}

	// Buckets must sum back to the session duration.
	var sum int64
	for _, v := range byHour {
		sum += v
	}
	if sum != items[0].Seconds {
		t.Fatalf("buckets sum %d != duration %d", sum, items[0].Seconds)
	}
}

func TestHourlyDistributionUsesReportingTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 14:00", "2024-01-01 15:00"), // 09:00 local
	})
	ctx.Location = loc

	items := FileActivity(ctx, "Alpha", "2024-01-01")
	if len(items) != 1 {
		t.Fatalf("expected 1 file, got %d", len(items))
	}
	if items[0].TimeByHour[9] != 3600 {
		t.Fatalf("expected hour 9 local, got %v", items[0].TimeByHour)
	}
}

// ============================================================
// URLActivity
// ============================================================

func TestURLActivityGroupsByExactURL(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		browsingRec(t, "https://docs.example.com/a", "2024-01-01 09:00", "2024-01-01 09:20"),
		browsingRec(t, "https://docs.example.com/a", "2024-01-01 09:45", "2024-01-01 10:00"),
		browsingRec(t, "https://docs.example.com/b", "2024-01-01 09:00", "2024-01-01 09:05"),
	})

	items := URLActivity(ctx, "Alpha", "2024-01-01")
	if len(items) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(items))
	}
	if items[0].Name != "https://docs.example.com/a" || items[0].Seconds != 35*60 {
		t.Fatalf("unexpected top url: %+v", items[0])
	}
}

func TestURLActivityIgnoresCodingRecords(t *testing.T) {
	ctx := ctxWith([]store.ActivityRecord{
		codingRec(t, "main.go", "2024-01-01 09:00", "2024-01-01 09:30"),
	})
	if items := URLActivity(ctx, "Alpha", "2024-01-01"); len(items) != 0 {
		t.Fatalf("coding records must not appear in url activity: %+v", items)
	}
}
