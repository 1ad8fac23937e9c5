package report

import (
	"sort"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// Session is a contiguous logical work period formed by merging one or more
// raw records of the same type. Metadata (file/url/host) comes from the
// first constituent record.
type Session struct {
	Start   time.Time          `json:"start"`
	End     time.Time          `json:"end"`
	Type    store.ActivityType `json:"type"`
	Project string             `json:"project"`
	File    string             `json:"file,omitempty"`
	URL     string             `json:"url,omitempty"`
	Host    string             `json:"host,omitempty"`
}

// Seconds returns the session's duration in whole seconds.
func (s Session) Seconds() int64 {
	d := int64(s.End.Sub(s.Start).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

// MergeSessions collapses records separated by a gap of at most idleTimeout
// into single sessions. Only same-type records merge: a browsing record
// next to a coding record is a semantic boundary, however small the gap.
//
// The merge is deterministic and idempotent. Records with End before Start
// are clamped to zero duration rather than rejected; a gap exactly equal to
// idleTimeout still merges. Callers that need per-day scoping bucket the
// records before calling (see BuildStats).
func MergeSessions(records []store.ActivityRecord, idleTimeout time.Duration) []Session {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]store.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	cur := newSession(sorted[0])
	var out []Session
	for _, r := range sorted[1:] {
		end := clampEnd(r)
		gap := r.Start.Sub(cur.End)
		if gap <= idleTimeout && r.Type == cur.Type {
			// Extend, tolerating out-of-order end times.
			if end.After(cur.End) {
				cur.End = end
			}
			continue
		}
		out = append(out, cur)
		cur = newSession(r)
	}
	return append(out, cur)
}

func newSession(r store.ActivityRecord) Session {
	return Session{
		Start:   r.Start,
		End:     clampEnd(r),
		Type:    r.Type,
		Project: r.Project,
		File:    r.File,
		URL:     r.URL,
		Host:    r.Host,
	}
}

// clampEnd treats a record with End before Start as zero duration.
func clampEnd(r store.ActivityRecord) time.Time {
	if r.End.Before(r.Start) {
		return r.Start
	}
	return r.End
}

// SumSessions totals merged session durations in seconds.
func SumSessions(sessions []Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.Seconds()
	}
	return total
}
