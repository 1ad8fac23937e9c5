// Package classify maps URLs and meeting links to project names by
// substring matching against configured patterns. Matching is pure;
// recording pattern usage (last_used) is a separate store call made by the
// caller after a successful match.
package classify

import (
	"strings"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// URL returns the project of the longest configured pattern contained in
// url. Longest-match-wins keeps a generic pattern ("google.com") from
// shadowing a more specific one ("meet.google.com/abc"). Ties go to the
// first-registered pattern. Returns ok=false when nothing matches; the
// caller decides the fallback project.
func URL(url string, patterns []store.URLPattern) (project string, ok bool) {
	best := -1
	for _, p := range patterns {
		if p.Pattern == "" || !strings.Contains(url, p.Pattern) {
			continue
		}
		if len(p.Pattern) > best {
			best = len(p.Pattern)
			project = p.Project
			ok = true
		}
	}
	return project, ok
}

// Meeting matches like URL but only considers patterns with AutoAssign set.
// It returns the winning pattern so the caller can record its usage.
func Meeting(url string, patterns []store.MeetingPattern) (*store.MeetingPattern, bool) {
	best := -1
	var won *store.MeetingPattern
	for i := range patterns {
		p := &patterns[i]
		if !p.AutoAssign || p.Pattern == "" || !strings.Contains(url, p.Pattern) {
			continue
		}
		if len(p.Pattern) > best {
			best = len(p.Pattern)
			won = p
		}
	}
	return won, won != nil
}
