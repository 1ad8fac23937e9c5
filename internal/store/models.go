package store

import "time"

// ActivityType is the kind of work a record captures.
type ActivityType string

const (
	TypeCoding   ActivityType = "coding"
	TypeBrowsing ActivityType = "browsing"
	TypeMeeting  ActivityType = "meeting"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeCoding, TypeBrowsing, TypeMeeting:
		return true
	}
	return false
}

// ActivityRecord is a raw timestamped activity interval. Records are
// append-only; the only field ever mutated after insert is Project
// (via ReassignRecords).
type ActivityRecord struct {
	ID           int64
	Project      string
	Type         ActivityType
	Start        time.Time
	End          time.Time
	File         string // coding only, relative path
	URL          string // browsing/meeting only
	Host         string // browsing/meeting only
	MeetingTitle string // meeting only
	CreatedAt    time.Time
}

// Seconds returns the record's raw duration in seconds, clamped to zero
// when End precedes Start.
func (r ActivityRecord) Seconds() int64 {
	d := int64(r.End.Sub(r.Start).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

type IgnoredProject struct {
	ID          int64
	ProjectName string
	IgnoredAt   time.Time
}

// ProjectName maps a raw project name to a display name.
type ProjectName struct {
	ProjectName string
	CustomName  string
}

type ProjectClient struct {
	ProjectName string
	Client      string
}

// WrikeMapping links a project to a Wrike task. Opaque lookup data, no
// behavior attached.
type WrikeMapping struct {
	ProjectName string
	WrikeID     string
	Permalink   string
}

type URLPattern struct {
	ID      int64
	Project string
	Pattern string
}

type MeetingPattern struct {
	ID         int64
	Project    string
	Pattern    string
	AutoAssign bool
	LastUsed   *time.Time
}

type Setting struct {
	Key   string
	Value string
}

// RecordFilter restricts ListRecords. Zero values mean "no constraint".
type RecordFilter struct {
	Project string
	Type    ActivityType
	From    *time.Time
	To      *time.Time
	Limit   int
}

// ProjectSummary is a per-project rollup of raw record data, used by the
// projects view and /api/projects.
type ProjectSummary struct {
	Project      string
	RecordCount  int
	TotalSeconds int64
	LastActive   time.Time
}
