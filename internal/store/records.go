package store

import (
	"fmt"
	"strings"
	"time"
)

// InsertRecord appends a raw activity record and returns it with its
// store-assigned id.
func (s *Store) InsertRecord(r ActivityRecord) (*ActivityRecord, error) {
	if r.Project == "" {
		return nil, fmt.Errorf("insert record: empty project")
	}
	if !r.Type.Valid() {
		return nil, fmt.Errorf("insert record: unknown type %q", r.Type)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO activity_records (project, type, start_time, end_time, file, url, host, meeting_title, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Project, string(r.Type),
		r.Start.UTC().Format(time.RFC3339), r.End.UTC().Format(time.RFC3339),
		r.File, r.URL, r.Host, r.MeetingTitle, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetRecord(id)
}

func (s *Store) GetRecord(id int64) (*ActivityRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, project, type, start_time, end_time, file, url, host, meeting_title, created_at
		 FROM activity_records WHERE id = ?`, id,
	)
	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return r, nil
}

// ListRecords returns records matching the filter, ascending by start time.
func (s *Store) ListRecords(f RecordFilter) ([]ActivityRecord, error) {
	query := `SELECT id, project, type, start_time, end_time, file, url, host, meeting_title, created_at
	          FROM activity_records WHERE 1=1`
	var args []any

	if f.Project != "" {
		query += ` AND project = ?`
		args = append(args, f.Project)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []ActivityRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// ReassignRecords moves every record whose id is in ids to newProject.
// The move runs in a single transaction so a concurrent read never sees a
// partial move. An empty id set is a no-op; a blank target is rejected
// before anything is touched. Returns the number of records moved.
func (s *Store) ReassignRecords(ids []int64, newProject string) (int64, error) {
	if strings.TrimSpace(newProject) == "" {
		return 0, fmt.Errorf("reassign records: empty target project")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("reassign records: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, newProject)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := tx.Exec(
		`UPDATE activity_records SET project = ? WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reassign records: %w", err)
	}
	moved, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reassign records: %w", err)
	}
	return moved, nil
}

// ProjectSummaries returns one rollup row per distinct project, ordered by
// total raw seconds descending. Ignored projects are included; filtering
// is the aggregation layer's concern.
func (s *Store) ProjectSummaries() ([]ProjectSummary, error) {
	rows, err := s.db.Query(`
		SELECT project, COUNT(*),
		       COALESCE(SUM(MAX(0, strftime('%s', end_time) - strftime('%s', start_time))), 0),
		       MAX(start_time)
		FROM activity_records
		GROUP BY project
		ORDER BY 3 DESC, project`,
	)
	if err != nil {
		return nil, fmt.Errorf("project summaries: %w", err)
	}
	defer rows.Close()

	var summaries []ProjectSummary
	for rows.Next() {
		var ps ProjectSummary
		var lastActive string
		if err := rows.Scan(&ps.Project, &ps.RecordCount, &ps.TotalSeconds, &lastActive); err != nil {
			return nil, err
		}
		ps.LastActive, _ = time.Parse(time.RFC3339, lastActive)
		summaries = append(summaries, ps)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ActivityRecord, error) {
	r := &ActivityRecord{}
	var typ, start, end, createdAt string
	err := row.Scan(&r.ID, &r.Project, &typ, &start, &end, &r.File, &r.URL, &r.Host, &r.MeetingTitle, &createdAt)
	if err != nil {
		return nil, err
	}
	r.Type = ActivityType(typ)
	r.Start, _ = time.Parse(time.RFC3339, start)
	r.End, _ = time.Parse(time.RFC3339, end)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}
