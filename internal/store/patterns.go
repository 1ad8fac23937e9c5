package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) AddURLPattern(project, pattern string) (*URLPattern, error) {
	if project == "" || pattern == "" {
		return nil, fmt.Errorf("add url pattern: project and pattern required")
	}
	res, err := s.db.Exec(
		`INSERT INTO url_patterns (project, pattern) VALUES (?, ?)`,
		project, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("add url pattern: %w", err)
	}
	id, _ := res.LastInsertId()
	return &URLPattern{ID: id, Project: project, Pattern: pattern}, nil
}

func (s *Store) DeleteURLPattern(id int64) error {
	_, err := s.db.Exec(`DELETE FROM url_patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete url pattern %d: %w", id, err)
	}
	return nil
}

// ListURLPatterns returns patterns in registration order, which is also the
// classifier's tie-break order.
func (s *Store) ListURLPatterns() ([]URLPattern, error) {
	rows, err := s.db.Query(`SELECT id, project, pattern FROM url_patterns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list url patterns: %w", err)
	}
	defer rows.Close()

	var patterns []URLPattern
	for rows.Next() {
		var p URLPattern
		if err := rows.Scan(&p.ID, &p.Project, &p.Pattern); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *Store) AddMeetingPattern(project, pattern string, autoAssign bool) (*MeetingPattern, error) {
	if project == "" || pattern == "" {
		return nil, fmt.Errorf("add meeting pattern: project and pattern required")
	}
	auto := 0
	if autoAssign {
		auto = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO meeting_patterns (project, pattern, auto_assign) VALUES (?, ?, ?)`,
		project, pattern, auto,
	)
	if err != nil {
		return nil, fmt.Errorf("add meeting pattern: %w", err)
	}
	id, _ := res.LastInsertId()
	return &MeetingPattern{ID: id, Project: project, Pattern: pattern, AutoAssign: autoAssign}, nil
}

func (s *Store) DeleteMeetingPattern(id int64) error {
	_, err := s.db.Exec(`DELETE FROM meeting_patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meeting pattern %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListMeetingPatterns() ([]MeetingPattern, error) {
	rows, err := s.db.Query(
		`SELECT id, project, pattern, auto_assign, last_used FROM meeting_patterns ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list meeting patterns: %w", err)
	}
	defer rows.Close()

	var patterns []MeetingPattern
	for rows.Next() {
		var p MeetingPattern
		var auto int
		var lastUsed sql.NullString
		if err := rows.Scan(&p.ID, &p.Project, &p.Pattern, &auto, &lastUsed); err != nil {
			return nil, err
		}
		p.AutoAssign = auto == 1
		if lastUsed.Valid {
			t, _ := time.Parse(time.RFC3339, lastUsed.String)
			p.LastUsed = &t
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// TouchMeetingPattern records that a pattern matched. Kept separate from
// classification so the matcher stays pure.
func (s *Store) TouchMeetingPattern(id int64, when time.Time) error {
	_, err := s.db.Exec(
		`UPDATE meeting_patterns SET last_used = ? WHERE id = ?`,
		when.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("touch meeting pattern %d: %w", id, err)
	}
	return nil
}
