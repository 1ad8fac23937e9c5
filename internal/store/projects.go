package store

import (
	"fmt"
	"time"
)

// IgnoreProject adds a project to the ignored set. Ignoring is a read-time
// filter; the project's records are untouched. Ignoring an already-ignored
// project is a no-op.
func (s *Store) IgnoreProject(name string) error {
	if name == "" {
		return fmt.Errorf("ignore project: empty name")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO ignored_projects (project_name, ignored_at) VALUES (?, ?)
		 ON CONFLICT(project_name) DO NOTHING`,
		name, now,
	)
	if err != nil {
		return fmt.Errorf("ignore project: %w", err)
	}
	return nil
}

func (s *Store) UnignoreProject(name string) error {
	_, err := s.db.Exec(`DELETE FROM ignored_projects WHERE project_name = ?`, name)
	if err != nil {
		return fmt.Errorf("unignore project: %w", err)
	}
	return nil
}

func (s *Store) ListIgnoredProjects() ([]IgnoredProject, error) {
	rows, err := s.db.Query(`SELECT id, project_name, ignored_at FROM ignored_projects ORDER BY project_name`)
	if err != nil {
		return nil, fmt.Errorf("list ignored projects: %w", err)
	}
	defer rows.Close()

	var ignored []IgnoredProject
	for rows.Next() {
		var ip IgnoredProject
		var at string
		if err := rows.Scan(&ip.ID, &ip.ProjectName, &at); err != nil {
			return nil, err
		}
		ip.IgnoredAt, _ = time.Parse(time.RFC3339, at)
		ignored = append(ignored, ip)
	}
	return ignored, rows.Err()
}

// IgnoredSet returns the ignored project names as a lookup set.
func (s *Store) IgnoredSet() (map[string]bool, error) {
	ignored, err := s.ListIgnoredProjects()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ignored))
	for _, ip := range ignored {
		set[ip.ProjectName] = true
	}
	return set, nil
}

// SetCustomName sets (or clears, when customName is empty) the display name
// override for a project.
func (s *Store) SetCustomName(project, customName string) error {
	if customName == "" {
		_, err := s.db.Exec(`DELETE FROM project_names WHERE project_name = ?`, project)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO project_names (project_name, custom_name) VALUES (?, ?)
		 ON CONFLICT(project_name) DO UPDATE SET custom_name = excluded.custom_name`,
		project, customName,
	)
	if err != nil {
		return fmt.Errorf("set custom name: %w", err)
	}
	return nil
}

// CustomNames returns the project -> display name overrides.
func (s *Store) CustomNames() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT project_name, custom_name FROM project_names`)
	if err != nil {
		return nil, fmt.Errorf("list custom names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var project, custom string
		if err := rows.Scan(&project, &custom); err != nil {
			return nil, err
		}
		names[project] = custom
	}
	return names, rows.Err()
}

func (s *Store) SetClient(project, client string) error {
	if client == "" {
		_, err := s.db.Exec(`DELETE FROM project_clients WHERE project_name = ?`, project)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO project_clients (project_name, client) VALUES (?, ?)
		 ON CONFLICT(project_name) DO UPDATE SET client = excluded.client`,
		project, client,
	)
	if err != nil {
		return fmt.Errorf("set client: %w", err)
	}
	return nil
}

func (s *Store) Clients() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT project_name, client FROM project_clients`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make(map[string]string)
	for rows.Next() {
		var project, client string
		if err := rows.Scan(&project, &client); err != nil {
			return nil, err
		}
		clients[project] = client
	}
	return clients, rows.Err()
}

func (s *Store) SetWrikeMapping(project, wrikeID, permalink string) error {
	_, err := s.db.Exec(
		`INSERT INTO wrike_mappings (project_name, wrike_id, permalink) VALUES (?, ?, ?)
		 ON CONFLICT(project_name) DO UPDATE SET wrike_id = excluded.wrike_id, permalink = excluded.permalink`,
		project, wrikeID, permalink,
	)
	if err != nil {
		return fmt.Errorf("set wrike mapping: %w", err)
	}
	return nil
}

func (s *Store) WrikeMappings() ([]WrikeMapping, error) {
	rows, err := s.db.Query(`SELECT project_name, wrike_id, permalink FROM wrike_mappings ORDER BY project_name`)
	if err != nil {
		return nil, fmt.Errorf("list wrike mappings: %w", err)
	}
	defer rows.Close()

	var mappings []WrikeMapping
	for rows.Next() {
		var m WrikeMapping
		if err := rows.Scan(&m.ProjectName, &m.WrikeID, &m.Permalink); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
