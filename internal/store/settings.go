package store

import (
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// IdleTimeout returns the configured idle threshold. Aggregation callers
// re-read this on every computation rather than caching it.
func (s *Store) IdleTimeout() time.Duration {
	v, err := s.GetSetting("idle_timeout")
	if err != nil {
		return 10 * time.Minute
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(secs) * time.Second
}

// ReportingLocation returns the timezone all day bucketing happens in.
// Falls back to UTC when the setting is missing or unloadable.
func (s *Store) ReportingLocation() *time.Location {
	v, err := s.GetSetting("reporting_timezone")
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekStartDay returns the configured first day of the week. Anything
// other than "sunday" means Monday.
func (s *Store) WeekStartDay() time.Weekday {
	v, err := s.GetSetting("week_start")
	if err == nil && v == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// DailyTargetSeconds returns the configured weekday target, default 8h.
func (s *Store) DailyTargetSeconds() int64 {
	v, err := s.GetSetting("daily_target")
	if err != nil {
		return 28800
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs < 0 {
		return 28800
	}
	return secs
}
