package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

// ToCSV writes activity records to path. customNames maps raw project
// names to display names; unmapped projects keep their raw name.
func ToCSV(records []store.ActivityRecord, customNames map[string]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Project", "Type", "Start", "End", "Duration (s)", "Duration", "File", "URL"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			displayName(r.Project, customNames),
			string(r.Type),
			r.Start.Local().Format(time.RFC3339),
			r.End.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", r.Seconds()),
			formatDuration(r.Seconds()),
			r.File,
			r.URL,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func displayName(project string, customNames map[string]string) string {
	if name, ok := customNames[project]; ok && name != "" {
		return name
	}
	return project
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
