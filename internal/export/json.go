package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	ID          int64  `json:"id"`
	Project     string `json:"project"`
	Type        string `json:"type"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	File        string `json:"file,omitempty"`
	URL         string `json:"url,omitempty"`
	Host        string `json:"host,omitempty"`
	Meeting     string `json:"meeting_title,omitempty"`
}

// ToJSON writes activity records to path as a single JSON document.
func ToJSON(records []store.ActivityRecord, customNames map[string]string, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}

	for _, r := range records {
		export.Records = append(export.Records, jsonRecord{
			ID:          r.ID,
			Project:     displayName(r.Project, customNames),
			Type:        string(r.Type),
			Start:       r.Start.Local().Format(time.RFC3339),
			End:         r.End.Local().Format(time.RFC3339),
			DurationSec: r.Seconds(),
			Duration:    formatDuration(r.Seconds()),
			File:        r.File,
			URL:         r.URL,
			Host:        r.Host,
			Meeting:     r.MeetingTitle,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
