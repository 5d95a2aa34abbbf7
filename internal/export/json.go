package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tempo/internal/model"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Sessions   []jsonEntry `json:"sessions"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Project     string `json:"project"`
	ProjectID   string `json:"project_id"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(sessions []model.Session, projects map[string]model.Project, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		projectName := "Unknown"
		if s.Type != model.TypeWork {
			projectName = "Break"
		}
		if p, ok := projects[s.ProjectID]; ok {
			projectName = p.Name
		}

		export.Sessions = append(export.Sessions, jsonEntry{
			ID:          s.ID,
			Project:     projectName,
			ProjectID:   s.ProjectID,
			Type:        s.Type.String(),
			Date:        s.Date,
			StartTime:   s.StartTime.Local().Format(time.RFC3339),
			EndTime:     s.EndTime.Local().Format(time.RFC3339),
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
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
