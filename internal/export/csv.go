package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tempo/internal/model"
)

func ToCSV(sessions []model.Session, projects map[string]model.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Project", "Type", "Date", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, s := range sessions {
		projectName := "Unknown"
		if s.Type != model.TypeWork {
			projectName = "Break"
		}
		if p, ok := projects[s.ProjectID]; ok {
			projectName = p.Name
		}

		row := []string{
			s.ID,
			projectName,
			s.Type.String(),
			s.Date,
			s.StartTime.Local().Format(time.RFC3339),
			s.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.Duration),
			formatDuration(s.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
