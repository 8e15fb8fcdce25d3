package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/evdemand/core/model"
)

// SessionWriter dumps cleaned sessions to a directory as CSV so the repaired
// table can be inspected or re-ingested.
type SessionWriter struct {
	Dir      string
	FileName string
}

// Save writes the sessions and returns the file path.
func (w SessionWriter) Save(_ context.Context, sessions []model.Session) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	name := w.FileName
	if name == "" {
		name = "sessions.csv"
	}
	path := filepath.Join(w.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteSessions(f, sessions); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// WriteSessions writes the cleaned session table to w.
func WriteSessions(w io.Writer, sessions []model.Session) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "start_plugin", "end_plugout", "el_kwh", "duration_hours",
		"user_type", "plug_category", "duration_category",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sessions {
		rec := []string{
			s.ID,
			s.StartPlugin.Format(time.RFC3339),
			formatTime(s.EndPlugout),
			formatOptFloat(s.EnergyKWh),
			formatOptFloat(s.DurationHours),
			s.UserType.String(),
			s.PlugCategory.String(),
			s.DurationCategory.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
