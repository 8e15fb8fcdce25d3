package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kilianp07/evdemand/core/features"
)

// FeatureWriter persists the feature table to a directory as CSV in the
// fixed column order consumed verbatim by training and serving.
type FeatureWriter struct {
	Dir      string
	FileName string
}

// Save writes the table and returns the file path.
func (w FeatureWriter) Save(_ context.Context, rows []features.Row) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	name := w.FileName
	if name == "" {
		name = "features.csv"
	}
	path := filepath.Join(w.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteFeatures(f, rows); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// WriteFeatures writes the feature table to w: the hour index, the target
// and then the predictors in features.Columns order.
func WriteFeatures(w io.Writer, rows []features.Row) error {
	cw := csv.NewWriter(w)
	header := append([]string{"hour", "total_kwh"}, features.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, r.Hour.Format(time.RFC3339), formatFloat(r.TotalKWh))
		for _, v := range r.Vector() {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
