// Package csv reads raw charging session exports and writes the derived
// feature table. Exports are semicolon-separated with comma decimals and
// day-first timestamps, as produced by the charge point operator.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/model"
)

// timestamp layouts tried in order, day first.
var timeLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Reader loads raw sessions from a CSV export.
type Reader struct {
	Path string
	Log  logger.Logger
}

// Load reads and parses the configured file. Field names are normalized
// (lower-cased, whitespace to underscores) before lookup, so exports with
// cosmetic header differences parse identically. Unparsable numeric values
// become missing, not errors; the cleaner decides what is repairable.
func (r Reader) Load(ctx context.Context) ([]model.Session, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return r.parse(ctx, f)
}

func (r Reader) parse(ctx context.Context, src io.Reader) ([]model.Session, error) {
	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeField(h)] = i
	}
	if _, ok := cols["start_plugin"]; !ok {
		return nil, fmt.Errorf("csv is missing the start_plugin column")
	}

	var sessions []model.Session
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		start, err := parseTime(field("start_plugin"))
		if err != nil {
			if r.Log != nil {
				r.Log.Warnf("line %d: unparsable start_plugin %q, skipping", line, field("start_plugin"))
			}
			continue
		}

		s := model.Session{
			ID:               field("session_id"),
			StartPlugin:      start,
			EnergyKWh:        parseDecimal(field("el_kwh")),
			DurationHours:    parseDecimal(field("duration_hours")),
			UserType:         model.ParseUserType(field("user_type")),
			PlugCategory:     model.ParsePlugCategory(field("plugin_category")),
			DurationCategory: model.ParseDurationCategory(field("duration_category")),
		}
		if end, err := parseTime(field("end_plugout")); err == nil {
			s.EndPlugout = &end
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func normalizeField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// parseDecimal accepts comma or dot decimal separators. Anything else is
// treated as missing.
func parseDecimal(s string) *float64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
