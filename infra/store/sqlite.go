package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/evdemand/core/registry"
)

// SQLiteStore persists training run metrics and the promotion log in a
// SQLite database. The single database writer also serializes promotions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name TEXT NOT NULL,
        model_path TEXT NOT NULL,
        test_data TEXT,
        mae REAL,
        rmse REAL,
        r2 REAL,
        created INTEGER NOT NULL
    );
    CREATE TABLE IF NOT EXISTS promotions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER NOT NULL,
        model_name TEXT NOT NULL,
        model_path TEXT NOT NULL,
        mae REAL,
        rmse REAL,
        r2 REAL,
        test_data TEXT,
        metrics_path TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Put inserts one training run record.
func (s *SQLiteStore) Put(ctx context.Context, rec registry.TrainingRunMetrics) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO training_runs
        (model_name, model_path, test_data, mae, rmse, r2, created)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ModelName, rec.ModelPath, rec.TestData, rec.MAE, rec.RMSE, rec.R2,
		time.Now().UTC().Unix())
	return err
}

// List returns records in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]registry.TrainingRunMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, model_name, model_path, test_data, mae, rmse, r2
        FROM training_runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []registry.TrainingRunMetrics
	for rows.Next() {
		var id int64
		var rec registry.TrainingRunMetrics
		if err := rows.Scan(&id, &rec.ModelName, &rec.ModelPath, &rec.TestData, &rec.MAE, &rec.RMSE, &rec.R2); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Append inserts one promotion event.
func (s *SQLiteStore) Append(ctx context.Context, ev registry.PromotionEvent) error {
	p := ev.Production
	_, err := s.db.ExecContext(ctx, `INSERT INTO promotions
        (ts, model_name, model_path, mae, rmse, r2, test_data, metrics_path)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Timestamp.UTC().Unix(), p.ModelName, p.ModelPath,
		p.Metrics.MAE, p.Metrics.RMSE, p.Metrics.R2, p.TestData, p.MetricsPath)
	return err
}

// Current returns the latest promotion.
func (s *SQLiteStore) Current(ctx context.Context) (registry.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT model_name, model_path, mae, rmse, r2, test_data, metrics_path
        FROM promotions ORDER BY id DESC LIMIT 1`)
	var e registry.Entry
	err := row.Scan(&e.ModelName, &e.ModelPath, &e.Metrics.MAE, &e.Metrics.RMSE, &e.Metrics.R2, &e.TestData, &e.MetricsPath)
	if err == sql.ErrNoRows {
		return registry.Entry{}, registry.ErrNoProduction
	}
	if err != nil {
		return registry.Entry{}, err
	}
	return e, nil
}

// History returns promotions in append order.
func (s *SQLiteStore) History(ctx context.Context) ([]registry.PromotionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, model_name, model_path, mae, rmse, r2, test_data, metrics_path
        FROM promotions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []registry.PromotionEvent
	for rows.Next() {
		var ts int64
		var ev registry.PromotionEvent
		p := &ev.Production
		if err := rows.Scan(&ts, &p.ModelName, &p.ModelPath, &p.Metrics.MAE, &p.Metrics.RMSE, &p.Metrics.R2, &p.TestData, &p.MetricsPath); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(ts, 0).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
