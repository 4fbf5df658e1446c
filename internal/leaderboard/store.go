package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultPath  = "data/madbench.db"
	defaultLimit = 50
)

// Store keeps one summary row per experiment run in SQLite.
type Store struct {
	db *sql.DB
}

type Entry struct {
	ID         int64
	RunID      string
	Dataset    string
	Model      string
	JudgeModel string
	SampleSize int
	Accuracy   float64
	AvgRounds  float64
	Failed     int
	DurationMs int64
	CreatedAt  time.Time
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("leaderboard: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("leaderboard: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leaderboard: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("leaderboard: nil db")
	}

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS run_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			dataset TEXT NOT NULL,
			model TEXT NOT NULL,
			judge_model TEXT NOT NULL DEFAULT '',
			sample_size INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			avg_rounds REAL NOT NULL,
			failed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_summaries_dataset ON run_summaries(dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_run_summaries_created_at ON run_summaries(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("leaderboard: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if s == nil || s.db == nil {
		return errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return errors.New("leaderboard: nil context")
	}
	if entry == nil {
		return errors.New("leaderboard: nil entry")
	}

	runID := strings.TrimSpace(entry.RunID)
	dataset := strings.TrimSpace(entry.Dataset)
	model := strings.TrimSpace(entry.Model)
	if runID == "" || dataset == "" || model == "" {
		return errors.New("leaderboard: missing run_id/dataset/model")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO run_summaries (
			run_id, dataset, model, judge_model, sample_size,
			accuracy, avg_rounds, failed, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, dataset, model, strings.TrimSpace(entry.JudgeModel), entry.SampleSize,
		entry.Accuracy, entry.AvgRounds, entry.Failed, entry.DurationMs, createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("leaderboard: insert run summary: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.RunID = runID
	entry.Dataset = dataset
	entry.Model = model
	entry.CreatedAt = createdAt
	return nil
}

// List returns recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, dataset, model, judge_model, sample_size,
		       accuracy, avg_rounds, failed, duration_ms, created_at
		FROM run_summaries
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query runs: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Get returns the summary for one run id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, runID string) (*Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("leaderboard: empty run id")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, dataset, model, judge_model, sample_size,
		       accuracy, avg_rounds, failed, duration_ms, created_at
		FROM run_summaries
		WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query run: %w", err)
	}
	defer rows.Close()

	entries, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var createdMS int64
		if err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Dataset,
			&e.Model,
			&e.JudgeModel,
			&e.SampleSize,
			&e.Accuracy,
			&e.AvgRounds,
			&e.Failed,
			&e.DurationMs,
			&createdMS,
		); err != nil {
			return nil, fmt.Errorf("leaderboard: scan entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdMS).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}
