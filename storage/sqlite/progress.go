// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sqlite implements storage.ProgressRepository on a SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS qa_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS qa_log_student ON qa_log(student_id, timestamp);
CREATE TABLE IF NOT EXISTS quiz_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	question   TEXT NOT NULL,
	correct    INTEGER NOT NULL DEFAULT 0,
	timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_log_student ON quiz_log(student_id);
`

// InMemory is the DSN for a private in-memory database.
const InMemory = ":memory:"

// ProgressRepository stores the study log in qa_log and quiz_log tables.
type ProgressRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.ProgressRepository = (*ProgressRepository)(nil)

// Open opens (or creates) a SQLite progress database at path.
// Pass InMemory for a throwaway database.
func Open(path string) (*ProgressRepository, error) {
	if path != InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	repo, err := NewProgressRepository(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewProgressRepository wraps an open database and ensures the schema exists.
func NewProgressRepository(db *sql.DB) (*ProgressRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: %w", storage.ErrStorageClosed)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}
	return &ProgressRepository{
		db:     db,
		logger: slog.Default().With("component", "sqlite-progress"),
	}, nil
}

// Close closes the underlying database.
func (r *ProgressRepository) Close() error {
	return r.db.Close()
}

// LogQA inserts a row into qa_log.
func (r *ProgressRepository) LogQA(ctx context.Context, record *core.QARecord) (*core.QARecord, error) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO qa_log(student_id, question, answer, timestamp) VALUES(?, ?, ?, ?)`,
		record.StudentId, record.Question, record.Answer, formatTime(record.Timestamp))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	record.Id = core.ID(id)
	return record, nil
}

// LogQuiz inserts a row into quiz_log.
func (r *ProgressRepository) LogQuiz(ctx context.Context, record *core.QuizRecord) (*core.QuizRecord, error) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO quiz_log(student_id, question, correct, timestamp) VALUES(?, ?, ?, ?)`,
		record.StudentId, record.Question, boolToInt(record.Correct), formatTime(record.Timestamp))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	record.Id = core.ID(id)
	return record, nil
}

// UpdateQuizResult sets the correct column of one attempt.
func (r *ProgressRepository) UpdateQuizResult(ctx context.Context, id core.ID, correct bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE quiz_log SET correct = ? WHERE id = ?`, boolToInt(correct), int64(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountQA returns the number of qa_log rows for a student.
func (r *ProgressRepository) CountQA(ctx context.Context, studentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_log WHERE student_id = ?`, studentID).Scan(&count)
	return count, err
}

// QuizStats returns attempt and correct counts from quiz_log for a student.
func (r *ProgressRepository) QuizStats(ctx context.Context, studentID string) (int, int, error) {
	var total int
	var correct sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(correct) FROM quiz_log WHERE student_id = ?`, studentID).Scan(&total, &correct)
	if err != nil {
		return 0, 0, err
	}
	return total, int(correct.Int64), nil
}

// RecentQA returns up to limit qa_log rows for a student, newest first.
func (r *ProgressRepository) RecentQA(ctx context.Context, studentID string, limit int) ([]*core.QARecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, question, answer, timestamp FROM qa_log
		 WHERE student_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.QARecord
	for rows.Next() {
		var (
			rec core.QARecord
			id  int64
			ts  string
		)
		if err := rows.Scan(&id, &rec.StudentId, &rec.Question, &rec.Answer, &ts); err != nil {
			return nil, err
		}
		rec.Id = core.ID(id)
		if rec.Timestamp, err = parseTime(ts); err != nil {
			r.logger.Warn("unparseable qa_log timestamp", "id", id, "timestamp", ts)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// formatTime writes fixed-width UTC timestamps so text ordering matches time ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}

// Zone-less layouts written by older loggers; these are read as local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if naive, naiveErr := time.ParseInLocation(layout, s, time.Local); naiveErr == nil {
			return naive, nil
		}
	}
	return time.Time{}, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
