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


// Package tracking records a student's questions and quiz attempts and
// summarizes them as progress.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
)

// ErrRepositoryRequired is returned when a progress repository is not provided.
var ErrRepositoryRequired = errors.New("progress repository required")

// Tracker logs study activity to a ProgressRepository.
type Tracker struct {
	repo   storage.ProgressRepository
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// NewTracker creates a tracker over repo.
func NewTracker(repo storage.ProgressRepository, opts ...Option) (*Tracker, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	t := &Tracker{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	t.logger = t.logger.With("component", "tracker")
	return t, nil
}

// LogQA records an answered question.
func (t *Tracker) LogQA(ctx context.Context, studentID, question, answer string) (*core.QARecord, error) {
	rec := &core.QARecord{
		StudentId: studentID,
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	}
	if err := core.ValidateQARecord(rec); err != nil {
		return nil, err
	}
	rec, err := t.repo.LogQA(ctx, rec)
	if err != nil {
		t.logger.Error("error logging question", "student", studentID, "err", err)
		return nil, fmt.Errorf("logging question: %w", err)
	}
	return rec, nil
}

// LogQuiz records an ungraded quiz attempt on topic.
func (t *Tracker) LogQuiz(ctx context.Context, studentID, topic string) (*core.QuizRecord, error) {
	rec := &core.QuizRecord{
		StudentId: studentID,
		Question:  topic,
		Timestamp: time.Now().UTC(),
	}
	if err := core.ValidateQuizRecord(rec); err != nil {
		return nil, err
	}
	rec, err := t.repo.LogQuiz(ctx, rec)
	if err != nil {
		t.logger.Error("error logging quiz attempt", "student", studentID, "err", err)
		return nil, fmt.Errorf("logging quiz attempt: %w", err)
	}
	return rec, nil
}

// Grade marks a logged attempt correct or incorrect.
func (t *Tracker) Grade(ctx context.Context, attemptID core.ID, correct bool) error {
	if err := t.repo.UpdateQuizResult(ctx, attemptID, correct); err != nil {
		return fmt.Errorf("grading attempt %d: %w", attemptID, err)
	}
	t.logger.Debug("quiz attempt graded", "attempt", attemptID, "correct", correct)
	return nil
}

// Progress summarizes a student's activity. Accuracy is 0 when the student
// has no quiz attempts.
func (t *Tracker) Progress(ctx context.Context, studentID string) (core.Progress, error) {
	if studentID == "" {
		return core.Progress{}, core.ErrEmptyStudentID
	}
	totalQA, err := t.repo.CountQA(ctx, studentID)
	if err != nil {
		return core.Progress{}, err
	}
	total, correct, err := t.repo.QuizStats(ctx, studentID)
	if err != nil {
		return core.Progress{}, err
	}
	return core.Progress{
		StudentId:   studentID,
		TotalQA:     totalQA,
		TotalQuiz:   total,
		CorrectQuiz: correct,
		Accuracy:    Accuracy(correct, total),
	}, nil
}

// History returns up to limit of the student's most recent questions.
func (t *Tracker) History(ctx context.Context, studentID string, limit int) ([]*core.QARecord, error) {
	return t.repo.RecentQA(ctx, studentID, limit)
}

// Accuracy returns correct/total as a percentage rounded to 2 decimals.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
