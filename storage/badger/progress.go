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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
)

// ProgressRepository implements storage.ProgressRepository using BadgerDB.
//
// Each record is stored under its ID, plus a per-student index key ordered by
// timestamp so counts and recent queries only touch that student's entries.
type ProgressRepository struct {
	backend *Backend
	qaSeq   *badger.Sequence
	quizSeq *badger.Sequence
}

var _ storage.ProgressRepository = (*ProgressRepository)(nil)

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(backend *Backend) (*ProgressRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	qaSeq, err := backend.GetSequence(qaIDSeq)
	if err != nil {
		return nil, err
	}
	quizSeq, err := backend.GetSequence(quizIDSeq)
	if err != nil {
		qaSeq.Release()
		return nil, err
	}
	return &ProgressRepository{
		backend: backend,
		qaSeq:   qaSeq,
		quizSeq: quizSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ProgressRepository) Close() error {
	return errors.Join(r.qaSeq.Release(), r.quizSeq.Release())
}

// LogQA records a question and answer.
func (r *ProgressRepository) LogQA(ctx context.Context, record *core.QARecord) (*core.QARecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := nextID(r.qaSeq)
		if err != nil {
			return err
		}
		record.Id = core.ID(id)
		if record.Timestamp.IsZero() {
			record.Timestamp = time.Now().UTC()
		}

		value, err := storage.MarshalQARecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(makeIDKey(qaRecordPrefix, record.Id), value); err != nil {
			return err
		}
		indexKey := makeStudentTimeKey(qaStudentPrefix, record.StudentId, record.Timestamp, record.Id)
		if err := tx.Set(indexKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// LogQuiz records a quiz attempt.
func (r *ProgressRepository) LogQuiz(ctx context.Context, record *core.QuizRecord) (*core.QuizRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := nextID(r.quizSeq)
		if err != nil {
			return err
		}
		record.Id = core.ID(id)
		if record.Timestamp.IsZero() {
			record.Timestamp = time.Now().UTC()
		}

		value, err := storage.MarshalQuizRecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(makeIDKey(quizRecordPrefix, record.Id), value); err != nil {
			return err
		}
		indexKey := makeStudentTimeKey(quizStudentPrefix, record.StudentId, record.Timestamp, record.Id)
		if err := tx.Set(indexKey, storage.MarshalID(record.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateQuizResult sets the Correct flag of a logged attempt.
func (r *ProgressRepository) UpdateQuizResult(ctx context.Context, id core.ID, correct bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIDKey(quizRecordPrefix, id)
		record, err := readQuizRecord(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		record.Correct = correct
		value, err := storage.MarshalQuizRecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountQA returns the number of logged questions for a student.
func (r *ProgressRepository) CountQA(ctx context.Context, studentID string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeStudentPrefix(qaStudentPrefix, studentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// QuizStats returns the number of attempts and correct attempts for a student.
func (r *ProgressRepository) QuizStats(ctx context.Context, studentID string) (int, int, error) {
	total, correct := 0, 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeStudentPrefix(quizStudentPrefix, studentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			record, err := readQuizRecord(tx, makeIDKey(quizRecordPrefix, id))
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			total++
			if record.Correct {
				correct++
			}
		}
		return nil
	}, false)
	return total, correct, err
}

// RecentQA returns up to limit logged questions for a student, newest first.
func (r *ProgressRepository) RecentQA(ctx context.Context, studentID string, limit int) ([]*core.QARecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	var results []*core.QARecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeStudentPrefix(qaStudentPrefix, studentID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefixEnd(prefix)); iter.Valid() && len(results) < limit; iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			value, err := getValue(tx, makeIDKey(qaRecordPrefix, id))
			if err != nil {
				return err
			}
			if value == nil {
				continue
			}
			record, err := storage.UnmarshalQARecord(value)
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}

// readQuizRecord reads a quiz record from the transaction.
func readQuizRecord(tx *badger.Txn, key []byte) (*core.QuizRecord, error) {
	value, err := getValue(tx, key)
	if err != nil || value == nil {
		return nil, err
	}
	return storage.UnmarshalQuizRecord(value)
}
