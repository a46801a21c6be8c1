package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// TrainingSample is a labeled feature vector row. Rows are immutable once
// written; a correction is a new row, never an update.
type TrainingSample struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label"`
	UserID     string    `json:"user_id"`
	Confidence float64   `json:"confidence"`
	Features   []float64 `json:"features"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SampleRepository provides access to the durable per-label datasets.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append inserts a batch of samples for one label in a single transaction.
// A session flush is all-or-nothing: either every buffered sample lands in
// the dataset or none does.
func (r *SampleRepository) Append(label string, samples []TrainingSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO training_samples (label, user_id, confidence, features, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		features, err := json.Marshal(s.Features)
		if err != nil {
			return fmt.Errorf("encode features for %s: %w", label, err)
		}
		if _, err := stmt.Exec(label, s.UserID, s.Confidence, string(features), s.RecordedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ByLabel retrieves all samples for a label, oldest first.
func (r *SampleRepository) ByLabel(label string) ([]TrainingSample, error) {
	rows, err := r.db.Query(
		`SELECT id, label, user_id, confidence, features, recorded_at
		 FROM training_samples
		 WHERE label = ?
		 ORDER BY recorded_at, id`,
		label,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []TrainingSample
	for rows.Next() {
		var s TrainingSample
		var features string
		if err := rows.Scan(&s.ID, &s.Label, &s.UserID, &s.Confidence, &features, &s.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &s.Features); err != nil {
			return nil, fmt.Errorf("decode features for sample %d: %w", s.ID, err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// CountByLabel returns the number of recorded samples per label.
func (r *SampleRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT label, COUNT(*) FROM training_samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Labels returns every label that has at least one recorded sample.
func (r *SampleRepository) Labels() ([]string, error) {
	rows, err := r.db.Query(
		`SELECT DISTINCT label FROM training_samples ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return labels, nil
}
