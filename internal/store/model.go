package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ModelRecord is a persisted trained model. The artifact column holds the
// serialized model, fitted parameters included, sufficient to reload and
// activate the model in a fresh process.
type ModelRecord struct {
	ID                string          `json:"id"`
	Version           int             `json:"version"`
	Signature         string          `json:"signature"`
	TrainedAt         time.Time       `json:"trained_at"`
	LabelSet          []string        `json:"label_set"`
	AccuracyOnHoldout float64         `json:"accuracy_on_holdout"`
	HoldoutSize       int             `json:"holdout_size"`
	MinSamplesUsed    int             `json:"min_samples_used"`
	Artifact          json.RawMessage `json:"artifact"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ModelRepository provides access to stored model artifacts and the
// per-signature version counters.
type ModelRepository struct {
	db *sql.DB
}

// Models returns the model repository for this store.
func (s *Store) Models() *ModelRepository {
	return &ModelRepository{db: s.db}
}

// NextVersion increments and returns the version counter for a label-set
// signature. The first model of a signature gets version 1.
func (r *ModelRepository) NextVersion(signature string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO model_versions (signature, version) VALUES (?, 0)
		 ON CONFLICT(signature) DO NOTHING`, signature); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		`UPDATE model_versions SET version = version + 1 WHERE signature = ?`, signature); err != nil {
		return 0, err
	}

	var version int
	if err := tx.QueryRow(
		`SELECT version FROM model_versions WHERE signature = ?`, signature).Scan(&version); err != nil {
		return 0, err
	}

	return version, tx.Commit()
}

// Save inserts a model record. Records are never updated; a retrain inserts
// a new row with a new id.
func (r *ModelRepository) Save(rec ModelRecord) error {
	labels, err := json.Marshal(rec.LabelSet)
	if err != nil {
		return fmt.Errorf("encode label set: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO models (id, version, signature, trained_at, label_set,
		                     accuracy_on_holdout, holdout_size, min_samples_used, artifact)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Version, rec.Signature, rec.TrainedAt, string(labels),
		rec.AccuracyOnHoldout, rec.HoldoutSize, rec.MinSamplesUsed, string(rec.Artifact),
	)
	return err
}

// GetByID retrieves a model record by its id.
func (r *ModelRepository) GetByID(id string) (*ModelRecord, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, version, signature, trained_at, label_set,
		        accuracy_on_holdout, holdout_size, min_samples_used, artifact, created_at
		 FROM models WHERE id = ?`, id))
}

// Latest retrieves the most recently trained model across all signatures.
func (r *ModelRepository) Latest() (*ModelRecord, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, version, signature, trained_at, label_set,
		        accuracy_on_holdout, holdout_size, min_samples_used, artifact, created_at
		 FROM models ORDER BY trained_at DESC, created_at DESC LIMIT 1`))
}

// List retrieves all model records, newest first. Old models are retained
// for rollback and comparison.
func (r *ModelRepository) List() ([]*ModelRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, version, signature, trained_at, label_set,
		        accuracy_on_holdout, holdout_size, min_samples_used, artifact, created_at
		 FROM models ORDER BY trained_at DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ModelRecord
	for rows.Next() {
		rec, err := scanModel(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *ModelRepository) scanOne(row *sql.Row) (*ModelRecord, error) {
	rec, err := scanModel(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanModel(scan func(dest ...any) error) (*ModelRecord, error) {
	rec := &ModelRecord{}
	var labels, artifact string

	err := scan(&rec.ID, &rec.Version, &rec.Signature, &rec.TrainedAt, &labels,
		&rec.AccuracyOnHoldout, &rec.HoldoutSize, &rec.MinSamplesUsed, &artifact, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(labels), &rec.LabelSet); err != nil {
		return nil, fmt.Errorf("decode label set for model %s: %w", rec.ID, err)
	}
	rec.Artifact = json.RawMessage(artifact)

	return rec, nil
}
