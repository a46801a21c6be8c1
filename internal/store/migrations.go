package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Training samples table - the durable per-label datasets. Samples
		// are append-only; corrections are recorded as new samples.
		`CREATE TABLE IF NOT EXISTS training_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL DEFAULT 0,
			features TEXT NOT NULL,
			recorded_at DATETIME NOT NULL
		)`,

		// Models table - immutable trained model artifacts, retained for
		// rollback and comparison.
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			signature TEXT NOT NULL,
			trained_at DATETIME NOT NULL,
			label_set TEXT NOT NULL,
			accuracy_on_holdout REAL NOT NULL,
			holdout_size INTEGER NOT NULL,
			min_samples_used INTEGER NOT NULL,
			artifact TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Model versions table - one monotonic counter per label-set signature.
		`CREATE TABLE IF NOT EXISTS model_versions (
			signature TEXT PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 0
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_training_samples_label ON training_samples(label)`,
		`CREATE INDEX IF NOT EXISTS idx_models_signature ON models(signature)`,
		`CREATE INDEX IF NOT EXISTS idx_models_trained_at ON models(trained_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
