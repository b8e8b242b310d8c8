package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - stores each dispatched media command with the
		// smoothed pose that triggered it
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			state TEXT NOT NULL,
			yaw REAL NOT NULL,
			pitch REAL NOT NULL,
			special REAL NOT NULL,
			detected_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Calibrations table - stores neutral pose baselines
		`CREATE TABLE IF NOT EXISTS calibrations (
			id TEXT PRIMARY KEY,
			yaw REAL NOT NULL,
			pitch REAL NOT NULL,
			mouth_ratio REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_events_detected_at ON events(detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_command ON events(command)`,
		`CREATE INDEX IF NOT EXISTS idx_calibrations_created_at ON calibrations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
