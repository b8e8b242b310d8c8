package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Calibration represents a stored neutral pose baseline.
type Calibration struct {
	ID         string
	Yaw        float64
	Pitch      float64
	MouthRatio float64
	CreatedAt  time.Time
}

// CalibrationRepository provides operations for stored baselines.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Create inserts a new calibration. A missing ID or timestamp is filled in.
func (r *CalibrationRepository) Create(c *Calibration) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO calibrations (id, yaw, pitch, mouth_ratio, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Yaw, c.Pitch, c.MouthRatio, c.CreatedAt,
	)
	return err
}

// Latest retrieves the most recent calibration.
func (r *CalibrationRepository) Latest() (*Calibration, error) {
	c := &Calibration{}

	err := r.db.QueryRow(
		`SELECT id, yaw, pitch, mouth_ratio, created_at
		 FROM calibrations ORDER BY created_at DESC LIMIT 1`,
	).Scan(&c.ID, &c.Yaw, &c.Pitch, &c.MouthRatio, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// List retrieves all calibrations, newest first.
func (r *CalibrationRepository) List() ([]*Calibration, error) {
	rows, err := r.db.Query(
		`SELECT id, yaw, pitch, mouth_ratio, created_at
		 FROM calibrations ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calibrations []*Calibration
	for rows.Next() {
		c := &Calibration{}
		err := rows.Scan(&c.ID, &c.Yaw, &c.Pitch, &c.MouthRatio, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		calibrations = append(calibrations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return calibrations, nil
}
