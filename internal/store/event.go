package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event represents a dispatched media command stored in the database.
type Event struct {
	ID         string
	Command    string
	State      string
	Yaw        float64
	Pitch      float64
	Special    float64
	DetectedAt time.Time
}

// EventRepository provides operations for the command event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a new event. A missing ID or timestamp is filled in.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, command, state, yaw, pitch, special, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Command, e.State, e.Yaw, e.Pitch, e.Special, e.DetectedAt,
	)
	return err
}

// List retrieves the most recent events, newest first. A limit <= 0 means
// no limit.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	query := `SELECT id, command, state, yaw, pitch, special, detected_at
		 FROM events ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		err := rows.Scan(&e.ID, &e.Command, &e.State, &e.Yaw, &e.Pitch, &e.Special, &e.DetectedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Prune removes events older than the cutoff and returns how many were
// deleted.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE detected_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
