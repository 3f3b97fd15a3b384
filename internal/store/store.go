package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/MuradAles/Hermes/internal/types"
)

// Client is the Postgres-backed flight store.
type Client struct {
	db *sql.DB
}

// New creates a new store client.
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// NewWithDB wraps an existing database handle (useful for testing).
func NewWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle for migrations.
func (c *Client) DB() *sql.DB {
	return c.db
}

// ListActiveFutureFlights returns scheduled flights with future departures,
// oldest departure first, up to limit.
func (c *Client) ListActiveFutureFlights(limit int) ([]*types.ScheduledFlight, error) {
	query := `
		SELECT id, student_name, departure, arrival, level, scheduled_time,
			status, last_color, needs_rescheduling, checkpoints, verdict,
			weather_checked_at
		FROM flights
		WHERE status = 'scheduled' AND scheduled_time > NOW()
		ORDER BY scheduled_time ASC
		LIMIT $1
	`
	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []*types.ScheduledFlight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// GetFlight returns one flight by ID.
func (c *Client) GetFlight(id string) (*types.ScheduledFlight, error) {
	query := `
		SELECT id, student_name, departure, arrival, level, scheduled_time,
			status, last_color, needs_rescheduling, checkpoints, verdict,
			weather_checked_at
		FROM flights
		WHERE id = $1
	`
	row := c.db.QueryRow(query, id)
	return scanFlight(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFlight(row rowScanner) (*types.ScheduledFlight, error) {
	var (
		f              types.ScheduledFlight
		departureJSON  []byte
		arrivalJSON    []byte
		checkpointJSON []byte
		verdictJSON    []byte
		lastColor      sql.NullString
		checkedAt      sql.NullTime
	)

	if err := row.Scan(
		&f.ID, &f.StudentName, &departureJSON, &arrivalJSON, &f.Level,
		&f.ScheduledTime, &f.Status, &lastColor, &f.NeedsRescheduling,
		&checkpointJSON, &verdictJSON, &checkedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(departureJSON, &f.Departure); err != nil {
		return nil, fmt.Errorf("failed to decode departure for flight %s: %w", f.ID, err)
	}
	if err := json.Unmarshal(arrivalJSON, &f.Arrival); err != nil {
		return nil, fmt.Errorf("failed to decode arrival for flight %s: %w", f.ID, err)
	}
	if len(checkpointJSON) > 0 {
		if err := json.Unmarshal(checkpointJSON, &f.Checkpoints); err != nil {
			return nil, fmt.Errorf("failed to decode checkpoints for flight %s: %w", f.ID, err)
		}
	}
	if len(verdictJSON) > 0 {
		var v types.PathVerdict
		if err := json.Unmarshal(verdictJSON, &v); err != nil {
			return nil, fmt.Errorf("failed to decode verdict for flight %s: %w", f.ID, err)
		}
		f.Verdict = &v
	}
	if lastColor.Valid {
		f.LastColor = types.SafetyColor(lastColor.String)
	}
	if checkedAt.Valid {
		f.WeatherCheckedAt = checkedAt.Time
	}
	return &f, nil
}

// CreateFlight inserts a new scheduled flight.
func (c *Client) CreateFlight(f *types.ScheduledFlight) error {
	departureJSON, err := json.Marshal(f.Departure)
	if err != nil {
		return fmt.Errorf("failed to encode departure: %w", err)
	}
	arrivalJSON, err := json.Marshal(f.Arrival)
	if err != nil {
		return fmt.Errorf("failed to encode arrival: %w", err)
	}

	query := `
		INSERT INTO flights (
			id, student_name, departure, arrival, level,
			scheduled_time, status, last_color, needs_rescheduling
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = c.db.Exec(query,
		f.ID, f.StudentName, departureJSON, arrivalJSON, f.Level,
		f.ScheduledTime, f.Status, string(f.LastColor), f.NeedsRescheduling,
	)
	return err
}

// UpdateFlightWeatherState persists the outcome of one weather evaluation:
// the fresh checkpoints and verdict, the new color, and the rescheduling flag.
func (c *Client) UpdateFlightWeatherState(id string, checkpoints []types.Checkpoint, verdict types.PathVerdict, needsRescheduling bool) error {
	checkpointJSON, err := json.Marshal(checkpoints)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoints: %w", err)
	}
	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	query := `
		UPDATE flights SET
			checkpoints = $1, verdict = $2, last_color = $3,
			needs_rescheduling = $4, weather_checked_at = NOW()
		WHERE id = $5
	`
	_, err = c.db.Exec(query, checkpointJSON, verdictJSON, string(verdict.Color), needsRescheduling, id)
	return err
}

// GetLastAlertTimestamp returns when the most recent safety alert for a
// flight was sent, or the zero time if none was ever sent.
func (c *Client) GetLastAlertTimestamp(id string) (time.Time, error) {
	var sentAt sql.NullTime
	query := `SELECT MAX(sent_at) FROM weather_alerts WHERE flight_id = $1`
	if err := c.db.QueryRow(query, id).Scan(&sentAt); err != nil {
		return time.Time{}, err
	}
	if !sentAt.Valid {
		return time.Time{}, nil
	}
	return sentAt.Time, nil
}

// RecordAlertSent records that a safety alert went out for a flight.
func (c *Client) RecordAlertSent(id string, at time.Time) error {
	query := `INSERT INTO weather_alerts (id, flight_id, sent_at) VALUES ($1, $2, $3)`
	_, err := c.db.Exec(query, uuid.New().String(), id, at)
	return err
}
