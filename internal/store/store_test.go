package store

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/MuradAles/Hermes/internal/types"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func flightColumns() []string {
	return []string{
		"id", "student_name", "departure", "arrival", "level", "scheduled_time",
		"status", "last_color", "needs_rescheduling", "checkpoints", "verdict",
		"weather_checked_at",
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	return data
}

func TestListActiveFutureFlights(t *testing.T) {
	c, mock := newMockClient(t)

	departure := mustJSON(t, types.Location{Code: "KJFK", Lat: 40.6413, Lon: -73.7781})
	arrival := mustJSON(t, types.Location{Code: "KBOS", Lat: 42.3656, Lon: -71.0096})
	scheduled := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(flightColumns()).
		AddRow("flight-1", "Ada Santos", departure, arrival, "student-pilot",
			scheduled, "scheduled", "GREEN", false, nil, nil, nil).
		AddRow("flight-2", "Lin Ortega", departure, arrival, "instrument-rated",
			scheduled.Add(2*time.Hour), "scheduled", "YELLOW", true, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM flights").
		WithArgs(50).
		WillReturnRows(rows)

	flights, err := c.ListActiveFutureFlights(50)
	if err != nil {
		t.Fatalf("ListActiveFutureFlights() unexpected error: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("ListActiveFutureFlights() returned %d flights, want 2", len(flights))
	}
	if flights[0].ID != "flight-1" || flights[0].Departure.Code != "KJFK" {
		t.Errorf("first flight = %+v, want flight-1 departing KJFK", flights[0])
	}
	if flights[1].LastColor != types.ColorYellow || !flights[1].NeedsRescheduling {
		t.Errorf("second flight = %+v, want YELLOW with needs_rescheduling", flights[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetFlight_WithVerdict(t *testing.T) {
	c, mock := newMockClient(t)

	departure := mustJSON(t, types.Location{Code: "KJFK", Lat: 40.6413, Lon: -73.7781})
	arrival := mustJSON(t, types.Location{Code: "KBOS", Lat: 42.3656, Lon: -71.0096})
	checkpoints := mustJSON(t, []types.Checkpoint{
		{Lat: 41.5, Lon: -72.4, Status: types.StatusSafe, Score: 100, Reason: "Conditions acceptable"},
	})
	verdict := mustJSON(t, types.PathVerdict{
		Status: types.StatusSafe, Score: 100, Color: types.ColorGreen,
	})
	checkedAt := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(flightColumns()).
		AddRow("flight-1", "Ada Santos", departure, arrival, "private-pilot",
			time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC), "scheduled", "GREEN",
			false, checkpoints, verdict, checkedAt)

	mock.ExpectQuery("SELECT (.+) FROM flights").
		WithArgs("flight-1").
		WillReturnRows(rows)

	f, err := c.GetFlight("flight-1")
	if err != nil {
		t.Fatalf("GetFlight() unexpected error: %v", err)
	}
	if f.Verdict == nil || f.Verdict.Color != types.ColorGreen {
		t.Errorf("Verdict = %+v, want GREEN", f.Verdict)
	}
	if len(f.Checkpoints) != 1 || f.Checkpoints[0].Score != 100 {
		t.Errorf("Checkpoints = %+v, want one scoring 100", f.Checkpoints)
	}
	if !f.WeatherCheckedAt.Equal(checkedAt) {
		t.Errorf("WeatherCheckedAt = %v, want %v", f.WeatherCheckedAt, checkedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestUpdateFlightWeatherState(t *testing.T) {
	c, mock := newMockClient(t)

	verdict := types.PathVerdict{Status: types.StatusDangerous, Score: 0, Color: types.ColorRed}
	checkpoints := []types.Checkpoint{
		{Lat: 41.5, Lon: -72.4, Status: types.StatusDangerous, Score: 0, Reason: "Thunderstorms present"},
	}

	mock.ExpectExec("UPDATE flights SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "RED", true, "flight-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.UpdateFlightWeatherState("flight-1", checkpoints, verdict, true); err != nil {
		t.Fatalf("UpdateFlightWeatherState() unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetLastAlertTimestamp(t *testing.T) {
	c, mock := newMockClient(t)
	sentAt := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT MAX\\(sent_at\\) FROM weather_alerts").
		WithArgs("flight-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(sentAt))

	got, err := c.GetLastAlertTimestamp("flight-1")
	if err != nil {
		t.Fatalf("GetLastAlertTimestamp() unexpected error: %v", err)
	}
	if !got.Equal(sentAt) {
		t.Errorf("GetLastAlertTimestamp() = %v, want %v", got, sentAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetLastAlertTimestamp_NeverAlerted(t *testing.T) {
	c, mock := newMockClient(t)

	mock.ExpectQuery("SELECT MAX\\(sent_at\\) FROM weather_alerts").
		WithArgs("flight-9").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	got, err := c.GetLastAlertTimestamp("flight-9")
	if err != nil {
		t.Fatalf("GetLastAlertTimestamp() unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("GetLastAlertTimestamp() = %v, want zero time for unalerted flight", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRecordAlertSent(t *testing.T) {
	c, mock := newMockClient(t)
	at := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO weather_alerts").
		WithArgs(sqlmock.AnyArg(), "flight-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.RecordAlertSent("flight-1", at); err != nil {
		t.Fatalf("RecordAlertSent() unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetFlight_NotFound(t *testing.T) {
	c, mock := newMockClient(t)

	mock.ExpectQuery("SELECT (.+) FROM flights").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := c.GetFlight("missing"); err == nil {
		t.Fatal("GetFlight() expected error for missing flight, got none")
	}
}
