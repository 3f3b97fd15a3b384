package migrations

// InitialSchema creates the flight and alert tables
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		-- Scheduled training flights
		CREATE TABLE IF NOT EXISTS flights (
			id TEXT PRIMARY KEY,
			student_name TEXT NOT NULL,
			departure JSONB NOT NULL,
			arrival JSONB NOT NULL,
			level TEXT NOT NULL,
			scheduled_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			last_color TEXT,
			needs_rescheduling BOOLEAN NOT NULL DEFAULT FALSE,
			checkpoints JSONB,
			verdict JSONB,
			weather_checked_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_flights_status_scheduled_time
			ON flights (status, scheduled_time);

		-- Safety alerts sent for flights, one row per notification
		CREATE TABLE IF NOT EXISTS weather_alerts (
			id UUID PRIMARY KEY,
			flight_id TEXT NOT NULL REFERENCES flights (id),
			sent_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_weather_alerts_flight_id
			ON weather_alerts (flight_id, sent_at DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS weather_alerts;
		DROP TABLE IF EXISTS flights;
	`,
}
