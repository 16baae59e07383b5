// Package db records evaluation history in SQLite for post-hoc inspection:
// one row per tick with the inputs that drove the decision and the outputs
// that were commanded.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	power INTEGER NOT NULL,
	intake INTEGER NOT NULL,
	exhaust INTEGER NOT NULL,
	gpio_a INTEGER NOT NULL,
	gpio_b INTEGER NOT NULL,
	bypass TEXT NOT NULL,
	co2 INTEGER NOT NULL,
	humidity INTEGER NOT NULL,
	smoke BOOLEAN NOT NULL,
	gas BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ticks_ts ON ticks(ts);
`

// Open opens the database and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// TickRecord is one evaluation's inputs and outputs.
type TickRecord struct {
	ID        int64
	Timestamp time.Time
	Power     int
	Intake    int
	Exhaust   int
	GpioA     int
	GpioB     int
	Bypass    string
	CO2       int
	Humidity  int
	Smoke     bool
	Gas       bool
}

func InsertTick(conn *sql.DB, rec TickRecord) error {
	_, err := conn.Exec(
		`INSERT INTO ticks (ts, power, intake, exhaust, gpio_a, gpio_b, bypass, co2, humidity, smoke, gas)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339), rec.Power, rec.Intake, rec.Exhaust,
		rec.GpioA, rec.GpioB, rec.Bypass, rec.CO2, rec.Humidity, rec.Smoke, rec.Gas)
	if err != nil {
		return fmt.Errorf("failed to insert tick: %w", err)
	}
	return nil
}

// RecentTicks returns the newest records first.
func RecentTicks(conn *sql.DB, limit int) ([]TickRecord, error) {
	rows, err := conn.Query(
		`SELECT id, ts, power, intake, exhaust, gpio_a, gpio_b, bypass, co2, humidity, smoke, gas
		 FROM ticks ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var out []TickRecord
	for rows.Next() {
		var rec TickRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Power, &rec.Intake, &rec.Exhaust,
			&rec.GpioA, &rec.GpioB, &rec.Bypass, &rec.CO2, &rec.Humidity, &rec.Smoke, &rec.Gas); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
		out = append(out, rec)
	}
	return out, rows.Err()
}
