package repository

import (
	"database/sql"
	"fmt"
)

// Migrate creates the mill-data schema when missing. Natural keys mirror the
// record uniqueness rules: hourly productivity is unique per
// (date, shift, hour, mill line), throughput per (date, shift), water per
// date; downtime rows are append-style with surrogate IDs referenced by
// derived hazards.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS productivity_records (
			date         DATE NOT NULL,
			shift_number INT  NOT NULL,
			hour         INT  NOT NULL CHECK (hour BETWEEN 0 AND 23),
			mill_line    INT  NOT NULL CHECK (mill_line BETWEEN 1 AND 5),
			value_pct    DOUBLE PRECISION,
			PRIMARY KEY (date, shift_number, hour, mill_line)
		)`,
		`CREATE TABLE IF NOT EXISTS mill_throughput (
			date         DATE NOT NULL,
			shift_number INT  NOT NULL,
			value_tph    DOUBLE PRECISION,
			PRIMARY KEY (date, shift_number)
		)`,
		`CREATE TABLE IF NOT EXISTS shift_downtime (
			id           BIGSERIAL PRIMARY KEY,
			date         DATE NOT NULL,
			shift_number INT  NOT NULL,
			equipment    TEXT NOT NULL,
			time_from    TEXT,
			time_to      TEXT,
			minutes      DOUBLE PRECISION,
			reason_text  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shift_downtime_date ON shift_downtime(date)`,
		`CREATE TABLE IF NOT EXISTS water_daily (
			date          DATE PRIMARY KEY,
			meter_reading DOUBLE PRECISION,
			actual_daily  DOUBLE PRECISION,
			actual_hourly DOUBLE PRECISION,
			nominal_daily DOUBLE PRECISION,
			month_label   TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS downtime_daily (
			id             BIGSERIAL PRIMARY KEY,
			date           DATE NOT NULL,
			equipment      TEXT NOT NULL,
			reason_text    TEXT,
			minutes        DOUBLE PRECISION,
			classification TEXT CHECK (classification IN ('M', 'E', 'T', 'P'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downtime_daily_date ON downtime_daily(date)`,
		`CREATE TABLE IF NOT EXISTS hazards (
			hazard_id     UUID PRIMARY KEY,
			date          DATE NOT NULL,
			source_type   TEXT NOT NULL CHECK (source_type IN ('tech_journal', 'downtime', 'manual', 'photo')),
			source_ref_id TEXT,
			description   TEXT NOT NULL,
			severity      TEXT NOT NULL CHECK (severity IN ('high', 'medium', 'low')),
			status        TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
			tags          TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hazards_date ON hazards(date)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
