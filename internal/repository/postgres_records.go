package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"mill-data/internal/domain"
)

// insertChunkSize bounds the number of rows per bulk INSERT statement.
const insertChunkSize = 500

// PostgresRecordsRepository RecordsRepository implementation on postgres.
type PostgresRecordsRepository struct {
	db *sql.DB
}

func NewPostgresRecordsRepository(db *sql.DB) *PostgresRecordsRepository {
	return &PostgresRecordsRepository{db: db}
}

var _ RecordsRepository = (*PostgresRecordsRepository)(nil)

func (r *PostgresRecordsRepository) ReplaceShiftJournal(ctx context.Context, dates []time.Time,
	productivity []domain.ProductivityRecord,
	throughput []domain.MillThroughputRecord,
	downtime []domain.ShiftDowntimeRecord) ([]int64, error) {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dateArg := pq.Array(dateStrings(dates))
	for _, table := range []string{"productivity_records", "mill_throughput", "shift_downtime"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE date = ANY($1::date[])`, table), dateArg); err != nil {
			return nil, fmt.Errorf("failed to delete %s by date set: %w", table, err)
		}
	}

	if err := insertProductivityChunked(ctx, tx, productivity); err != nil {
		return nil, err
	}

	for _, t := range throughput {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mill_throughput (date, shift_number, value_tph)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (date, shift_number) DO UPDATE SET value_tph = EXCLUDED.value_tph`,
			t.Date, t.ShiftNumber, t.ValueTph); err != nil {
			return nil, fmt.Errorf("failed to insert mill throughput: %w", err)
		}
	}

	ids := make([]int64, 0, len(downtime))
	for _, d := range downtime {
		var id int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO shift_downtime (date, shift_number, equipment, time_from, time_to, minutes, reason_text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			d.Date, d.ShiftNumber, d.Equipment, d.TimeFrom, d.TimeTo, d.Minutes, d.ReasonText,
		).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to insert shift downtime: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shift journal replace: %w", err)
	}
	return ids, nil
}

// insertProductivityChunked bulk-inserts hourly records in bounded chunks.
// The unique-key upsert makes a duplicated (date, shift, hour, line) cell
// last-write-wins within one upload.
func insertProductivityChunked(ctx context.Context, tx *sql.Tx, records []domain.ProductivityRecord) error {
	for start := 0; start < len(records); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*5)
		for i, rec := range chunk {
			base := i * 5
			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
				base+1, base+2, base+3, base+4, base+5))
			args = append(args, rec.Date, rec.ShiftNumber, rec.Hour, rec.MillLine, rec.ValuePct)
		}
		query := `INSERT INTO productivity_records (date, shift_number, hour, mill_line, value_pct) VALUES ` +
			strings.Join(placeholders, ", ") +
			` ON CONFLICT (date, shift_number, hour, mill_line) DO UPDATE SET value_pct = EXCLUDED.value_pct`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert productivity records: %w", err)
		}
	}
	return nil
}

func (r *PostgresRecordsRepository) ReplaceWater(ctx context.Context, dates []time.Time, records []domain.WaterDailyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM water_daily WHERE date = ANY($1::date[])`, pq.Array(dateStrings(dates))); err != nil {
		return fmt.Errorf("failed to delete water_daily by date set: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO water_daily (date, meter_reading, actual_daily, actual_hourly, nominal_daily, month_label)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (date) DO UPDATE SET
			   meter_reading = EXCLUDED.meter_reading,
			   actual_daily = EXCLUDED.actual_daily,
			   actual_hourly = EXCLUDED.actual_hourly,
			   nominal_daily = EXCLUDED.nominal_daily,
			   month_label = EXCLUDED.month_label`,
			rec.Date, rec.MeterReading, rec.ActualDaily, rec.ActualHourly, rec.NominalDaily, rec.MonthLabel); err != nil {
			return fmt.Errorf("failed to insert water record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit water replace: %w", err)
	}
	return nil
}

func (r *PostgresRecordsRepository) ReplaceDowntimeDaily(ctx context.Context, dates []time.Time, records []domain.DowntimeDailyRecord) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM downtime_daily WHERE date = ANY($1::date[])`, pq.Array(dateStrings(dates))); err != nil {
		return nil, fmt.Errorf("failed to delete downtime_daily by date set: %w", err)
	}

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		var class *string
		if rec.Classification != nil {
			c := string(*rec.Classification)
			class = &c
		}
		var id int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO downtime_daily (date, equipment, reason_text, minutes, classification)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			rec.Date, rec.Equipment, rec.ReasonText, rec.Minutes, class,
		).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to insert downtime_daily record: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit downtime replace: %w", err)
	}
	return ids, nil
}

func (r *PostgresRecordsRepository) ProductivityDailyAvg(ctx context.Context, from, to time.Time) ([]ProductivityDaily, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, AVG(value_pct)
		 FROM productivity_records
		 WHERE value_pct IS NOT NULL AND date >= $1 AND date <= $2
		 GROUP BY date
		 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query productivity daily averages: %w", err)
	}
	defer rows.Close()

	var out []ProductivityDaily
	for rows.Next() {
		var d ProductivityDaily
		if err := rows.Scan(&d.Date, &d.AvgPct); err != nil {
			return nil, fmt.Errorf("failed to scan productivity daily average: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRecordsRepository) DowntimeDailyTotals(ctx context.Context, from, to time.Time) ([]DowntimeDailyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, SUM(minutes)
		 FROM (
		   SELECT date, minutes FROM shift_downtime WHERE minutes IS NOT NULL
		   UNION ALL
		   SELECT date, minutes FROM downtime_daily WHERE minutes IS NOT NULL
		 ) AS all_downtime
		 WHERE date >= $1 AND date <= $2
		 GROUP BY date
		 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query downtime daily totals: %w", err)
	}
	defer rows.Close()

	var out []DowntimeDailyTotal
	for rows.Next() {
		var d DowntimeDailyTotal
		if err := rows.Scan(&d.Date, &d.TotalMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan downtime daily total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRecordsRepository) WaterDailyPairs(ctx context.Context, from, to time.Time) ([]WaterDailyPair, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COALESCE(actual_daily, 0), COALESCE(nominal_daily, 0)
		 FROM water_daily
		 WHERE date >= $1 AND date <= $2
		 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query water daily pairs: %w", err)
	}
	defer rows.Close()

	var out []WaterDailyPair
	for rows.Next() {
		var d WaterDailyPair
		if err := rows.Scan(&d.Date, &d.Actual, &d.Nominal); err != nil {
			return nil, fmt.Errorf("failed to scan water daily pair: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRecordsRepository) DowntimeReasons(ctx context.Context, from, to time.Time) ([]ReasonMinutes, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reason_text, minutes
		 FROM (
		   SELECT date, reason_text, minutes FROM shift_downtime
		   UNION ALL
		   SELECT date, reason_text, minutes FROM downtime_daily
		 ) AS all_downtime
		 WHERE date >= $1 AND date <= $2
		   AND reason_text IS NOT NULL AND minutes IS NOT NULL`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query downtime reasons: %w", err)
	}
	defer rows.Close()

	var out []ReasonMinutes
	for rows.Next() {
		var d ReasonMinutes
		if err := rows.Scan(&d.Reason, &d.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan downtime reason: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// dateStrings renders dates as YYYY-MM-DD for a ::date[] parameter.
func dateStrings(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}
