package repository

import (
	"context"
	"time"

	"mill-data/internal/domain"
)

// ProductivityDaily is one day's average productivity percentage.
type ProductivityDaily struct {
	Date   time.Time
	AvgPct float64
}

// DowntimeDailyTotal is one day's total downtime minutes across both
// downtime sources (shift journal and monthly history).
type DowntimeDailyTotal struct {
	Date         time.Time
	TotalMinutes float64
}

// WaterDailyPair is one day's (actual, nominal) consumption pair.
type WaterDailyPair struct {
	Date    time.Time
	Actual  float64
	Nominal float64
}

// ReasonMinutes is one downtime reason row with its minutes.
type ReasonMinutes struct {
	Reason  string
	Minutes float64
}

// RecordsRepository persists the parsed record streams and serves the
// aggregate queries the signal engine reads back.
//
// The Replace* methods implement the replace-by-date-set contract: within
// one transaction, all previously stored records of that family for exactly
// the affected dates are deleted before the newly parsed set is inserted,
// so re-uploading the same workbook is idempotent.
type RecordsRepository interface {
	// ReplaceShiftJournal replaces productivity, throughput and shift
	// downtime records for the affected dates. Returns the inserted shift
	// downtime row IDs, aligned with the downtime slice, for hazard
	// back-references.
	ReplaceShiftJournal(ctx context.Context, dates []time.Time,
		productivity []domain.ProductivityRecord,
		throughput []domain.MillThroughputRecord,
		downtime []domain.ShiftDowntimeRecord) ([]int64, error)

	// ReplaceWater replaces water daily records for the affected dates.
	ReplaceWater(ctx context.Context, dates []time.Time, records []domain.WaterDailyRecord) error

	// ReplaceDowntimeDaily replaces monthly-history downtime records for
	// the affected dates. Returns inserted row IDs aligned with records.
	ReplaceDowntimeDaily(ctx context.Context, dates []time.Time, records []domain.DowntimeDailyRecord) ([]int64, error)

	// ========== aggregate queries (dashboard / signal engine) ==========

	ProductivityDailyAvg(ctx context.Context, from, to time.Time) ([]ProductivityDaily, error)
	DowntimeDailyTotals(ctx context.Context, from, to time.Time) ([]DowntimeDailyTotal, error)
	WaterDailyPairs(ctx context.Context, from, to time.Time) ([]WaterDailyPair, error)
	DowntimeReasons(ctx context.Context, from, to time.Time) ([]ReasonMinutes, error)
}
