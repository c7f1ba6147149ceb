package domain

import "time"

// ProductivityRecord is one hourly productivity reading for one mill line.
// Natural key: (date, shift_number, hour, mill_line); re-import of the same
// key is last-write-wins.
type ProductivityRecord struct {
	Date        time.Time `json:"date"`         // calendar day, UTC midnight
	ShiftNumber int       `json:"shift_number"` // 1 or 2
	Hour        int       `json:"hour"`         // 0..23 (raw "24" is normalized to 0)
	MillLine    int       `json:"mill_line"`    // 1..5
	ValuePct    *float64  `json:"value_pct"`
}

// MillThroughputRecord is the per-shift total mill throughput (t/h).
// One row per (date, shift_number); ValueTph stays nil when the designated
// cell exists but does not carry a parseable number.
type MillThroughputRecord struct {
	Date        time.Time `json:"date"`
	ShiftNumber int       `json:"shift_number"`
	ValueTph    *float64  `json:"value_tph"`
}
