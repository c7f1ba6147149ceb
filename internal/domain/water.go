package domain

import "time"

// WaterDailyRecord is one day of water consumption. Date is the unique key;
// when the same date is seen by more than one month-group scan, the merged
// record keeps the first non-nil value per field (a later scan only fills
// gaps, it never clobbers a populated field with nil).
type WaterDailyRecord struct {
	Date         time.Time `json:"date"`
	MeterReading *float64  `json:"meter_reading"`
	ActualDaily  *float64  `json:"actual_daily"`
	ActualHourly *float64  `json:"actual_hourly"`
	NominalDaily *float64  `json:"nominal_daily"`
	MonthLabel   string    `json:"month_label"`
}

// MergeFrom fills nil fields of r from other. Used by the water parser when
// two month-group blocks overlap at a month boundary.
func (r *WaterDailyRecord) MergeFrom(other WaterDailyRecord) {
	if r.MeterReading == nil {
		r.MeterReading = other.MeterReading
	}
	if r.ActualDaily == nil {
		r.ActualDaily = other.ActualDaily
	}
	if r.ActualHourly == nil {
		r.ActualHourly = other.ActualHourly
	}
	if r.NominalDaily == nil {
		r.NominalDaily = other.NominalDaily
	}
	if r.MonthLabel == "" {
		r.MonthLabel = other.MonthLabel
	}
}
