package domain

import "time"

// Classification is a single-letter downtime cause category.
// Mixed-alphabet input (Cyrillic М/Э/Т/П, Latin M/E/T/P) is normalized to
// the Latin form by the parser; anything else maps to nil.
type Classification string

const (
	ClassMechanical    Classification = "M"
	ClassElectrical    Classification = "E"
	ClassTechnological Classification = "T"
	ClassWeather       Classification = "P"
)

// ShiftDowntimeRecord is one equipment downtime entry from the shift
// journal's downtime section. TimeFrom/TimeTo hold either "HH:MM" decoded
// from an Excel day-fraction or the literal cell text.
type ShiftDowntimeRecord struct {
	Date        time.Time `json:"date"`
	ShiftNumber int       `json:"shift_number"`
	Equipment   string    `json:"equipment"` // free text, e.g. "№1"
	TimeFrom    *string   `json:"time_from"`
	TimeTo      *string   `json:"time_to"`
	Minutes     *float64  `json:"minutes"`
	ReasonText  *string   `json:"reason_text"` // multi-line, accumulated from continuation rows
}

// DowntimeDailyRecord is one per-day, per-equipment entry from the monthly
// downtime history workbook.
type DowntimeDailyRecord struct {
	Date           time.Time       `json:"date"`
	Equipment      string          `json:"equipment"` // one of the configured equipment set
	ReasonText     *string         `json:"reason_text"`
	Minutes        *float64        `json:"minutes"`
	Classification *Classification `json:"classification"`
}
