package domain

import "time"

// Signal is a three-level operational status.
type Signal string

const (
	SignalGreen  Signal = "green"
	SignalYellow Signal = "yellow"
	SignalRed    Signal = "red"
)

// Worse reports whether s is worse than other in the green < yellow < red
// ordering.
func (s Signal) Worse(other Signal) bool {
	return s.rank() > other.rank()
}

func (s Signal) rank() int {
	switch s {
	case SignalRed:
		return 2
	case SignalYellow:
		return 1
	default:
		return 0
	}
}

// PriorityItem is a ranked cross-metric flag for one day's threshold breach.
type PriorityItem struct {
	Type        string    `json:"type"` // "downtime" | "water" | "productivity"
	Score       float64   `json:"score"`
	Description string    `json:"description"`
	Signal      Signal    `json:"signal"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Date        time.Time `json:"date"`
}

// ReasonTotal is one downtime reason with its summed minutes over a range.
type ReasonTotal struct {
	Reason  string  `json:"reason"`
	Minutes float64 `json:"minutes"`
}

// SignalSummary is recomputed on every query, never persisted.
type SignalSummary struct {
	From               time.Time      `json:"from"`
	To                 time.Time      `json:"to"`
	ProductivitySignal Signal         `json:"productivity_signal"`
	ProductivityAvgPct float64        `json:"productivity_avg_pct"`
	DowntimeSignal     Signal         `json:"downtime_signal"`
	DowntimeAvgMinutes float64        `json:"downtime_avg_minutes"`
	WaterSignal        Signal         `json:"water_signal"`
	WaterOverPct       float64        `json:"water_over_pct"`
	PriorityItems      []PriorityItem `json:"priority_items"`
	TopDowntimeReasons []ReasonTotal  `json:"top_downtime_reasons"`
}
