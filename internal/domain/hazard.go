package domain

import "time"

// Hazard severity levels, ordered high > medium > low.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Hazard source types.
const (
	HazardSourceTechJournal = "tech_journal"
	HazardSourceDowntime    = "downtime"
	HazardSourceManual      = "manual"
	HazardSourcePhoto       = "photo"
)

// Hazard statuses. A hazard starts open; the only transition is an explicit
// status update toggling between the two states.
const (
	HazardStatusOpen   = "open"
	HazardStatusClosed = "closed"
)

// DetectedHazard is a keyword match produced by the detector. It is derived
// from a source text and not stored on its own.
type DetectedHazard struct {
	Description    string `json:"description"` // source text verbatim
	Severity       string `json:"severity"`
	MatchedKeyword string `json:"matched_keyword"`
}

// HazardRecord is the persisted form of a hazard. SourceRefID is a weak
// back-reference to the originating downtime row, not an ownership link.
// Parser-derived hazards are destroyed when their source records are
// replaced; manual and photo hazards persist independently.
type HazardRecord struct {
	HazardID    string    `json:"hazard_id"` // UUID
	Date        time.Time `json:"date"`
	SourceType  string    `json:"source_type"`
	SourceRefID *string   `json:"source_ref_id"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"` // matched keyword string
	CreatedAt   int64     `json:"created_at"`
}
