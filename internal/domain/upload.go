package domain

// Upload file types accepted by the ingestion endpoints.
const (
	UploadTypeShiftJournal    = "shift_journal"
	UploadTypeWater           = "water"
	UploadTypeDowntimeHistory = "downtime_history"
)

// UploadResult is what every upload attempt yields on success. Warnings
// never block success; they are counted and surfaced for operator review.
type UploadResult struct {
	UploadID      string   `json:"upload_id"` // UUID
	FileType      string   `json:"file_type"`
	RowsParsed    int      `json:"rows_parsed"`
	WarningsCount int      `json:"warnings_count"`
	Warnings      []string `json:"warnings,omitempty"`
}
