package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mill-data/internal/domain"
	"mill-data/internal/repository"
	"mill-data/internal/service"
)

// HazardHandler serves hazard listing, manual creation, status updates and
// the photo-detection endpoint.
type HazardHandler struct {
	hazards     repository.HazardsRepository
	photo       *service.PhotoClient // nil when the classifier is not configured
	photoLabels map[string]string
	logger      *zap.Logger
}

func NewHazardHandler(hazards repository.HazardsRepository, photo *service.PhotoClient, photoLabels map[string]string, logger *zap.Logger) *HazardHandler {
	return &HazardHandler{hazards: hazards, photo: photo, photoLabels: photoLabels, logger: logger}
}

// List handles GET ...?from=&to=&status=.
func (h *HazardHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from, ok := parseDateQuery(r, "from", now.AddDate(0, 0, -30))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("invalid 'from' date, expected YYYY-MM-DD"))
		return
	}
	to, ok := parseDateQuery(r, "to", now)
	if !ok {
		writeJSON(w, http.StatusOK, Fail("invalid 'to' date, expected YYYY-MM-DD"))
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != domain.HazardStatusOpen && status != domain.HazardStatusClosed {
		writeJSON(w, http.StatusOK, Fail("status must be 'open' or 'closed'"))
		return
	}

	items, err := h.hazards.List(r.Context(), from, to, status)
	if err != nil {
		h.logger.Error("hazard list failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list hazards: %v", err)))
		return
	}
	counts, err := h.hazards.CountBySeverity(r.Context(), from, to)
	if err != nil {
		h.logger.Error("hazard counts failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to count hazards: %v", err)))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":              items,
		"total":              len(items),
		"counts_by_severity": counts,
	}))
}

// Create handles POST of a manual hazard: {date, description, severity}.
func (h *HazardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if payload.Description == "" {
		writeJSON(w, http.StatusOK, Fail("description is required"))
		return
	}
	if !validSeverity(payload.Severity) {
		writeJSON(w, http.StatusOK, Fail("severity must be high, medium or low"))
		return
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid date, expected YYYY-MM-DD"))
		return
	}

	hazard := &domain.HazardRecord{
		HazardID:    uuid.NewString(),
		Date:        date,
		SourceType:  domain.HazardSourceManual,
		Description: payload.Description,
		Severity:    payload.Severity,
		Status:      domain.HazardStatusOpen,
	}
	if err := h.hazards.Create(r.Context(), hazard); err != nil {
		h.logger.Error("hazard create failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create hazard: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(hazard))
}

// UpdateStatus handles POST .../{id}/status with {status}. The only
// transition a hazard supports is toggling open/closed.
func (h *HazardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, hazardID string) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if payload.Status != domain.HazardStatusOpen && payload.Status != domain.HazardStatusClosed {
		writeJSON(w, http.StatusOK, Fail("status must be 'open' or 'closed'"))
		return
	}
	if err := h.hazards.UpdateStatus(r.Context(), hazardID, payload.Status); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update hazard status: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// Patch handles PATCH .../{id} with optional {description, severity}.
func (h *HazardHandler) Patch(w http.ResponseWriter, r *http.Request, hazardID string) {
	var payload struct {
		Description *string `json:"description"`
		Severity    *string `json:"severity"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if payload.Severity != nil && !validSeverity(*payload.Severity) {
		writeJSON(w, http.StatusOK, Fail("severity must be high, medium or low"))
		return
	}
	if err := h.hazards.Patch(r.Context(), hazardID, payload.Description, payload.Severity); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to patch hazard: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// DetectPhoto handles POST of an image. The classifier's detections are
// filtered by the confidence floor and mapped through the label→severity
// table; only a mapped label creates a hazard. Classifier failures are a
// distinct user-visible error and never touch stored data.
func (h *HazardHandler) DetectPhoto(w http.ResponseWriter, r *http.Request) {
	if h.photo == nil {
		writeJSON(w, http.StatusOK, Fail("photo classifier is not configured"))
		return
	}
	image, err := readUploadFile(r, "image", maxUploadBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("image not found in request"))
		return
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if v := r.FormValue("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid date, expected YYYY-MM-DD"))
			return
		}
		date = d
	}

	detections, err := h.photo.Detect(image)
	if err != nil {
		if errors.Is(err, service.ErrClassifierUnavailable) {
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("photo classifier error: %v", err)))
			return
		}
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("photo detection failed: %v", err)))
		return
	}

	severity, label := service.MapSeverity(detections, h.photoLabels)
	if severity == "" {
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"detections": detections,
			"hazard":     nil,
		}))
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		description = fmt.Sprintf("Обнаружено на фото: %s", label)
	}
	hazard := &domain.HazardRecord{
		HazardID:    uuid.NewString(),
		Date:        date,
		SourceType:  domain.HazardSourcePhoto,
		Description: description,
		Severity:    severity,
		Status:      domain.HazardStatusOpen,
		Tags:        label,
	}
	if err := h.hazards.Create(r.Context(), hazard); err != nil {
		h.logger.Error("photo hazard create failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create hazard: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"detections": detections,
		"hazard":     hazard,
	}))
}

func validSeverity(s string) bool {
	return s == domain.SeverityHigh || s == domain.SeverityMedium || s == domain.SeverityLow
}
