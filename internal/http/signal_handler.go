package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mill-data/internal/service"
)

// SignalHandler serves the derived signal summary for the dashboard.
type SignalHandler struct {
	signals *service.SignalService
	logger  *zap.Logger
}

func NewSignalHandler(signals *service.SignalService, logger *zap.Logger) *SignalHandler {
	return &SignalHandler{signals: signals, logger: logger}
}

// GetSummary handles GET ...?from=YYYY-MM-DD&to=YYYY-MM-DD; the range
// defaults to the last 7 days.
func (h *SignalHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from, ok := parseDateQuery(r, "from", now.AddDate(0, 0, -7))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("invalid 'from' date, expected YYYY-MM-DD"))
		return
	}
	to, ok := parseDateQuery(r, "to", now)
	if !ok {
		writeJSON(w, http.StatusOK, Fail("invalid 'to' date, expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		writeJSON(w, http.StatusOK, Fail("'to' date is before 'from' date"))
		return
	}

	summary, err := h.signals.Summary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("signal summary failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to compute signal summary: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(summary))
}
