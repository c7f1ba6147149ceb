package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mill-data/internal/xlsx"
)

// ExportHandler serves blank workbook templates so operators fill in the
// canonical layout instead of improvising one.
type ExportHandler struct {
	logger *zap.Logger
}

func NewExportHandler(logger *zap.Logger) *ExportHandler {
	return &ExportHandler{logger: logger}
}

// GetShiftJournalTemplate handles GET ...?date=YYYY-MM-DD&shift=N.
func (h *ExportHandler) GetShiftJournalTemplate(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateQuery(r, "date", time.Now().UTC().Truncate(24*time.Hour))
	if !ok {
		writeJSON(w, http.StatusOK, Fail("invalid 'date', expected YYYY-MM-DD"))
		return
	}
	shift := 1
	if v := r.URL.Query().Get("shift"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 2 {
			writeJSON(w, http.StatusOK, Fail("shift must be 1 or 2"))
			return
		}
		shift = n
	}

	data, err := xlsx.ShiftJournalTemplate(date, shift)
	if err != nil {
		h.logger.Error("shift journal template generation failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate template: %v", err)))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=shift-journal-%s-sm%d.xlsx", date.Format("2006-01-02"), shift))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
