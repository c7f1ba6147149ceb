package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"mill-data/internal/domain"
)

const maxUploadBytes = 20 << 20 // 20MB

// Ingestor is the ingestion surface the upload handler drives.
type Ingestor interface {
	IngestShiftJournal(ctx context.Context, data []byte) (*domain.UploadResult, error)
	IngestWater(ctx context.Context, data []byte) (*domain.UploadResult, error)
	IngestDowntimeHistory(ctx context.Context, data []byte) (*domain.UploadResult, error)
}

// UploadHandler accepts the three operator workbook uploads. Every attempt
// yields either {success, rows_parsed, warnings_count} or an error result;
// a workbook that cannot be decoded fails the whole upload with no partial
// records committed.
type UploadHandler struct {
	ingestor Ingestor
	logger   *zap.Logger
}

func NewUploadHandler(ingestor Ingestor, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{ingestor: ingestor, logger: logger}
}

func (h *UploadHandler) UploadShiftJournal(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.UploadTypeShiftJournal, h.ingestor.IngestShiftJournal)
}

func (h *UploadHandler) UploadWater(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.UploadTypeWater, h.ingestor.IngestWater)
}

func (h *UploadHandler) UploadDowntimeHistory(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.UploadTypeDowntimeHistory, h.ingestor.IngestDowntimeHistory)
}

func (h *UploadHandler) handle(w http.ResponseWriter, r *http.Request, fileType string,
	ingest func(context.Context, []byte) (*domain.UploadResult, error)) {

	data, err := readUploadFile(r, "file", maxUploadBytes)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("file not found in request"))
		return
	}

	result, err := ingest(r.Context(), data)
	if err != nil {
		h.logger.Error("upload failed",
			zap.String("file_type", fileType),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("upload failed: %v", err)))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"success":        true,
		"upload_id":      result.UploadID,
		"file_type":      result.FileType,
		"rows_parsed":    result.RowsParsed,
		"warnings_count": result.WarningsCount,
		"warnings":       result.Warnings,
	}))
}
