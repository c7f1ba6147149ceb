package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mill-data/internal/domain"
)

type fakeIngestor struct {
	lastData []byte
	err      error
}

func (f *fakeIngestor) result(fileType string, data []byte) (*domain.UploadResult, error) {
	f.lastData = data
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UploadResult{
		UploadID:      "u-1",
		FileType:      fileType,
		RowsParsed:    3,
		WarningsCount: 1,
		Warnings:      []string{"sheet \"x\" row 4 col 2: formula error"},
	}, nil
}

func (f *fakeIngestor) IngestShiftJournal(_ context.Context, data []byte) (*domain.UploadResult, error) {
	return f.result(domain.UploadTypeShiftJournal, data)
}

func (f *fakeIngestor) IngestWater(_ context.Context, data []byte) (*domain.UploadResult, error) {
	return f.result(domain.UploadTypeWater, data)
}

func (f *fakeIngestor) IngestDowntimeHistory(_ context.Context, data []byte) (*domain.UploadResult, error) {
	return f.result(domain.UploadTypeDowntimeHistory, data)
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newUploadRouter(ing *fakeIngestor) *Router {
	r := NewRouter(zap.NewNop())
	r.RegisterUploadRoutes(NewUploadHandler(ing, zap.NewNop()))
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, map[string]any) {
	t.Helper()
	var env struct {
		Code   int            `json:"code"`
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Code, env.Result
}

func TestUploadShiftJournal_Success(t *testing.T) {
	ing := &fakeIngestor{}
	router := newUploadRouter(ing)

	body, contentType := multipartBody(t, "file", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/data/api/v1/uploads/shift-journal", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	code, result := decodeEnvelope(t, rec)
	require.Equal(t, ResultSuccess, code)
	require.Equal(t, true, result["success"])
	require.Equal(t, domain.UploadTypeShiftJournal, result["file_type"])
	require.Equal(t, float64(3), result["rows_parsed"])
	require.Equal(t, float64(1), result["warnings_count"])
	require.Equal(t, []byte("workbook-bytes"), ing.lastData)
}

func TestUploadWater_IngestErrorYieldsErrorEnvelope(t *testing.T) {
	ing := &fakeIngestor{err: errors.New("boom")}
	router := newUploadRouter(ing)

	body, contentType := multipartBody(t, "file", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/data/api/v1/uploads/water", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	code, _ := decodeEnvelope(t, rec)
	require.Equal(t, ResultError, code)
}

func TestUpload_MissingFileField(t *testing.T) {
	router := newUploadRouter(&fakeIngestor{})

	body, contentType := multipartBody(t, "wrong_field", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/data/api/v1/uploads/downtime-history", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	code, _ := decodeEnvelope(t, rec)
	require.Equal(t, ResultError, code)
}

func TestUpload_MethodNotAllowed(t *testing.T) {
	router := newUploadRouter(&fakeIngestor{})

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/uploads/shift-journal", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
