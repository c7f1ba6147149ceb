package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"mill-data/internal/domain"
	"mill-data/internal/hazard"
	"mill-data/internal/repository"
	"mill-data/internal/store"
	"mill-data/internal/xlsx"
)

// fakeRecordsRepo captures Replace* calls and returns sequential IDs.
type fakeRecordsRepo struct {
	shiftDates    []time.Time
	shiftDowntime []domain.ShiftDowntimeRecord
	waterDates    []time.Time
	waterRecords  []domain.WaterDailyRecord
	dailyDates    []time.Time
	dailyRecords  []domain.DowntimeDailyRecord
}

func (f *fakeRecordsRepo) ReplaceShiftJournal(_ context.Context, dates []time.Time,
	_ []domain.ProductivityRecord, _ []domain.MillThroughputRecord,
	downtime []domain.ShiftDowntimeRecord) ([]int64, error) {
	f.shiftDates = dates
	f.shiftDowntime = downtime
	ids := make([]int64, len(downtime))
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids, nil
}

func (f *fakeRecordsRepo) ReplaceWater(_ context.Context, dates []time.Time, records []domain.WaterDailyRecord) error {
	f.waterDates = dates
	f.waterRecords = records
	return nil
}

func (f *fakeRecordsRepo) ReplaceDowntimeDaily(_ context.Context, dates []time.Time, records []domain.DowntimeDailyRecord) ([]int64, error) {
	f.dailyDates = dates
	f.dailyRecords = records
	ids := make([]int64, len(records))
	for i := range ids {
		ids[i] = int64(100 + i)
	}
	return ids, nil
}

func (f *fakeRecordsRepo) ProductivityDailyAvg(context.Context, time.Time, time.Time) ([]repository.ProductivityDaily, error) {
	return nil, nil
}
func (f *fakeRecordsRepo) DowntimeDailyTotals(context.Context, time.Time, time.Time) ([]repository.DowntimeDailyTotal, error) {
	return nil, nil
}
func (f *fakeRecordsRepo) WaterDailyPairs(context.Context, time.Time, time.Time) ([]repository.WaterDailyPair, error) {
	return nil, nil
}
func (f *fakeRecordsRepo) DowntimeReasons(context.Context, time.Time, time.Time) ([]repository.ReasonMinutes, error) {
	return nil, nil
}

type fakeHazardsRepo struct {
	replacedSource string
	replacedDates  []time.Time
	replaced       []domain.HazardRecord
	created        []domain.HazardRecord
}

func (f *fakeHazardsRepo) ReplaceDerived(_ context.Context, sourceType string, dates []time.Time, hazards []domain.HazardRecord) error {
	f.replacedSource = sourceType
	f.replacedDates = dates
	f.replaced = hazards
	return nil
}

func (f *fakeHazardsRepo) Create(_ context.Context, h *domain.HazardRecord) error {
	f.created = append(f.created, *h)
	return nil
}

func (f *fakeHazardsRepo) List(context.Context, time.Time, time.Time, string) ([]domain.HazardRecord, error) {
	return nil, nil
}
func (f *fakeHazardsRepo) Get(context.Context, string) (*domain.HazardRecord, error) { return nil, nil }
func (f *fakeHazardsRepo) UpdateStatus(context.Context, string, string) error        { return nil }
func (f *fakeHazardsRepo) Patch(context.Context, string, *string, *string) error     { return nil }
func (f *fakeHazardsRepo) CountBySeverity(context.Context, time.Time, time.Time) (map[string]int, error) {
	return nil, nil
}

type fakePublisher struct {
	published []domain.HazardRecord
}

func (f *fakePublisher) PublishHazard(h *domain.HazardRecord) error {
	f.published = append(f.published, *h)
	return nil
}

type fakeKV struct {
	store   map[string]string
	deleted []string
}

func newFakeKV() *fakeKV { return &fakeKV{store: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	return "", store.ErrMiss
}

func (f *fakeKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.store[key] = value
	return nil
}

func (f *fakeKV) DeleteByPattern(_ context.Context, pattern string) error {
	f.deleted = append(f.deleted, pattern)
	f.store = map[string]string{}
	return nil
}

func testDetector() *hazard.Detector {
	return hazard.NewDetector(hazard.Keywords{
		High:   []string{"пожар"},
		Medium: []string{"дым"},
	})
}

func newTestIngest(records *fakeRecordsRepo, hazards *fakeHazardsRepo, pub *fakePublisher, kv *fakeKV) *IngestService {
	parser := xlsx.NewDowntimeHistoryParser([]string{"Мельница №1", "Мельница №2"})
	var p HazardPublisher
	if pub != nil {
		p = pub
	}
	var cache store.KV
	if kv != nil {
		cache = kv
	}
	return NewIngestService(records, hazards, testDetector(), parser, p, cache, zap.NewNop())
}

func shiftJournalBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := "01.01.26см1"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	set := func(ref string, v any) { require.NoError(t, f.SetCellValue(sheet, ref, v)) }
	set("H2", 150.5)
	set("A6", 5)
	set("B6", 82.3)
	set("A19", "Простой мельниц")
	set("A20", "№1")
	set("D20", 120)
	set("E20", "произошел пожар на складе")
	set("A21", "№2")
	set("D21", 30)
	set("E21", "дым из редуктора")
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestIngestShiftJournal(t *testing.T) {
	records := &fakeRecordsRepo{}
	hazards := &fakeHazardsRepo{}
	pub := &fakePublisher{}
	kv := newFakeKV()
	kv.store["signal:summary:a:b"] = "stale"

	svc := newTestIngest(records, hazards, pub, kv)
	res, err := svc.IngestShiftJournal(context.Background(), shiftJournalBytes(t))
	require.NoError(t, err)

	require.Equal(t, domain.UploadTypeShiftJournal, res.FileType)
	require.Equal(t, 4, res.RowsParsed) // 1 productivity + 1 throughput + 2 downtime
	require.Zero(t, res.WarningsCount)

	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, []time.Time{date}, records.shiftDates)

	// one high (пожар) and one medium (дым) hazard derived, back-referenced
	// to the inserted downtime rows
	require.Equal(t, domain.HazardSourceTechJournal, hazards.replacedSource)
	require.Len(t, hazards.replaced, 2)
	require.Equal(t, domain.SeverityHigh, hazards.replaced[0].Severity)
	require.Equal(t, "1", *hazards.replaced[0].SourceRefID)
	require.Equal(t, domain.SeverityMedium, hazards.replaced[1].Severity)
	require.Equal(t, "2", *hazards.replaced[1].SourceRefID)
	require.Equal(t, domain.HazardStatusOpen, hazards.replaced[0].Status)
	require.NotEmpty(t, hazards.replaced[0].HazardID)

	// only the high hazard reaches the alarm channel
	require.Len(t, pub.published, 1)
	require.Equal(t, domain.SeverityHigh, pub.published[0].Severity)

	// ingest invalidates cached summaries
	require.Equal(t, []string{"signal:*"}, kv.deleted)
	require.Empty(t, kv.store)
}

func TestIngestShiftJournal_NilPublisherAndCache(t *testing.T) {
	records := &fakeRecordsRepo{}
	hazards := &fakeHazardsRepo{}

	svc := newTestIngest(records, hazards, nil, nil)
	_, err := svc.IngestShiftJournal(context.Background(), shiftJournalBytes(t))
	require.NoError(t, err)
}

func TestIngestWater(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	set := func(ref string, v any) { require.NoError(t, f.SetCellValue(sheet, ref, v)) }
	set("A1", "Январь 2026")
	set("A2", "Дата")
	set("B2", "Показание счетчика")
	set("A3", 46023)
	set("B3", 500)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records := &fakeRecordsRepo{}
	svc := newTestIngest(records, &fakeHazardsRepo{}, nil, nil)

	res, err := svc.IngestWater(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, domain.UploadTypeWater, res.FileType)
	require.Equal(t, 1, res.RowsParsed)
	require.Len(t, records.waterRecords, 1)
}

func TestIngestDowntimeHistory(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Январь 2026"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	set := func(ref string, v any) { require.NoError(t, f.SetCellValue(sheet, ref, v)) }
	set("A2", "Дата")
	set("B2", "Мельница №1")
	set("A3", 46023)
	set("B3", "задымление привода")
	set("H3", 90)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records := &fakeRecordsRepo{}
	hazards := &fakeHazardsRepo{}
	svc := newTestIngest(records, hazards, nil, nil)

	res, err := svc.IngestDowntimeHistory(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, domain.UploadTypeDowntimeHistory, res.FileType)
	require.Equal(t, 1, res.RowsParsed)
	require.Zero(t, res.WarningsCount)

	require.Len(t, records.dailyRecords, 1)
	require.Equal(t, domain.HazardSourceDowntime, hazards.replacedSource)
	require.Len(t, hazards.replaced, 1)
	require.Equal(t, domain.SeverityMedium, hazards.replaced[0].Severity)
	require.Equal(t, "100", *hazards.replaced[0].SourceRefID)
}

func TestIngestShiftJournal_UnreadableWorkbookFails(t *testing.T) {
	svc := newTestIngest(&fakeRecordsRepo{}, &fakeHazardsRepo{}, nil, nil)
	_, err := svc.IngestShiftJournal(context.Background(), []byte("not a workbook"))
	require.Error(t, err)
}
