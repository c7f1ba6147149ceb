package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mill-data/internal/domain"
	"mill-data/internal/hazard"
	"mill-data/internal/repository"
	"mill-data/internal/store"
	"mill-data/internal/xlsx"
)

// HazardPublisher pushes a newly created hazard to the alarm channel.
type HazardPublisher interface {
	PublishHazard(h *domain.HazardRecord) error
}

// IngestService coordinates one upload: parse the workbook, replace all
// same-date records (and their derived hazards) by the affected date set,
// insert the newly parsed records, run hazard detection over downtime
// reasons, and invalidate the signal cache.
//
// A workbook that cannot be opened aborts the whole upload with no partial
// commit; cell-level warnings never block success.
type IngestService struct {
	records        repository.RecordsRepository
	hazards        repository.HazardsRepository
	detector       *hazard.Detector
	downtimeParser *xlsx.DowntimeHistoryParser
	publisher      HazardPublisher // nil when alarms are disabled
	cache          store.KV        // nil when redis is disabled
	logger         *zap.Logger
}

func NewIngestService(
	records repository.RecordsRepository,
	hazards repository.HazardsRepository,
	detector *hazard.Detector,
	downtimeParser *xlsx.DowntimeHistoryParser,
	publisher HazardPublisher,
	cache store.KV,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		records:        records,
		hazards:        hazards,
		detector:       detector,
		downtimeParser: downtimeParser,
		publisher:      publisher,
		cache:          cache,
		logger:         logger,
	}
}

// IngestShiftJournal processes a shift-journal workbook upload.
func (s *IngestService) IngestShiftJournal(ctx context.Context, data []byte) (*domain.UploadResult, error) {
	parsed, err := xlsx.ParseShiftJournal(data)
	if err != nil {
		return nil, err
	}

	dates := dateSet{}
	for _, rec := range parsed.Productivity {
		dates.add(rec.Date)
	}
	for _, rec := range parsed.Throughput {
		dates.add(rec.Date)
	}
	for _, rec := range parsed.Downtime {
		dates.add(rec.Date)
	}

	ids, err := s.records.ReplaceShiftJournal(ctx, dates.list(), parsed.Productivity, parsed.Throughput, parsed.Downtime)
	if err != nil {
		return nil, fmt.Errorf("failed to store shift journal records: %w", err)
	}

	var detected []domain.HazardRecord
	for i, rec := range parsed.Downtime {
		if rec.ReasonText == nil {
			continue
		}
		refID := strconv.FormatInt(ids[i], 10)
		detected = append(detected, s.deriveHazards(rec.Date, domain.HazardSourceTechJournal, refID, *rec.ReasonText)...)
	}
	if err := s.hazards.ReplaceDerived(ctx, domain.HazardSourceTechJournal, dates.list(), detected); err != nil {
		return nil, fmt.Errorf("failed to store derived hazards: %w", err)
	}
	s.publishHigh(detected)
	s.invalidateSignalCache(ctx)

	s.logger.Info("shift journal ingested",
		zap.Int("productivity_rows", len(parsed.Productivity)),
		zap.Int("throughput_rows", len(parsed.Throughput)),
		zap.Int("downtime_rows", len(parsed.Downtime)),
		zap.Int("hazards", len(detected)),
		zap.Int("warnings", len(parsed.Warnings)),
	)
	return uploadResult(domain.UploadTypeShiftJournal, parsed.Rows(), warningStrings(parsed.Warnings)), nil
}

// IngestWater processes a water-consumption workbook upload.
func (s *IngestService) IngestWater(ctx context.Context, data []byte) (*domain.UploadResult, error) {
	parsed, err := xlsx.ParseWater(data)
	if err != nil {
		return nil, err
	}

	dates := dateSet{}
	for _, rec := range parsed.Records {
		dates.add(rec.Date)
	}
	if err := s.records.ReplaceWater(ctx, dates.list(), parsed.Records); err != nil {
		return nil, fmt.Errorf("failed to store water records: %w", err)
	}
	s.invalidateSignalCache(ctx)

	s.logger.Info("water consumption ingested",
		zap.Int("rows", len(parsed.Records)),
		zap.Int("warnings", len(parsed.Warnings)),
	)
	return uploadResult(domain.UploadTypeWater, len(parsed.Records), warningStrings(parsed.Warnings)), nil
}

// IngestDowntimeHistory processes a monthly downtime-history workbook.
func (s *IngestService) IngestDowntimeHistory(ctx context.Context, data []byte) (*domain.UploadResult, error) {
	parsed, err := s.downtimeParser.Parse(data)
	if err != nil {
		return nil, err
	}

	dates := dateSet{}
	for _, rec := range parsed.Records {
		dates.add(rec.Date)
	}
	ids, err := s.records.ReplaceDowntimeDaily(ctx, dates.list(), parsed.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to store downtime records: %w", err)
	}

	var detected []domain.HazardRecord
	for i, rec := range parsed.Records {
		if rec.ReasonText == nil {
			continue
		}
		refID := strconv.FormatInt(ids[i], 10)
		detected = append(detected, s.deriveHazards(rec.Date, domain.HazardSourceDowntime, refID, *rec.ReasonText)...)
	}
	if err := s.hazards.ReplaceDerived(ctx, domain.HazardSourceDowntime, dates.list(), detected); err != nil {
		return nil, fmt.Errorf("failed to store derived hazards: %w", err)
	}
	s.publishHigh(detected)
	s.invalidateSignalCache(ctx)

	s.logger.Info("downtime history ingested",
		zap.Int("rows", len(parsed.Records)),
		zap.Int("hazards", len(detected)),
		zap.Int("warnings", len(parsed.Warnings)),
	)
	return uploadResult(domain.UploadTypeDowntimeHistory, len(parsed.Records), warningStrings(parsed.Warnings)), nil
}

// deriveHazards runs the detector over one reason text and wraps matches
// into persisted hazard records carrying the weak source back-reference.
func (s *IngestService) deriveHazards(date time.Time, sourceType, sourceRefID, text string) []domain.HazardRecord {
	detected := s.detector.Detect(text)
	out := make([]domain.HazardRecord, 0, len(detected))
	for _, d := range detected {
		ref := sourceRefID
		out = append(out, domain.HazardRecord{
			HazardID:    uuid.NewString(),
			Date:        date,
			SourceType:  sourceType,
			SourceRefID: &ref,
			Description: d.Description,
			Severity:    d.Severity,
			Status:      domain.HazardStatusOpen,
			Tags:        d.MatchedKeyword,
		})
	}
	return out
}

func (s *IngestService) publishHigh(hazards []domain.HazardRecord) {
	if s.publisher == nil {
		return
	}
	for i := range hazards {
		if hazards[i].Severity != domain.SeverityHigh {
			continue
		}
		if err := s.publisher.PublishHazard(&hazards[i]); err != nil {
			s.logger.Warn("failed to publish hazard alarm", zap.Error(err))
		}
	}
}

func (s *IngestService) invalidateSignalCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "signal:*"); err != nil {
		s.logger.Warn("failed to invalidate signal cache", zap.Error(err))
	}
}

func uploadResult(fileType string, rows int, warnings []string) *domain.UploadResult {
	return &domain.UploadResult{
		UploadID:      uuid.NewString(),
		FileType:      fileType,
		RowsParsed:    rows,
		WarningsCount: len(warnings),
		Warnings:      warnings,
	}
}

func warningStrings(warnings []xlsx.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.String())
	}
	return out
}

// dateSet collects unique affected dates in first-seen order.
type dateSet map[time.Time]struct{}

func (s dateSet) add(d time.Time) { s[d] = struct{}{} }

func (s dateSet) list() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}
