package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mill-data/internal/domain"
	"mill-data/internal/repository"
	"mill-data/internal/signal"
	"mill-data/internal/store"
)

const signalCacheTTL = 5 * time.Minute

// SignalService computes the signal summary for a date range, reading the
// stored record aggregates back through the repository and caching the
// result in redis until the next ingest invalidates it.
type SignalService struct {
	records repository.RecordsRepository
	engine  *signal.Engine
	cache   store.KV // nil when redis is disabled
	logger  *zap.Logger
}

func NewSignalService(records repository.RecordsRepository, engine *signal.Engine, cache store.KV, logger *zap.Logger) *SignalService {
	return &SignalService{records: records, engine: engine, cache: cache, logger: logger}
}

// Summary returns the signal summary for [from, to].
func (s *SignalService) Summary(ctx context.Context, from, to time.Time) (*domain.SignalSummary, error) {
	key := fmt.Sprintf("signal:summary:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var summary domain.SignalSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
			// corrupt cache entry: recompute below
		} else if err != store.ErrMiss {
			s.logger.Warn("signal cache read failed", zap.Error(err))
		}
	}

	in, err := s.buildInput(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := s.engine.Evaluate(*in)

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), signalCacheTTL); err != nil {
				s.logger.Warn("signal cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *SignalService) buildInput(ctx context.Context, from, to time.Time) (*signal.Input, error) {
	prod, err := s.records.ProductivityDailyAvg(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load productivity aggregates: %w", err)
	}
	down, err := s.records.DowntimeDailyTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load downtime aggregates: %w", err)
	}
	water, err := s.records.WaterDailyPairs(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load water aggregates: %w", err)
	}
	reasons, err := s.records.DowntimeReasons(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load downtime reasons: %w", err)
	}

	in := &signal.Input{From: from, To: to}
	for _, d := range prod {
		in.Productivity = append(in.Productivity, signal.ProductivityDay{Date: d.Date, AvgPct: d.AvgPct})
	}
	for _, d := range down {
		in.Downtime = append(in.Downtime, signal.DowntimeDay{Date: d.Date, TotalMinutes: d.TotalMinutes})
	}
	for _, d := range water {
		in.Water = append(in.Water, signal.WaterDay{Date: d.Date, Actual: d.Actual, Nominal: d.Nominal})
	}
	for _, r := range reasons {
		in.Reasons = append(in.Reasons, signal.ReasonMinutes{Reason: r.Reason, Minutes: r.Minutes})
	}
	return in, nil
}
