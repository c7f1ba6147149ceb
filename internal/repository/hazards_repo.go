package repository

import (
	"context"
	"time"

	"mill-data/internal/domain"
)

// HazardsRepository persists hazard records.
//
// Parser-derived hazards live and die with their source records:
// ReplaceDerived deletes all hazards of the given source type for the
// affected dates before inserting the newly detected set. Manual and photo
// hazards are only ever created explicitly and mutated via UpdateStatus /
// Patch.
type HazardsRepository interface {
	ReplaceDerived(ctx context.Context, sourceType string, dates []time.Time, hazards []domain.HazardRecord) error
	Create(ctx context.Context, hazard *domain.HazardRecord) error
	List(ctx context.Context, from, to time.Time, status string) ([]domain.HazardRecord, error)
	Get(ctx context.Context, hazardID string) (*domain.HazardRecord, error)
	UpdateStatus(ctx context.Context, hazardID, status string) error
	// Patch updates description and/or severity; nil fields are left as-is.
	Patch(ctx context.Context, hazardID string, description, severity *string) error
	// CountBySeverity serves the dashboard group-by aggregate.
	CountBySeverity(ctx context.Context, from, to time.Time) (map[string]int, error)
}
