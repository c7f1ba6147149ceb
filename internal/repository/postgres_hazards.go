package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mill-data/internal/domain"
)

// PostgresHazardsRepository HazardsRepository implementation on postgres.
type PostgresHazardsRepository struct {
	db *sql.DB
}

func NewPostgresHazardsRepository(db *sql.DB) *PostgresHazardsRepository {
	return &PostgresHazardsRepository{db: db}
}

var _ HazardsRepository = (*PostgresHazardsRepository)(nil)

func (r *PostgresHazardsRepository) ReplaceDerived(ctx context.Context, sourceType string, dates []time.Time, hazards []domain.HazardRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM hazards WHERE source_type = $1 AND date = ANY($2::date[])`,
		sourceType, pq.Array(dateStrings(dates))); err != nil {
		return fmt.Errorf("failed to delete derived hazards: %w", err)
	}

	for _, h := range hazards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hazards (hazard_id, date, source_type, source_ref_id, description, severity, status, tags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			h.HazardID, h.Date, h.SourceType, h.SourceRefID, h.Description, h.Severity, h.Status, h.Tags); err != nil {
			return fmt.Errorf("failed to insert hazard: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hazard replace: %w", err)
	}
	return nil
}

func (r *PostgresHazardsRepository) Create(ctx context.Context, h *domain.HazardRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hazards (hazard_id, date, source_type, source_ref_id, description, severity, status, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.HazardID, h.Date, h.SourceType, h.SourceRefID, h.Description, h.Severity, h.Status, h.Tags)
	if err != nil {
		return fmt.Errorf("failed to create hazard: %w", err)
	}
	return nil
}

func (r *PostgresHazardsRepository) List(ctx context.Context, from, to time.Time, status string) ([]domain.HazardRecord, error) {
	query := `
		SELECT hazard_id::text, date, source_type,
		       source_ref_id, description, severity, status,
		       COALESCE(tags, '') AS tags,
		       EXTRACT(EPOCH FROM created_at)::bigint AS created_at
		FROM hazards
		WHERE date >= $1 AND date <= $2`
	args := []any{from, to}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hazards: %w", err)
	}
	defer rows.Close()

	var out []domain.HazardRecord
	for rows.Next() {
		var h domain.HazardRecord
		if err := rows.Scan(&h.HazardID, &h.Date, &h.SourceType, &h.SourceRefID,
			&h.Description, &h.Severity, &h.Status, &h.Tags, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hazard: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *PostgresHazardsRepository) Get(ctx context.Context, hazardID string) (*domain.HazardRecord, error) {
	var h domain.HazardRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT hazard_id::text, date, source_type,
		        source_ref_id, description, severity, status,
		        COALESCE(tags, '') AS tags,
		        EXTRACT(EPOCH FROM created_at)::bigint AS created_at
		 FROM hazards WHERE hazard_id = $1::uuid`, hazardID,
	).Scan(&h.HazardID, &h.Date, &h.SourceType, &h.SourceRefID,
		&h.Description, &h.Severity, &h.Status, &h.Tags, &h.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hazard: %w", err)
	}
	return &h, nil
}

func (r *PostgresHazardsRepository) UpdateStatus(ctx context.Context, hazardID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hazards SET status = $2 WHERE hazard_id = $1::uuid`, hazardID, status)
	if err != nil {
		return fmt.Errorf("failed to update hazard status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("hazard %s not found", hazardID)
	}
	return nil
}

func (r *PostgresHazardsRepository) Patch(ctx context.Context, hazardID string, description, severity *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hazards
		 SET description = COALESCE($2, description),
		     severity = COALESCE($3, severity)
		 WHERE hazard_id = $1::uuid`, hazardID, description, severity)
	if err != nil {
		return fmt.Errorf("failed to patch hazard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("hazard %s not found", hazardID)
	}
	return nil
}

func (r *PostgresHazardsRepository) CountBySeverity(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT severity, COUNT(*)
		 FROM hazards
		 WHERE date >= $1 AND date <= $2
		 GROUP BY severity`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count hazards by severity: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hazard count: %w", err)
		}
		out[severity] = count
	}
	return out, rows.Err()
}
