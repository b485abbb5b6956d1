package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"lawnquote/internal/types"
)

// AssessmentRepository persists property assessments. All queries are scoped
// to an organization for tenant isolation.
type AssessmentRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewAssessmentRepository creates an AssessmentRepository backed by the
// given database connection (pool or transaction).
func NewAssessmentRepository(db DBTX, logger *slog.Logger) *AssessmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssessmentRepository{db: db, logger: logger}
}

const assessmentColumns = `
	id, organization_id, client_id, property_address, status,
	scheduled_at, completed_at,
	lawn_condition, soil_condition, weed_coverage_percent, soil_ph, drainage_quality,
	complexity_score, vehicle_access_width_feet, dump_truck_access, crane_access_needed, slope_grade_percent,
	tree_count, shrub_count, lawn_area_sqft, estimated_area_sqft,
	total_estimated_hours, notes, created_at, updated_at`

// Create inserts a new assessment.
func (r *AssessmentRepository) Create(ctx context.Context, a *types.PropertyAssessment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO property_assessments (`+assessmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		         $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		a.ID, a.OrganizationID, nullable(a.ClientID), a.PropertyAddress, a.Status,
		a.ScheduledAt, a.CompletedAt,
		a.LawnCondition, a.SoilCondition, a.WeedCoverage, a.SoilPH, a.DrainageQuality,
		a.ComplexityScore, a.VehicleAccessFeet, a.DumpTruckAccess, a.CraneAccessNeeded, a.SlopeGrade,
		a.TreeCount, a.ShrubCount, a.LawnAreaSqFt, a.EstimatedAreaSqFt,
		a.TotalEstimatedHours, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create assessment", err)
	}
	return nil
}

// GetByID fetches an assessment by ID within an organization.
func (r *AssessmentRepository) GetByID(ctx context.Context, id, orgID string) (*types.PropertyAssessment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assessmentColumns+`
		 FROM property_assessments
		 WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)

	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAssessment, "assessment not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch assessment", err)
	}
	return a, nil
}

// List returns assessments for an organization, newest first, using
// keyset pagination on created_at.
func (r *AssessmentRepository) List(ctx context.Context, orgID string, limit int) ([]*types.PropertyAssessment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+assessmentColumns+`
		 FROM property_assessments
		 WHERE organization_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		orgID, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list assessments", err)
	}
	defer rows.Close()

	var out []*types.PropertyAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan assessment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read assessments", err)
	}
	return out, nil
}

// Update rewrites the mutable fields of an assessment.
func (r *AssessmentRepository) Update(ctx context.Context, a *types.PropertyAssessment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE property_assessments SET
		   client_id = $1, property_address = $2, status = $3,
		   scheduled_at = $4, completed_at = $5,
		   lawn_condition = $6, soil_condition = $7, weed_coverage_percent = $8,
		   soil_ph = $9, drainage_quality = $10,
		   complexity_score = $11, vehicle_access_width_feet = $12,
		   dump_truck_access = $13, crane_access_needed = $14, slope_grade_percent = $15,
		   tree_count = $16, shrub_count = $17, lawn_area_sqft = $18, estimated_area_sqft = $19,
		   total_estimated_hours = $20, notes = $21, updated_at = NOW()
		 WHERE id = $22 AND organization_id = $23`,
		nullable(a.ClientID), a.PropertyAddress, a.Status,
		a.ScheduledAt, a.CompletedAt,
		a.LawnCondition, a.SoilCondition, a.WeedCoverage,
		a.SoilPH, a.DrainageQuality,
		a.ComplexityScore, a.VehicleAccessFeet,
		a.DumpTruckAccess, a.CraneAccessNeeded, a.SlopeGrade,
		a.TreeCount, a.ShrubCount, a.LawnAreaSqFt, a.EstimatedAreaSqFt,
		a.TotalEstimatedHours, a.Notes, a.ID, a.OrganizationID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update assessment", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAssessment, "assessment not found", nil)
	}
	return nil
}

// Delete removes an assessment.
func (r *AssessmentRepository) Delete(ctx context.Context, id, orgID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM property_assessments WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete assessment", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAssessment, "assessment not found", nil)
	}
	return nil
}

// scanAssessment reads one assessment row in assessmentColumns order.
func scanAssessment(row pgx.Row) (*types.PropertyAssessment, error) {
	var a types.PropertyAssessment
	var clientID *string
	err := row.Scan(
		&a.ID, &a.OrganizationID, &clientID, &a.PropertyAddress, &a.Status,
		&a.ScheduledAt, &a.CompletedAt,
		&a.LawnCondition, &a.SoilCondition, &a.WeedCoverage, &a.SoilPH, &a.DrainageQuality,
		&a.ComplexityScore, &a.VehicleAccessFeet, &a.DumpTruckAccess, &a.CraneAccessNeeded, &a.SlopeGrade,
		&a.TreeCount, &a.ShrubCount, &a.LawnAreaSqFt, &a.EstimatedAreaSqFt,
		&a.TotalEstimatedHours, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if clientID != nil {
		a.ClientID = *clientID
	}
	return &a, nil
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
