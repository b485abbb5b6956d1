package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawnquote/internal/core"
	"lawnquote/internal/types"
)

// AssessmentRepo defines the data access contract for assessment operations.
type AssessmentRepo interface {
	Create(ctx context.Context, a *types.PropertyAssessment) error
	GetByID(ctx context.Context, id, orgID string) (*types.PropertyAssessment, error)
	List(ctx context.Context, orgID string, limit int) ([]*types.PropertyAssessment, error)
	Update(ctx context.Context, a *types.PropertyAssessment) error
	Delete(ctx context.Context, id, orgID string) error
}

// AssessmentClientRepo verifies client ownership when an assessment
// references a client.
type AssessmentClientRepo interface {
	GetByID(ctx context.Context, id, orgID string) (*types.Client, error)
}

// AssessmentConditions groups the on-site observation fields shared by the
// create and update requests. All fields are optional; an assessor records
// only what was observed.
type AssessmentConditions struct {
	LawnCondition   *types.LawnCondition `json:"lawn_condition,omitempty" validate:"omitempty,oneof=healthy patchy poor dead"`
	SoilCondition   *types.SoilCondition `json:"soil_condition,omitempty" validate:"omitempty,oneof=normal compacted contaminated clay sandy"`
	WeedCoverage    *float64             `json:"weed_coverage_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	SoilPH          *float64             `json:"soil_ph,omitempty" validate:"omitempty,gte=0,lte=14"`
	DrainageQuality *float64             `json:"drainage_quality,omitempty" validate:"omitempty,gte=0,lte=10"`

	ComplexityScore   *float64 `json:"complexity_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	VehicleAccessFeet *float64 `json:"vehicle_access_width_feet,omitempty" validate:"omitempty,gte=0"`
	DumpTruckAccess   *bool    `json:"dump_truck_access,omitempty"`
	CraneAccessNeeded *bool    `json:"crane_access_needed,omitempty"`
	SlopeGrade        *float64 `json:"slope_grade_percent,omitempty" validate:"omitempty,gte=0"`

	TreeCount         *int     `json:"tree_count,omitempty" validate:"omitempty,gte=0"`
	ShrubCount        *int     `json:"shrub_count,omitempty" validate:"omitempty,gte=0"`
	LawnAreaSqFt      *float64 `json:"lawn_area_sqft,omitempty" validate:"omitempty,gt=0"`
	EstimatedAreaSqFt *float64 `json:"estimated_area_sqft,omitempty" validate:"omitempty,gt=0"`

	TotalEstimatedHours *float64 `json:"total_estimated_hours,omitempty" validate:"omitempty,gt=0"`
}

// CreateAssessmentRequest is the request body for POST /v1/assessments.
type CreateAssessmentRequest struct {
	ClientID        string     `json:"client_id,omitempty"`
	PropertyAddress string     `json:"property_address,omitempty" validate:"max=500"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Notes           string     `json:"notes,omitempty" validate:"max=5000"`
	AssessmentConditions
}

// UpdateAssessmentRequest is the request body for PATCH /v1/assessments/{id}.
// Only provided fields are changed; condition fields already on the record
// are kept when omitted.
type UpdateAssessmentRequest struct {
	PropertyAddress *string                 `json:"property_address,omitempty" validate:"omitempty,max=500"`
	Status          *types.AssessmentStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	ScheduledAt     *time.Time              `json:"scheduled_at,omitempty"`
	Notes           *string                 `json:"notes,omitempty" validate:"omitempty,max=5000"`
	AssessmentConditions
}

// AssessmentHandler manages property assessment CRUD operations.
type AssessmentHandler struct {
	assessmentRepo AssessmentRepo
	clientRepo     AssessmentClientRepo
	validator      *core.Validator
	logger         *slog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(
	assessmentRepo AssessmentRepo,
	clientRepo AssessmentClientRepo,
	v *core.Validator,
	l *slog.Logger,
) *AssessmentHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AssessmentHandler{
		assessmentRepo: assessmentRepo,
		clientRepo:     clientRepo,
		validator:      v,
		logger:         l,
	}
}

// RegisterRoutes mounts assessment routes on the provided chi.Router.
func (h *AssessmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// Create handles POST /v1/assessments.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreateAssessmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if req.ClientID != "" {
		if _, err := h.clientRepo.GetByID(r.Context(), req.ClientID, orgID); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	assessment := &types.PropertyAssessment{
		ID:              "asmt_" + uuid.New().String(),
		OrganizationID:  orgID,
		ClientID:        req.ClientID,
		PropertyAddress: req.PropertyAddress,
		Status:          types.AssessmentScheduled,
		ScheduledAt:     req.ScheduledAt,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyConditions(assessment, req.AssessmentConditions)

	if err := h.assessmentRepo.Create(r.Context(), assessment); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: assessment})
}

// Get handles GET /v1/assessments/{id}.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	assessment, err := h.assessmentRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: assessment})
}

// List handles GET /v1/assessments.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	limit, _ := paginationParams(r)
	assessments, err := h.assessmentRepo.List(r.Context(), orgID, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	data := make([]types.PropertyAssessment, 0, len(assessments))
	for _, a := range assessments {
		data = append(data, *a)
	}

	resp := types.ListResponse[types.PropertyAssessment]{
		Data:     data,
		PageInfo: types.PageInfo{HasMore: len(data) == limit},
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// Update handles PATCH /v1/assessments/{id}.
//
// Setting status to completed stamps CompletedAt; moving it back clears the
// stamp.
func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req UpdateAssessmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	assessment, err := h.assessmentRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.PropertyAddress != nil {
		assessment.PropertyAddress = *req.PropertyAddress
	}
	if req.ScheduledAt != nil {
		assessment.ScheduledAt = req.ScheduledAt
	}
	if req.Notes != nil {
		assessment.Notes = *req.Notes
	}
	if req.Status != nil && *req.Status != assessment.Status {
		assessment.Status = *req.Status
		if *req.Status == types.AssessmentCompleted {
			completed := time.Now().UTC()
			assessment.CompletedAt = &completed
		} else {
			assessment.CompletedAt = nil
		}
	}
	applyConditions(assessment, req.AssessmentConditions)
	assessment.UpdatedAt = time.Now().UTC()

	if err := h.assessmentRepo.Update(r.Context(), assessment); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: assessment})
}

// Delete handles DELETE /v1/assessments/{id}.
func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	if err := h.assessmentRepo.Delete(r.Context(), chi.URLParam(r, "id"), orgID); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// applyConditions copies the provided condition fields onto the assessment,
// leaving unset fields untouched.
func applyConditions(a *types.PropertyAssessment, c AssessmentConditions) {
	if c.LawnCondition != nil {
		a.LawnCondition = c.LawnCondition
	}
	if c.SoilCondition != nil {
		a.SoilCondition = c.SoilCondition
	}
	if c.WeedCoverage != nil {
		a.WeedCoverage = c.WeedCoverage
	}
	if c.SoilPH != nil {
		a.SoilPH = c.SoilPH
	}
	if c.DrainageQuality != nil {
		a.DrainageQuality = c.DrainageQuality
	}
	if c.ComplexityScore != nil {
		a.ComplexityScore = c.ComplexityScore
	}
	if c.VehicleAccessFeet != nil {
		a.VehicleAccessFeet = c.VehicleAccessFeet
	}
	if c.DumpTruckAccess != nil {
		a.DumpTruckAccess = c.DumpTruckAccess
	}
	if c.CraneAccessNeeded != nil {
		a.CraneAccessNeeded = c.CraneAccessNeeded
	}
	if c.SlopeGrade != nil {
		a.SlopeGrade = c.SlopeGrade
	}
	if c.TreeCount != nil {
		a.TreeCount = c.TreeCount
	}
	if c.ShrubCount != nil {
		a.ShrubCount = c.ShrubCount
	}
	if c.LawnAreaSqFt != nil {
		a.LawnAreaSqFt = c.LawnAreaSqFt
	}
	if c.EstimatedAreaSqFt != nil {
		a.EstimatedAreaSqFt = c.EstimatedAreaSqFt
	}
	if c.TotalEstimatedHours != nil {
		a.TotalEstimatedHours = c.TotalEstimatedHours
	}
}
