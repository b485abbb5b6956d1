// Package handlers contains the HTTP handler implementations for the
// LawnQuote API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lawnquote/internal/core"
	"lawnquote/internal/pricing"
	"lawnquote/internal/types"
)

// --- Service Interfaces ---
//
// These interfaces are defined locally following the handler injection
// pattern: handlers depend on abstractions for testability and to avoid
// coupling to concrete repository implementations.

// QuoteRepo defines the data access contract for quote operations.
// Mirrors the concrete db.QuoteRepository methods used by this handler.
type QuoteRepo interface {
	Create(ctx context.Context, q *types.Quote) error
	GetByID(ctx context.Context, id, orgID string) (*types.Quote, error)
	List(ctx context.Context, orgID string, limit, offset int) ([]types.Quote, error)
	UpdateStatus(ctx context.Context, id, orgID string, status types.QuoteStatus) error
	Delete(ctx context.Context, id, orgID string) error
	NextQuoteNumber(ctx context.Context, orgID string, now time.Time) (string, error)
}

// QuoteAssessmentRepo provides assessment lookup for quote computation.
type QuoteAssessmentRepo interface {
	GetByID(ctx context.Context, id, orgID string) (*types.PropertyAssessment, error)
}

// QuoteItemRepo provides catalog access for base price computation and
// suggestion matching.
type QuoteItemRepo interface {
	ListByOrg(ctx context.Context, orgID string) ([]types.LineItem, error)
}

// QuoteClientRepo verifies client ownership before quote creation.
type QuoteClientRepo interface {
	GetByID(ctx context.Context, id, orgID string) (*types.Client, error)
}

// QuoteUsageEnforcer checks plan limits before creation.
type QuoteUsageEnforcer interface {
	CheckLimit(ctx context.Context, orgID string, resource types.ResourceType, count int) error
}

// --- Request/Response Models ---

// QuoteLineSelection is one catalog item the contractor selected, with a
// quantity.
type QuoteLineSelection struct {
	LineItemID string  `json:"line_item_id" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
}

// PreviewQuoteRequest is the request body for POST /v1/quotes/preview.
// AssessmentID is optional: without it the preview is a plain sum of the
// selected items with no adjustments.
type PreviewQuoteRequest struct {
	AssessmentID string               `json:"assessment_id,omitempty"`
	LineItems    []QuoteLineSelection `json:"line_items" validate:"required,min=1,max=100,dive"`
	BaseHours    float64              `json:"base_hours,omitempty" validate:"omitempty,gte=0"`
}

// CreateQuoteRequest is the request body for POST /v1/quotes.
type CreateQuoteRequest struct {
	ClientID     string               `json:"client_id" validate:"required"`
	AssessmentID string               `json:"assessment_id,omitempty"`
	LineItems    []QuoteLineSelection `json:"line_items" validate:"required,min=1,max=100,dive"`
	BaseHours    float64              `json:"base_hours,omitempty" validate:"omitempty,gte=0"`
	Notes        string               `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateQuoteStatusRequest is the request body for POST /v1/quotes/{id}/status.
type UpdateQuoteStatusRequest struct {
	Status types.QuoteStatus `json:"status" validate:"required,oneof=draft sent accepted declined"`
}

// QuotePreview is the computed pricing returned by the preview endpoint.
// Nothing is persisted.
type QuotePreview struct {
	LineItems       []types.QuoteLineItem       `json:"line_items"`
	BasePrice       float64                     `json:"base_price"`
	Adjustments     []pricing.PricingAdjustment `json:"adjustments"`
	TotalMultiplier float64                     `json:"total_multiplier"`
	FinalPrice      float64                     `json:"final_price"`
	LaborHours      float64                     `json:"labor_hours"`
	SuggestedItems  []pricing.SuggestedItem     `json:"suggested_items"`
	Summary         string                      `json:"summary"`
}

// --- Handler ---

// QuoteHandler manages quote preview, CRUD, and lifecycle operations.
type QuoteHandler struct {
	quoteRepo      QuoteRepo
	assessmentRepo QuoteAssessmentRepo
	itemRepo       QuoteItemRepo
	clientRepo     QuoteClientRepo
	usageEnforcer  QuoteUsageEnforcer
	validator      *core.Validator
	logger         *slog.Logger
}

// NewQuoteHandler creates a new QuoteHandler with the provided dependencies.
func NewQuoteHandler(
	quoteRepo QuoteRepo,
	assessmentRepo QuoteAssessmentRepo,
	itemRepo QuoteItemRepo,
	clientRepo QuoteClientRepo,
	usageEnforcer QuoteUsageEnforcer,
	v *core.Validator,
	l *slog.Logger,
) *QuoteHandler {
	if l == nil {
		l = slog.Default()
	}
	return &QuoteHandler{
		quoteRepo:      quoteRepo,
		assessmentRepo: assessmentRepo,
		itemRepo:       itemRepo,
		clientRepo:     clientRepo,
		usageEnforcer:  usageEnforcer,
		validator:      v,
		logger:         l,
	}
}

// RegisterRoutes mounts quote routes on the provided chi.Router.
func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.Route("/quotes", func(r chi.Router) {
		r.Post("/preview", h.Preview)
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Get("/summary", h.Summary)
			r.Post("/status", h.UpdateStatus)
			r.Delete("/", h.Delete)
		})
	})
}

// --- Handler Methods ---

// Preview handles POST /v1/quotes/preview. It runs the full pricing
// computation without persisting anything:
//  1. Decode and validate the request.
//  2. Fetch the assessment (if referenced) and the catalog concurrently.
//  3. Sum the selected line items into a base price.
//  4. Apply assessment-driven adjustments, labor estimate, suggestions.
//  5. Return the computed preview with a plain-text summary.
func (h *QuoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req PreviewQuoteRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	preview, err := h.computePreview(r.Context(), orgID, req.AssessmentID, req.LineItems, req.BaseHours)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: preview})
}

// Create handles POST /v1/quotes.
//
//  1. Decode and validate the request; verify the client belongs to the org.
//  2. Enforce the monthly quote limit.
//  3. Recompute pricing server-side; client-submitted totals are never trusted.
//  4. Persist the quote with line item and adjustment snapshots.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreateQuoteRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if _, err := h.clientRepo.GetByID(r.Context(), req.ClientID, orgID); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.usageEnforcer != nil {
		if err := h.usageEnforcer.CheckLimit(r.Context(), orgID, types.ResourceQuotes, 1); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	preview, err := h.computePreview(r.Context(), orgID, req.AssessmentID, req.LineItems, req.BaseHours)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	quoteNumber, err := h.quoteRepo.NextQuoteNumber(r.Context(), orgID, now)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	adjustments := make([]types.AppliedAdjustment, 0, len(preview.Adjustments))
	for _, adj := range preview.Adjustments {
		adjustments = append(adjustments, types.AppliedAdjustment{
			Factor:     adj.Factor,
			Multiplier: adj.Multiplier,
			Reason:     adj.Reason,
			Category:   adj.Category,
		})
	}

	quote := &types.Quote{
		ID:              "quote_" + uuid.New().String(),
		OrganizationID:  orgID,
		ClientID:        req.ClientID,
		AssessmentID:    req.AssessmentID,
		QuoteNumber:     quoteNumber,
		Status:          types.QuoteDraft,
		LineItems:       preview.LineItems,
		BasePrice:       preview.BasePrice,
		Adjustments:     adjustments,
		TotalMultiplier: preview.TotalMultiplier,
		FinalPrice:      preview.FinalPrice,
		LaborHours:      preview.LaborHours,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.quoteRepo.Create(r.Context(), quote); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: quote})
}

// Get handles GET /v1/quotes/{id}.
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	quote, err := h.quoteRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: quote})
}

// List handles GET /v1/quotes with limit/offset pagination.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	limit, offset := paginationParams(r)
	quotes, err := h.quoteRepo.List(r.Context(), orgID, limit, offset)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := types.ListResponse[types.Quote]{
		Data:     quotes,
		PageInfo: types.PageInfo{HasMore: len(quotes) == limit},
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// Summary handles GET /v1/quotes/{id}/summary. It regenerates the customer
// facing plain-text summary from the persisted snapshots, refetching the
// assessment for property context.
func (h *QuoteHandler) Summary(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	quote, err := h.quoteRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	// Assessment context is optional: quotes created without one still get
	// a summary with the documented fallbacks.
	var assessment *types.PropertyAssessment
	if quote.AssessmentID != "" {
		assessment, err = h.assessmentRepo.GetByID(r.Context(), quote.AssessmentID, orgID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "assessment missing for quote summary",
				"quote_id", quote.ID,
				"assessment_id", quote.AssessmentID,
				"error", err,
			)
			assessment = nil
		}
	}

	result := &pricing.AssessmentPricingResult{
		BasePrice:       quote.BasePrice,
		TotalMultiplier: quote.TotalMultiplier,
		FinalPrice:      quote.FinalPrice,
		Adjustments:     make([]pricing.PricingAdjustment, 0, len(quote.Adjustments)),
		SuggestedItems:  []pricing.SuggestedItem{},
	}
	for _, adj := range quote.Adjustments {
		result.Adjustments = append(result.Adjustments, pricing.PricingAdjustment{
			Factor:     adj.Factor,
			Multiplier: adj.Multiplier,
			Reason:     adj.Reason,
			Category:   adj.Category,
		})
	}

	summary := pricing.GenerateAssessmentQuoteSummary(assessment, result)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"quote_id": quote.ID,
		"summary":  summary,
	}})
}

// UpdateStatus handles POST /v1/quotes/{id}/status.
//
// Valid transitions: draft -> sent, sent -> accepted, sent -> declined.
// Any other move returns conflict_quote_status.
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req UpdateQuoteStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	quote, err := h.quoteRepo.GetByID(r.Context(), id, orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if !validStatusTransition(quote.Status, req.Status) {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeConflictQuoteStatus,
			"invalid quote status transition",
			nil,
			map[string]any{
				"from": string(quote.Status),
				"to":   string(req.Status),
			},
		))
		return
	}

	if err := h.quoteRepo.UpdateStatus(r.Context(), id, orgID, req.Status); err != nil {
		core.Error(w, r, err)
		return
	}

	quote.Status = req.Status
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: quote})
}

// Delete handles DELETE /v1/quotes/{id}.
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	if err := h.quoteRepo.Delete(r.Context(), chi.URLParam(r, "id"), orgID); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Computation ---

// computePreview runs the pricing engine for the given selection. The
// assessment and the catalog are fetched concurrently since they are
// independent queries.
func (h *QuoteHandler) computePreview(
	ctx context.Context,
	orgID string,
	assessmentID string,
	selections []QuoteLineSelection,
	baseHours float64,
) (*QuotePreview, error) {
	var (
		assessment *types.PropertyAssessment
		catalog    []types.LineItem
	)

	g, gctx := errgroup.WithContext(ctx)
	if assessmentID != "" {
		g.Go(func() error {
			a, err := h.assessmentRepo.GetByID(gctx, assessmentID, orgID)
			if err != nil {
				return err
			}
			assessment = a
			return nil
		})
	}
	g.Go(func() error {
		items, err := h.itemRepo.ListByOrg(gctx, orgID)
		if err != nil {
			return err
		}
		catalog = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]types.LineItem, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}

	lines := make([]types.QuoteLineItem, 0, len(selections))
	var basePrice float64
	for _, sel := range selections {
		item, ok := byID[sel.LineItemID]
		if !ok {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeNotFoundItem,
				"line item not found",
				nil,
				map[string]any{"line_item_id": sel.LineItemID},
			)
		}
		lineTotal := item.Cost * sel.Quantity
		lines = append(lines, types.QuoteLineItem{
			LineItemID: item.ID,
			Name:       item.Name,
			Unit:       item.Unit,
			UnitCost:   item.Cost,
			Quantity:   sel.Quantity,
			LineTotal:  lineTotal,
		})
		basePrice += lineTotal
	}

	result := pricing.CalculateAssessmentPricing(assessment, catalog, basePrice)
	result.SuggestedItems = pricing.GenerateAssessmentLineItems(assessment, catalog)
	laborHours := pricing.CalculateLaborHours(assessment, baseHours)
	summary := pricing.GenerateAssessmentQuoteSummary(assessment, result)

	return &QuotePreview{
		LineItems:       lines,
		BasePrice:       result.BasePrice,
		Adjustments:     result.Adjustments,
		TotalMultiplier: result.TotalMultiplier,
		FinalPrice:      result.FinalPrice,
		LaborHours:      laborHours,
		SuggestedItems:  result.SuggestedItems,
		Summary:         summary,
	}, nil
}

// validStatusTransition reports whether a quote may move between the two
// statuses.
func validStatusTransition(from, to types.QuoteStatus) bool {
	switch from {
	case types.QuoteDraft:
		return to == types.QuoteSent
	case types.QuoteSent:
		return to == types.QuoteAccepted || to == types.QuoteDeclined
	default:
		return false
	}
}

// paginationParams extracts limit/offset query parameters with defaults.
func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
