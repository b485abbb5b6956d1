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

// ItemRepo defines the data access contract for catalog item operations.
type ItemRepo interface {
	Create(ctx context.Context, item *types.LineItem) error
	GetByID(ctx context.Context, id, orgID string) (*types.LineItem, error)
	ListByOrg(ctx context.Context, orgID string) ([]types.LineItem, error)
	Update(ctx context.Context, item *types.LineItem) error
	Delete(ctx context.Context, id, orgID string) error
}

// ItemUsageEnforcer checks the catalog size limit before creation.
type ItemUsageEnforcer interface {
	CheckLimit(ctx context.Context, orgID string, resource types.ResourceType, count int) error
}

// CreateItemRequest is the request body for POST /v1/items.
type CreateItemRequest struct {
	Name string  `json:"name" validate:"required,max=200"`
	Unit string  `json:"unit" validate:"required,max=50"`
	Cost float64 `json:"cost" validate:"gte=0"`
}

// UpdateItemRequest is the request body for PATCH /v1/items/{id}.
type UpdateItemRequest struct {
	Name *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Unit *string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	Cost *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
}

// ItemHandler manages the service and material catalog.
type ItemHandler struct {
	itemRepo      ItemRepo
	usageEnforcer ItemUsageEnforcer
	validator     *core.Validator
	logger        *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemRepo ItemRepo, usageEnforcer ItemUsageEnforcer, v *core.Validator, l *slog.Logger) *ItemHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ItemHandler{
		itemRepo:      itemRepo,
		usageEnforcer: usageEnforcer,
		validator:     v,
		logger:        l,
	}
}

// RegisterRoutes mounts catalog routes on the provided chi.Router.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// Create handles POST /v1/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreateItemRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.usageEnforcer != nil {
		if err := h.usageEnforcer.CheckLimit(r.Context(), orgID, types.ResourceItems, 1); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	item := &types.LineItem{
		ID:             "item_" + uuid.New().String(),
		OrganizationID: orgID,
		Name:           req.Name,
		Unit:           req.Unit,
		Cost:           req.Cost,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.itemRepo.Create(r.Context(), item); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: item})
}

// Get handles GET /v1/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	item, err := h.itemRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: item})
}

// List handles GET /v1/items. The whole catalog is returned in creation
// order; catalogs are small and suggestion matching depends on that order.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	items, err := h.itemRepo.ListByOrg(r.Context(), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := types.ListResponse[types.LineItem]{
		Data:     items,
		PageInfo: types.PageInfo{HasMore: false},
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// Update handles PATCH /v1/items/{id}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req UpdateItemRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	item, err := h.itemRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Cost != nil {
		item.Cost = *req.Cost
	}
	item.UpdatedAt = time.Now().UTC()

	if err := h.itemRepo.Update(r.Context(), item); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: item})
}

// Delete handles DELETE /v1/items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	if err := h.itemRepo.Delete(r.Context(), chi.URLParam(r, "id"), orgID); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
