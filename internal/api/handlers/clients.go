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

// ClientRepo defines the data access contract for client operations.
type ClientRepo interface {
	Create(ctx context.Context, c *types.Client) error
	GetByID(ctx context.Context, id, orgID string) (*types.Client, error)
	List(ctx context.Context, orgID string, limit, offset int) ([]types.Client, error)
	Update(ctx context.Context, c *types.Client) error
	Delete(ctx context.Context, id, orgID string) error
}

// ClientUsageEnforcer checks the client count limit before creation.
type ClientUsageEnforcer interface {
	CheckLimit(ctx context.Context, orgID string, resource types.ResourceType, count int) error
}

// CreateClientRequest is the request body for POST /v1/clients.
type CreateClientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,max=50"`
	PropertyAddress string `json:"property_address,omitempty" validate:"max=500"`
}

// UpdateClientRequest is the request body for PATCH /v1/clients/{id}.
type UpdateClientRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	PropertyAddress *string `json:"property_address,omitempty" validate:"omitempty,max=500"`
}

// ClientHandler manages a contractor's customer records.
type ClientHandler struct {
	clientRepo    ClientRepo
	usageEnforcer ClientUsageEnforcer
	validator     *core.Validator
	logger        *slog.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientRepo ClientRepo, usageEnforcer ClientUsageEnforcer, v *core.Validator, l *slog.Logger) *ClientHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ClientHandler{
		clientRepo:    clientRepo,
		usageEnforcer: usageEnforcer,
		validator:     v,
		logger:        l,
	}
}

// RegisterRoutes mounts client routes on the provided chi.Router.
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// Create handles POST /v1/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreateClientRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if h.usageEnforcer != nil {
		if err := h.usageEnforcer.CheckLimit(r.Context(), orgID, types.ResourceClients, 1); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	client := &types.Client{
		ID:              "client_" + uuid.New().String(),
		OrganizationID:  orgID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		PropertyAddress: req.PropertyAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.clientRepo.Create(r.Context(), client); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: client})
}

// Get handles GET /v1/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	client, err := h.clientRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: client})
}

// List handles GET /v1/clients with limit/offset pagination.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
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
	clients, err := h.clientRepo.List(r.Context(), orgID, limit, offset)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := types.ListResponse[types.Client]{
		Data:     clients,
		PageInfo: types.PageInfo{HasMore: len(clients) == limit},
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// Update handles PATCH /v1/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req UpdateClientRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	client, err := h.clientRepo.GetByID(r.Context(), chi.URLParam(r, "id"), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.PropertyAddress != nil {
		client.PropertyAddress = *req.PropertyAddress
	}
	client.UpdatedAt = time.Now().UTC()

	if err := h.clientRepo.Update(r.Context(), client); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: client})
}

// Delete handles DELETE /v1/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	if err := h.clientRepo.Delete(r.Context(), chi.URLParam(r, "id"), orgID); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
