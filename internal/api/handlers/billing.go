package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawnquote/internal/core"
	"lawnquote/internal/types"
)

// CheckoutService abstracts the Stripe operations needed by the billing
// endpoints.
type CheckoutService interface {
	EnsureCustomer(ctx context.Context, orgID string, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, orgID string, plan types.PlanTier, urls types.RedirectURLs) (checkoutURL string, sessionID string, err error)
	CreatePortalSession(ctx context.Context, orgID string, returnURL string) (portalURL string, err error)
}

// BillingOrgRepo provides the billing contact details for an organization.
type BillingOrgRepo interface {
	GetBillingInfo(ctx context.Context, orgID string) (customerID, email string, err error)
}

// BillingPlanRegistry exposes the plan limit table for the plans endpoint.
type BillingPlanRegistry interface {
	GetLimits(tier types.PlanTier) types.PlanLimits
}

// CreateCheckoutRequest is the request body for POST /v1/billing/checkout.
type CreateCheckoutRequest struct {
	Plan       types.PlanTier `json:"plan" validate:"required,oneof=starter pro business"`
	SuccessURL string         `json:"success_url" validate:"required,url,max=2000"`
	CancelURL  string         `json:"cancel_url" validate:"required,url,max=2000"`
}

// CreatePortalRequest is the request body for POST /v1/billing/portal.
type CreatePortalRequest struct {
	ReturnURL string `json:"return_url" validate:"required,url,max=2000"`
}

// PlanDescription is one entry in the GET /v1/billing/plans response.
type PlanDescription struct {
	Tier   types.PlanTier   `json:"tier"`
	Limits types.PlanLimits `json:"limits"`
}

// BillingHandler exposes the subscription checkout and portal flows.
// Subscription state itself lives in Stripe; these endpoints only hand the
// caller a redirect URL.
type BillingHandler struct {
	checkout  CheckoutService
	orgRepo   BillingOrgRepo
	plans     BillingPlanRegistry
	validator *core.Validator
	logger    *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(
	checkout CheckoutService,
	orgRepo BillingOrgRepo,
	plans BillingPlanRegistry,
	v *core.Validator,
	l *slog.Logger,
) *BillingHandler {
	if l == nil {
		l = slog.Default()
	}
	return &BillingHandler{
		checkout:  checkout,
		orgRepo:   orgRepo,
		plans:     plans,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts billing routes on the provided chi.Router.
func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/billing", func(r chi.Router) {
		r.Get("/plans", h.Plans)
		r.Post("/checkout", h.Checkout)
		r.Post("/portal", h.Portal)
	})
}

// Plans handles GET /v1/billing/plans. The table is static so the endpoint
// needs no organization context beyond authentication.
func (h *BillingHandler) Plans(w http.ResponseWriter, r *http.Request) {
	tiers := []types.PlanTier{
		types.PlanFree,
		types.PlanStarter,
		types.PlanPro,
		types.PlanBusiness,
	}
	descriptions := make([]PlanDescription, 0, len(tiers))
	for _, tier := range tiers {
		descriptions = append(descriptions, PlanDescription{
			Tier:   tier,
			Limits: h.plans.GetLimits(tier),
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: descriptions})
}

// Checkout handles POST /v1/billing/checkout.
//
//  1. Decode and validate the request.
//  2. Ensure a Stripe customer exists for the organization.
//  3. Create a subscription checkout session and return its URL.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreateCheckoutRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	_, email, err := h.orgRepo.GetBillingInfo(r.Context(), orgID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if _, err := h.checkout.EnsureCustomer(r.Context(), orgID, email); err != nil {
		core.Error(w, r, err)
		return
	}

	checkoutURL, sessionID, err := h.checkout.CreateCheckoutSession(r.Context(), orgID, req.Plan, types.RedirectURLs{
		Success: req.SuccessURL,
		Cancel:  req.CancelURL,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "checkout session created",
		"org_id", orgID,
		"plan", string(req.Plan),
		"session_id", sessionID,
	)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"checkout_url": checkoutURL,
		"session_id":   sessionID,
	}})
}

// Portal handles POST /v1/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	orgID, ok := types.GetOrgID(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Organization context is required",
			nil,
		))
		return
	}

	var req CreatePortalRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	portalURL, err := h.checkout.CreatePortalSession(r.Context(), orgID, req.ReturnURL)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"portal_url": portalURL,
	}})
}
