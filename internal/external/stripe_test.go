package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lawnquote/internal/types"
)

// ---------------------------------------------------------------------------
// Mock OrgBillingLookup
// ---------------------------------------------------------------------------

type mockOrgBillingLookup struct {
	getBillingInfoFn       func(ctx context.Context, orgID string) (string, string, error)
	updateStripeCustomerFn func(ctx context.Context, orgID string, customerID string) error
}

func (m *mockOrgBillingLookup) GetBillingInfo(ctx context.Context, orgID string) (string, string, error) {
	if m.getBillingInfoFn != nil {
		return m.getBillingInfoFn(ctx, orgID)
	}
	return "cus_test123", "billing@example.com", nil
}

func (m *mockOrgBillingLookup) UpdateStripeCustomerID(ctx context.Context, orgID string, customerID string) error {
	if m.updateStripeCustomerFn != nil {
		return m.updateStripeCustomerFn(ctx, orgID, customerID)
	}
	return nil
}

func newTestStripeClient(t *testing.T, serverURL string, lookup OrgBillingLookup) *StripeClient {
	t.Helper()
	base := NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-stripe",
		RetryPolicy{
			MaxRetries: 0, // No retries in tests for deterministic behavior
			MinWait:    1 * time.Millisecond,
			MaxWait:    10 * time.Millisecond,
		},
		"LawnQuote-Test/1.0",
		WithSleepFunc(noopSleep),
	)

	return NewStripeClientWithBase(base, lookup, StripeClientConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   serverURL,
		PriceIDFor: func(plan types.PlanTier) string {
			return "price_" + string(plan) + "_test"
		},
	})
}

// ---------------------------------------------------------------------------
// EnsureCustomer Tests
// ---------------------------------------------------------------------------

func TestEnsureCustomer_ExistingCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/customers/search" {
			t.Errorf("expected path /v1/customers/search, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}

		auth := r.Header.Get("Authorization")
		if auth != "Bearer sk_test_secret" {
			t.Errorf("expected Bearer sk_test_secret, got %s", auth)
		}

		query := r.URL.Query().Get("query")
		if !strings.Contains(query, "org_123") {
			t.Errorf("expected query to contain org_123, got %s", query)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"id":       "cus_existing",
					"email":    "billing@example.com",
					"metadata": map[string]string{"org_id": "org_123"},
				},
			},
			"has_more": false,
		})
	}))
	defer server.Close()

	var updatedOrgID, updatedCustomerID string
	lookup := &mockOrgBillingLookup{
		updateStripeCustomerFn: func(ctx context.Context, orgID string, customerID string) error {
			updatedOrgID = orgID
			updatedCustomerID = customerID
			return nil
		},
	}

	client := newTestStripeClient(t, server.URL, lookup)

	customerID, err := client.EnsureCustomer(context.Background(), "org_123", "billing@example.com")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if customerID != "cus_existing" {
		t.Errorf("expected customer ID cus_existing, got %s", customerID)
	}
	if updatedOrgID != "org_123" {
		t.Errorf("expected orgID org_123, got %s", updatedOrgID)
	}
	if updatedCustomerID != "cus_existing" {
		t.Errorf("expected customerID cus_existing, got %s", updatedCustomerID)
	}
}

func TestEnsureCustomer_CreatesNewCustomer(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/v1/customers/search" && r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{
				"data":     []any{},
				"has_more": false,
			})

		case r.URL.Path == "/v1/customers" && r.Method == http.MethodPost:
			r.ParseForm()
			if email := r.FormValue("email"); email != "new@example.com" {
				t.Errorf("expected email new@example.com, got %s", email)
			}
			if orgID := r.FormValue("metadata[org_id]"); orgID != "org_new" {
				t.Errorf("expected metadata[org_id] org_new, got %s", orgID)
			}

			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{
				"id":       "cus_created",
				"email":    "new@example.com",
				"metadata": map[string]string{"org_id": "org_new"},
			})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	lookup := &mockOrgBillingLookup{}
	client := newTestStripeClient(t, server.URL, lookup)

	customerID, err := client.EnsureCustomer(context.Background(), "org_new", "new@example.com")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if customerID != "cus_created" {
		t.Errorf("expected customer ID cus_created, got %s", customerID)
	}
	if callCount != 2 {
		t.Errorf("expected 2 API calls (search + create), got %d", callCount)
	}
}

func TestEnsureCustomer_StripeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "api_error",
				"message": "internal server error",
			},
		})
	}))
	defer server.Close()

	lookup := &mockOrgBillingLookup{}
	client := newTestStripeClient(t, server.URL, lookup)

	_, err := client.EnsureCustomer(context.Background(), "org_123", "test@example.com")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T: %v", err, err)
	}
}

// ---------------------------------------------------------------------------
// CreateCheckoutSession Tests
// ---------------------------------------------------------------------------

func TestCreateCheckoutSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("expected path /v1/checkout/sessions, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		r.ParseForm()
		if cust := r.FormValue("customer"); cust != "cus_test123" {
			t.Errorf("expected customer cus_test123, got %s", cust)
		}
		if mode := r.FormValue("mode"); mode != "subscription" {
			t.Errorf("expected mode subscription, got %s", mode)
		}
		if ref := r.FormValue("client_reference_id"); ref != "org_123" {
			t.Errorf("expected client_reference_id org_123, got %s", ref)
		}
		if price := r.FormValue("line_items[0][price]"); price != "price_pro_test" {
			t.Errorf("expected price_pro_test, got %s", price)
		}
		if plan := r.FormValue("metadata[plan]"); plan != "pro" {
			t.Errorf("expected metadata[plan] pro, got %s", plan)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"id":  "cs_test_abc",
			"url": "https://checkout.stripe.com/pay/cs_test_abc",
		})
	}))
	defer server.Close()

	lookup := &mockOrgBillingLookup{}
	client := newTestStripeClient(t, server.URL, lookup)

	checkoutURL, sessionID, err := client.CreateCheckoutSession(
		context.Background(),
		"org_123",
		types.PlanPro,
		types.RedirectURLs{
			Success: "https://app.example.com/billing?success=true",
			Cancel:  "https://app.example.com/billing?canceled=true",
		},
	)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if sessionID != "cs_test_abc" {
		t.Errorf("expected session ID cs_test_abc, got %s", sessionID)
	}
	if checkoutURL != "https://checkout.stripe.com/pay/cs_test_abc" {
		t.Errorf("unexpected checkout URL: %s", checkoutURL)
	}
}

func TestCreateCheckoutSession_NoCustomerID(t *testing.T) {
	lookup := &mockOrgBillingLookup{
		getBillingInfoFn: func(ctx context.Context, orgID string) (string, string, error) {
			return "", "billing@example.com", nil
		},
	}
	client := newTestStripeClient(t, "http://unused.invalid", lookup)

	_, _, err := client.CreateCheckoutSession(
		context.Background(), "org_123", types.PlanPro, types.RedirectURLs{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeNotFoundOrg {
		t.Errorf("expected %s, got %s", types.ErrCodeNotFoundOrg, appErr.Code)
	}
}

func TestCreateCheckoutSession_CardDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":         "card_error",
				"code":         "card_declined",
				"decline_code": "insufficient_funds",
				"message":      "Your card has insufficient funds.",
			},
		})
	}))
	defer server.Close()

	lookup := &mockOrgBillingLookup{}
	client := newTestStripeClient(t, server.URL, lookup)

	_, _, err := client.CreateCheckoutSession(
		context.Background(), "org_123", types.PlanStarter, types.RedirectURLs{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodePaymentDeclined {
		t.Errorf("expected %s, got %s", types.ErrCodePaymentDeclined, appErr.Code)
	}
	if appErr.Details["decline_code"] != "insufficient_funds" {
		t.Errorf("expected decline_code detail, got %v", appErr.Details)
	}
}

// ---------------------------------------------------------------------------
// CreatePortalSession Tests
// ---------------------------------------------------------------------------

func TestCreatePortalSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/billing_portal/sessions" {
			t.Errorf("expected path /v1/billing_portal/sessions, got %s", r.URL.Path)
		}

		r.ParseForm()
		if cust := r.FormValue("customer"); cust != "cus_test123" {
			t.Errorf("expected customer cus_test123, got %s", cust)
		}
		if ret := r.FormValue("return_url"); ret != "https://app.example.com/billing" {
			t.Errorf("expected return_url, got %s", ret)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"id":  "bps_test_abc",
			"url": "https://billing.stripe.com/session/bps_test_abc",
		})
	}))
	defer server.Close()

	lookup := &mockOrgBillingLookup{}
	client := newTestStripeClient(t, server.URL, lookup)

	portalURL, err := client.CreatePortalSession(
		context.Background(), "org_123", "https://app.example.com/billing")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if portalURL != "https://billing.stripe.com/session/bps_test_abc" {
		t.Errorf("unexpected portal URL: %s", portalURL)
	}
}

func TestCreatePortalSession_OrgNotFound(t *testing.T) {
	lookup := &mockOrgBillingLookup{
		getBillingInfoFn: func(ctx context.Context, orgID string) (string, string, error) {
			return "", "", types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", nil)
		},
	}
	client := newTestStripeClient(t, "http://unused.invalid", lookup)

	_, err := client.CreatePortalSession(context.Background(), "org_missing", "https://app.example.com")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeNotFoundOrg {
		t.Errorf("expected %s, got %s", types.ErrCodeNotFoundOrg, appErr.Code)
	}
}
