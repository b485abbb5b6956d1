package core

import (
	"errors"
	"net/http"
	"testing"

	"lawnquote/internal/types"
)

type validatedRequest struct {
	Name  string  `validate:"required,max=10"`
	Email string  `validate:"omitempty,email"`
	Cost  float64 `validate:"gte=0"`
	Plan  string  `validate:"omitempty,oneof=free starter pro business"`
}

func TestValidateStruct_Valid(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatedRequest{Name: "Mulch", Cost: 45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatedRequest{Cost: 1})
	appErr := requireAppError(t, err)

	if appErr.Code != types.ErrCodeValidationInvalidField {
		t.Errorf("expected validation_invalid_field, got %q", appErr.Code)
	}
	if appErr.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus())
	}
	if _, ok := appErr.Details["Name"]; !ok {
		t.Errorf("expected Name in details, got %v", appErr.Details)
	}
}

func TestValidateStruct_MultipleFailures(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatedRequest{
		Name:  "a very long name indeed",
		Email: "nope",
		Cost:  -1,
		Plan:  "platinum",
	})
	appErr := requireAppError(t, err)

	for _, field := range []string{"Name", "Email", "Cost", "Plan"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Errorf("expected %s in details, got %v", field, appErr.Details)
		}
	}
}

func TestValidateStruct_ConstraintDescriptions(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatedRequest{Name: "x", Plan: "platinum"})
	appErr := requireAppError(t, err)

	desc, _ := appErr.Details["Plan"].(string)
	if desc != "must be one of: free starter pro business" {
		t.Errorf("unexpected oneof description: %q", desc)
	}
}

func TestValidateStruct_NonStructInput(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct("not a struct")
	appErr := requireAppError(t, err)

	if appErr.Code != types.ErrCodeInternalUnexpected {
		t.Errorf("expected internal_unexpected_error, got %q", appErr.Code)
	}
}

func requireAppError(t *testing.T, err error) *types.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	return appErr
}
