package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated."},
		{"forbidden", ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"wrapped not found", fmt.Errorf("find task: %w", ErrNotFound), http.StatusNotFound, "Not found"},
		{"supplier in use", ErrSupplierInUse, http.StatusConflict, "Supplier has invoices and cannot be deleted."},
		{"bad body", ErrInvalidBody, http.StatusBadRequest, "invalid request body"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
			assert.Nil(t, httpErr.Fields)
		})
	}
}

func TestMapErrorToHTTP_Validation(t *testing.T) {
	verr := NewValidationError()
	verr.Add("title", "The title field is required.")
	verr.Add("email", "The email field must be a valid email address.")

	httpErr := MapErrorToHTTP(fmt.Errorf("create: %w", verr))

	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	// The message is the first field in alphabetical order.
	assert.Equal(t, "The email field must be a valid email address.", httpErr.Message)
	assert.Equal(t, []string{"The title field is required."}, httpErr.ToErrorResponse().Errors["title"])
}

func TestValidationError_OrNil(t *testing.T) {
	assert.NoError(t, NewValidationError().OrNil())
	assert.Error(t, FieldError("status", "The selected status is invalid.").OrNil())
}

func TestValidationError_MergeAndDedupe(t *testing.T) {
	verr := FieldError("invoice_number", "The invoice number field is required.")
	verr.Add("invoice_number", "The invoice number field is required.")

	other := FieldError("subtotal", "The subtotal field must be at least 0.")
	other.Add("invoice_number", "The invoice number field is required.")
	verr.Merge(other)
	verr.Merge(nil)

	assert.Equal(t, map[string][]string{
		"invoice_number": {"The invoice number field is required."},
		"subtotal":       {"The subtotal field must be at least 0."},
	}, verr.Fields)
	assert.True(t, verr.Has("subtotal"))
	assert.False(t, verr.Has("due_date"))
}
