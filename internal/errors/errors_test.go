package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad payload")
	assert.Equal(t, "bad payload", err.Error())
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("company_name", "company name is required")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "company_name", details.Field)
}

func TestReportValidationError(t *testing.T) {
	cause := fmt.Errorf("grand-total row not found in primary table")
	err := ReportValidationError(cause)

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "REPORT_VALIDATION_FAILED", err.ErrorCode)
	assert.Equal(t, cause.Error(), err.Details)
}

func TestErrorHandler_HandleError_APIError(t *testing.T) {
	handler := NewErrorHandler(slog.Default())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/generate-report", nil)

	handler.HandleError(w, r, ErrValidation("base_year", "base year is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.ErrorCode)
}

func TestErrorHandler_HandleError_WrapsUnknownErrors(t *testing.T) {
	handler := NewErrorHandler(slog.Default())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	handler.HandleError(w, r, fmt.Errorf("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Error.ErrorCode)
	assert.Equal(t, "disk on fire", resp.Error.Details)
}

func TestErrorHandler_HandleError_WrappedAPIError(t *testing.T) {
	handler := NewErrorHandler(slog.Default())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/generate-report", nil)

	wrapped := fmt.Errorf("compute metrics: %w", ReportValidationError(fmt.Errorf("primary table is empty")))
	handler.HandleError(w, r, wrapped)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
